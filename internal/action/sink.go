package action

import (
	"sync"

	"stringact/internal/term"
)

// Sink is an append-only output target. Actions never read from it.
type Sink interface {
	Append(t term.Term)
}

// ListSink collects outputs in memory. It is safe for concurrent use.
type ListSink struct {
	mu    sync.Mutex
	terms []term.Term
}

// NewListSink creates an empty ListSink.
func NewListSink() *ListSink {
	return &ListSink{}
}

// Append adds t to the end of the sink.
func (s *ListSink) Append(t term.Term) {
	s.mu.Lock()
	s.terms = append(s.terms, t)
	s.mu.Unlock()
}

// Terms returns a copy of the collected outputs.
func (s *ListSink) Terms() []term.Term {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]term.Term, len(s.terms))
	copy(out, s.terms)
	return out
}

// Strings returns the outputs that hold strings, in order.
func (s *ListSink) Strings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.terms))
	for _, t := range s.terms {
		if v, err := t.AsString(); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of outputs collected so far.
func (s *ListSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.terms)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(t term.Term)

// Append calls f(t).
func (f SinkFunc) Append(t term.Term) { f(t) }

// Tee appends every output to all of sinks, in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(t term.Term) {
		for _, s := range sinks {
			s.Append(t)
		}
	})
}
