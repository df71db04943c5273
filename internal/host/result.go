package host

import (
	"time"

	"stringact/internal/action"
	"stringact/internal/term"
)

// Call is one invocation request.
type Call struct {
	// Action is the qualified name, e.g. "string/replace".
	Action string
	Args   []term.Term

	// Sink optionally receives outputs as they are produced.
	Sink action.Sink

	// Context is passed to the action untouched. Nil means action.EmptyContext.
	Context action.ExecContext
}

// Result is the outcome of one invocation. Outputs holds everything the
// action appended, including outputs produced before a failure.
type Result struct {
	Invocation string
	Action     action.Name
	Outputs    []term.Term
	Err        error
	Duration   time.Duration
}

// OK reports whether the invocation succeeded.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Kind returns the error class name, or "" on success.
func (r *Result) Kind() string {
	return action.Kind(r.Err)
}

// Strings returns the outputs rendered as plain strings.
func (r *Result) Strings() []string {
	out := make([]string, len(r.Outputs))
	for i, t := range r.Outputs {
		if s, err := t.AsString(); err == nil {
			out[i] = s
		} else {
			out[i] = t.String()
		}
	}
	return out
}
