// Package host evaluates actions on behalf of a caller. It owns the arity
// precondition, assigns every invocation a correlation ID, and collects the
// outputs of single calls and concurrent batches.
package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"stringact/internal/action"
	"stringact/internal/action/text"
	"stringact/internal/config"
	"stringact/internal/logging"
	"stringact/internal/term"
)

// ErrDuplicateAction is returned when two actions share a name.
var ErrDuplicateAction = errors.New("action already registered")

// Recorder receives a copy of every output, keyed by action and invocation.
// facts.Recorder satisfies it.
type Recorder interface {
	Sink(name action.Name, invocation string) action.Sink
}

// Evaluator dispatches calls to a fixed set of actions. It is safe for
// concurrent use once constructed.
type Evaluator struct {
	actions     map[string]action.Action
	concurrency int
	slow        time.Duration
	recorder    Recorder
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithBatchConcurrency limits concurrent invocations in Batch. Zero means
// unlimited.
func WithBatchConcurrency(n int) Option {
	return func(e *Evaluator) { e.concurrency = n }
}

// WithSlowThreshold sets the duration above which an invocation logs a warning.
func WithSlowThreshold(d time.Duration) Option {
	return func(e *Evaluator) { e.slow = d }
}

// WithRecorder copies every output into r.
func WithRecorder(r Recorder) Option {
	return func(e *Evaluator) { e.recorder = r }
}

// NewEvaluator creates an evaluator over actions.
func NewEvaluator(actions []action.Action, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		actions: make(map[string]action.Action, len(actions)),
		slow:    500 * time.Millisecond,
	}
	for _, a := range actions {
		key := a.Name().String()
		if _, exists := e.actions[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAction, key)
		}
		e.actions[key] = a
	}
	for _, opt := range opts {
		opt(e)
	}
	logging.HostDebug("evaluator ready with %d actions", len(e.actions))
	return e, nil
}

// FromConfig creates an evaluator over the string actions configured by cfg.
func FromConfig(cfg *config.Config, opts ...Option) (*Evaluator, error) {
	textOpts, err := text.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithBatchConcurrency(cfg.Host.BatchConcurrency),
		WithSlowThreshold(cfg.GetSlowThreshold()),
	}
	return NewEvaluator(text.All(textOpts), append(base, opts...)...)
}

// Actions returns the actions sorted by name.
func (e *Evaluator) Actions() []action.Action {
	result := make([]action.Action, 0, len(e.actions))
	for _, a := range e.actions {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name().String() < result[j].Name().String()
	})
	return result
}

// Lookup returns the action registered under name ("string/random").
func (e *Evaluator) Lookup(name string) (action.Action, error) {
	n, err := action.ParseName(name)
	if err != nil {
		return nil, err
	}
	a, ok := e.actions[n.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", action.ErrUnknownAction, n)
	}
	return a, nil
}

// Run invokes the named action and collects its outputs.
func (e *Evaluator) Run(ctx context.Context, name string, args []term.Term) *Result {
	return e.invoke(ctx, Call{Action: name, Args: args}, false)
}

// RunInto invokes the named action, appending outputs to sink as well as
// to the returned Result.
func (e *Evaluator) RunInto(ctx context.Context, name string, args []term.Term, sink action.Sink) *Result {
	return e.invoke(ctx, Call{Action: name, Args: args, Sink: sink}, false)
}

func (e *Evaluator) invoke(ctx context.Context, call Call, parallel bool) *Result {
	res := &Result{Invocation: uuid.NewString()}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	log := logging.WithRequestID(logging.CategoryHost, res.Invocation).WithField("action", call.Action)
	audit := logging.AuditWithInvocation(res.Invocation)

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	a, err := e.Lookup(call.Action)
	if err != nil {
		log.Warn("lookup failed: %v", err)
		res.Err = err
		return res
	}
	res.Action = a.Name()

	if len(call.Args) < a.MinArgs() {
		res.Err = fmt.Errorf("%w: %s needs at least %d, got %d",
			action.ErrArgumentCount, res.Action, a.MinArgs(), len(call.Args))
		log.Warn("arity check failed: %v", res.Err)
		return res
	}

	collected := action.NewListSink()
	sinks := []action.Sink{collected}
	if call.Sink != nil {
		sinks = append(sinks, call.Sink)
	}
	if e.recorder != nil {
		sinks = append(sinks, e.recorder.Sink(res.Action, res.Invocation))
	}
	var sink action.Sink = collected
	if len(sinks) > 1 {
		sink = action.Tee(sinks...)
	}

	ectx := call.Context
	if ectx == nil {
		ectx = action.EmptyContext
	}

	audit.ActionExecute(res.Action.String())
	timer := logging.StartTimer(logging.CategoryHost, res.Action.String())
	res.Err = a.Execute(parallel, ectx, call.Args, sink)
	elapsed := timer.StopWithThreshold(e.slow)
	if e.slow > 0 && elapsed > e.slow {
		audit.PerfSlow(res.Action.String(), elapsed)
	}

	res.Outputs = collected.Terms()
	audit.ActionComplete(res.Action.String(), len(res.Outputs), elapsed, res.Err)
	if res.Err != nil {
		log.Debug("failed after %d outputs: %s: %v", len(res.Outputs), action.Kind(res.Err), res.Err)
	} else {
		log.Debug("produced %d outputs", len(res.Outputs))
	}
	return res
}
