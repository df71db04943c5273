package host

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"

	"stringact/internal/action"
	"stringact/internal/action/text"
	"stringact/internal/config"
	"stringact/internal/term"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEvaluator(t *testing.T, opts ...Option) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(text.All(text.Options{}), opts...)
	require.NoError(t, err)
	return e
}

// countingAction records how it was called.
type countingAction struct {
	name     action.Name
	min      int
	calls    atomic.Int32
	parallel atomic.Bool
	ectx     atomic.Value
}

func (c *countingAction) Name() action.Name { return c.name }
func (c *countingAction) MinArgs() int      { return c.min }
func (c *countingAction) Execute(parallel bool, ectx action.ExecContext, args []term.Term, sink action.Sink) error {
	c.calls.Add(1)
	c.parallel.Store(parallel)
	c.ectx.Store(ectx)
	for _, a := range args {
		sink.Append(a)
	}
	return nil
}

func TestRunScenario(t *testing.T) {
	e := newEvaluator(t)

	res := e.Run(context.Background(), "string/replace", term.Strings("oo", "xx", "foobar", "root"))
	require.NoError(t, res.Err)
	assert.True(t, res.OK())
	assert.Equal(t, "string/replace", res.Action.String())
	assert.Equal(t, []string{"fxxbar", "rxxt"}, res.Strings())
	_, err := uuid.Parse(res.Invocation)
	assert.NoError(t, err)
	assert.Positive(t, res.Duration)
}

func TestRunArityCheck(t *testing.T) {
	e := newEvaluator(t)

	tests := []struct {
		name string
		args []term.Term
	}{
		{"string/random", term.Strings("abc")},
		{"string/replace", term.Strings("a", "b")},
		{"string/replace", nil},
	}
	for _, tt := range tests {
		res := e.Run(context.Background(), tt.name, tt.args)
		require.ErrorIs(t, res.Err, action.ErrArgumentCount)
		assert.Equal(t, "argument_count", res.Kind())
		assert.Empty(t, res.Outputs)
	}
}

func TestRunArityIsCheckedBeforeExecute(t *testing.T) {
	a := &countingAction{name: action.NewName("test", "count"), min: 2}
	e, err := NewEvaluator([]action.Action{a})
	require.NoError(t, err)

	res := e.Run(context.Background(), "test/count", term.Strings("one"))
	require.ErrorIs(t, res.Err, action.ErrArgumentCount)
	assert.Zero(t, a.calls.Load())

	res = e.Run(context.Background(), "/test/count/", term.Strings("one", "two"))
	require.NoError(t, res.Err)
	assert.Equal(t, int32(1), a.calls.Load())
	assert.False(t, a.parallel.Load())
	assert.Equal(t, action.EmptyContext, a.ectx.Load())
}

func TestRunUnknownAction(t *testing.T) {
	e := newEvaluator(t)

	for _, name := range []string{"string/reverse", "random", ""} {
		res := e.Run(context.Background(), name, term.Strings("a", "b", "c"))
		require.ErrorIs(t, res.Err, action.ErrUnknownAction, name)
		assert.Equal(t, "unknown_action", res.Kind())
	}
}

func TestRunCancelledContext(t *testing.T) {
	e := newEvaluator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Run(ctx, "string/random", []term.Term{term.String("a"), term.Int(1)})
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, res.Outputs)
}

func TestRunKeepsPartialOutputs(t *testing.T) {
	e := newEvaluator(t)

	res := e.Run(context.Background(), "string/random",
		[]term.Term{term.String("ab"), term.Int(1), term.Int(2), term.Int(-1), term.Int(3)})
	require.ErrorIs(t, res.Err, action.ErrGeneration)
	assert.Len(t, res.Outputs, 2)
}

func TestRunInto(t *testing.T) {
	e := newEvaluator(t)
	sink := action.NewListSink()

	res := e.RunInto(context.Background(), "string/replace", term.Strings("a", "b", "aa", "ba"), sink)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"bb", "bb"}, sink.Strings())
	assert.Equal(t, sink.Terms(), res.Outputs)
}

type fakeRecorder struct {
	got map[string][]term.Term
}

func (f *fakeRecorder) Sink(name action.Name, invocation string) action.Sink {
	key := name.String() + "#" + invocation
	return action.SinkFunc(func(t term.Term) { f.got[key] = append(f.got[key], t) })
}

func TestRecorderReceivesOutputs(t *testing.T) {
	rec := &fakeRecorder{got: map[string][]term.Term{}}
	e := newEvaluator(t, WithRecorder(rec))

	res := e.Run(context.Background(), "string/replace", term.Strings("o", "0", "foo"))
	require.NoError(t, res.Err)
	assert.Equal(t, res.Outputs, rec.got["string/replace#"+res.Invocation])
}

func TestNewEvaluatorRejectsDuplicates(t *testing.T) {
	_, err := NewEvaluator([]action.Action{text.NewRandom(), text.NewRandom()})
	assert.ErrorIs(t, err, ErrDuplicateAction)
}

func TestActionsSorted(t *testing.T) {
	a := &countingAction{name: action.NewName("alpha", "first"), min: 1}
	e, err := NewEvaluator(append(text.All(text.Options{}), a))
	require.NoError(t, err)

	var names []string
	for _, act := range e.Actions() {
		names = append(names, act.Name().String())
	}
	assert.Equal(t, []string{"alpha/first", "string/random", "string/replace"}, names)
}

func TestFromConfig(t *testing.T) {
	seed := uint64(9)
	cfg := config.DefaultConfig()
	cfg.Random.Seed = &seed
	cfg.Host.BatchConcurrency = 2

	e, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, e.concurrency)

	args := []term.Term{term.String("abcdef"), term.Int(12)}
	first := e.Run(context.Background(), "string/random", args)
	second := e.Run(context.Background(), "string/random", args)
	require.NoError(t, first.Err)
	assert.Equal(t, first.Strings(), second.Strings())

	cfg.Replace.Options = []string{"bogus"}
	_, err = FromConfig(cfg)
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	e := newEvaluator(t, WithBatchConcurrency(2))

	calls := []Call{
		{Action: "string/replace", Args: term.Strings("a", "b", "aaa")},
		{Action: "string/random", Args: []term.Term{term.String("xy"), term.Int(4)}},
		{Action: "string/replace", Args: term.Strings("(", "x", "s")},
		{Action: "string/missing", Args: term.Strings("a")},
		{Action: "string/random", Args: term.Strings("xy")},
	}

	results, err := e.Batch(context.Background(), calls)
	require.Len(t, results, len(calls))
	require.Error(t, err)

	assert.Equal(t, []string{"bbb"}, results[0].Strings())
	assert.NoError(t, results[1].Err)
	assert.Len(t, results[1].Outputs, 1)
	assert.ErrorIs(t, results[2].Err, action.ErrPatternSyntax)
	assert.ErrorIs(t, results[3].Err, action.ErrUnknownAction)
	assert.ErrorIs(t, results[4].Err, action.ErrArgumentCount)

	errs := multierr.Errors(err)
	assert.Len(t, errs, 3)
	assert.True(t, errors.Is(err, action.ErrPatternSyntax))
	assert.Contains(t, errs[0].Error(), "call 2")
}

func TestBatchPassesParallelHint(t *testing.T) {
	a := &countingAction{name: action.NewName("test", "count"), min: 0}
	e, err := NewEvaluator([]action.Action{a})
	require.NoError(t, err)

	calls := make([]Call, 20)
	for i := range calls {
		calls[i] = Call{Action: "test/count", Args: []term.Term{term.Int(int64(i))}, Context: "plan"}
	}
	results, err := e.Batch(context.Background(), calls)
	require.NoError(t, err)

	assert.Equal(t, int32(20), a.calls.Load())
	assert.True(t, a.parallel.Load())
	assert.Equal(t, "plan", a.ectx.Load())
	for i, res := range results {
		require.Len(t, res.Outputs, 1)
		n, err := res.Outputs[0].AsInt()
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}
}

func TestBatchEmpty(t *testing.T) {
	results, err := newEvaluator(t).Batch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestResultStrings(t *testing.T) {
	res := &Result{Outputs: []term.Term{term.String("a"), term.Int(3)}}
	assert.Equal(t, []string{"a", "3"}, res.Strings())
	assert.Equal(t, "", res.Kind())
}
