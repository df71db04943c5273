// Package facts records action outputs as Mangle facts.
//
// Every output becomes one fact
//
//	action_output(/string/random, "<invocation>", Index, Value).
//
// so runs can be inspected with Mangle queries and rules.
package facts

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"stringact/internal/action"
	"stringact/internal/logging"
	"stringact/internal/term"
)

// OutputPredicate is the predicate holding recorded outputs.
const OutputPredicate = "action_output"

var outputSym = ast.PredicateSym{Symbol: OutputPredicate, Arity: 4}

// outputDecl declares the recorded predicate for rule analysis.
const outputDecl = "Decl action_output(Action, Invocation, Index, Value).\n"

// Recorder is an in-memory fact store of action outputs. It is safe for
// concurrent use.
type Recorder struct {
	store factstore.ConcurrentFactStore

	mu      sync.Mutex
	dropped int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		store: factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore()),
	}
}

// Sink returns a sink that records each appended term for one invocation.
// Indexes start at 0 and follow append order.
func (r *Recorder) Sink(name action.Name, invocation string) action.Sink {
	return &outputSink{recorder: r, name: name, invocation: invocation}
}

type outputSink struct {
	recorder   *Recorder
	name       action.Name
	invocation string

	mu   sync.Mutex
	next int64
}

func (s *outputSink) Append(t term.Term) {
	s.mu.Lock()
	idx := s.next
	s.next++
	s.mu.Unlock()

	if err := s.recorder.add(s.name, s.invocation, idx, t); err != nil {
		s.recorder.mu.Lock()
		s.recorder.dropped++
		s.recorder.mu.Unlock()
		logging.KernelWarn("dropping output %d of %s: %v", idx, s.invocation, err)
	}
}

func nameConstant(name action.Name) (ast.Constant, error) {
	c, err := ast.Name("/" + name.String())
	if err != nil {
		return ast.Constant{}, fmt.Errorf("action name %s: %w", name, err)
	}
	return c, nil
}

func (r *Recorder) add(name action.Name, invocation string, idx int64, t term.Term) error {
	nc, err := nameConstant(name)
	if err != nil {
		return err
	}
	value, err := term.ToConstant(t)
	if err != nil {
		return err
	}
	r.store.Add(ast.NewAtom(OutputPredicate, nc, ast.String(invocation), ast.Number(idx), value))
	logging.KernelDebug("recorded %s #%d for %s", name, idx, invocation)
	return nil
}

// Dropped returns how many outputs could not be converted to facts.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Count returns the number of stored facts.
func (r *Recorder) Count() int {
	return r.store.EstimateFactCount()
}

// Outputs returns the recorded outputs of one invocation in index order.
func (r *Recorder) Outputs(name action.Name, invocation string) ([]term.Term, error) {
	nc, err := nameConstant(name)
	if err != nil {
		return nil, err
	}
	want := []ast.BaseTerm{nc, ast.String(invocation)}

	type indexed struct {
		idx int64
		t   term.Term
	}
	var found []indexed
	err = r.store.GetFacts(ast.NewQuery(outputSym), func(atom ast.Atom) error {
		if !matchesPrefix(atom, want) {
			return nil
		}
		idx, ok := atom.Args[2].(ast.Constant)
		if !ok || idx.Type != ast.NumberType {
			return fmt.Errorf("malformed index in %s", atom)
		}
		value, ok := atom.Args[3].(ast.Constant)
		if !ok {
			return fmt.Errorf("malformed value in %s", atom)
		}
		t, err := term.FromConstant(value)
		if err != nil {
			return err
		}
		found = append(found, indexed{idx: idx.NumValue, t: t})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].idx < found[j].idx })
	out := make([]term.Term, len(found))
	for i, f := range found {
		out[i] = f.t
	}
	logging.AuditWithInvocation(invocation).KernelQuery(OutputPredicate, len(out))
	return out, nil
}

func matchesPrefix(atom ast.Atom, want []ast.BaseTerm) bool {
	if len(atom.Args) < len(want) {
		return false
	}
	for i, w := range want {
		if atom.Args[i].String() != w.String() {
			return false
		}
	}
	return true
}

// Facts returns every stored fact, sorted by its text form.
func (r *Recorder) Facts() []ast.Atom {
	var atoms []ast.Atom
	for _, sym := range r.store.ListPredicates() {
		_ = r.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
			atoms = append(atoms, atom)
			return nil
		})
	}
	sort.Slice(atoms, func(i, j int) bool { return atoms[i].String() < atoms[j].String() })
	return atoms
}

// Query returns the stored facts matching a query atom such as
// action_output(/string/replace, Inv, 0, V). Constant arguments must match;
// variables match anything.
func (r *Recorder) Query(query string) ([]ast.Atom, error) {
	q, err := parse.Atom(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query %q: %w", query, err)
	}

	var result []ast.Atom
	err = r.store.GetFacts(ast.NewQuery(q.Predicate), func(atom ast.Atom) error {
		for i, arg := range q.Args {
			if _, ok := arg.(ast.Variable); ok {
				continue
			}
			if atom.Args[i].String() != arg.String() {
				return nil
			}
		}
		result = append(result, atom)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].String() < result[j].String() })
	logging.Audit().KernelQuery(q.Predicate.Symbol, len(result))
	return result, nil
}

// Derive evaluates Mangle rules over the recorded facts and stores what
// they derive. The rules may use action_output without declaring it.
func (r *Recorder) Derive(rules string) error {
	unit, err := parse.Unit(bytes.NewReader([]byte(outputDecl + rules)))
	if err != nil {
		return fmt.Errorf("failed to parse rules: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return fmt.Errorf("failed to analyze rules: %w", err)
	}

	before := r.store.EstimateFactCount()
	timer := logging.StartTimer(logging.CategoryKernel, "derive")
	if _, err := mengine.EvalProgramWithStats(programInfo, r.store); err != nil {
		return fmt.Errorf("failed to evaluate rules: %w", err)
	}
	timer.Stop()

	derived := r.store.EstimateFactCount() - before
	logging.Audit().KernelAssert("derived", derived)
	return nil
}
