// Package action defines the contract shared by every kernel action.
//
// An action consumes an ordered, possibly nested argument list. A fixed-size
// prefix configures the call; the remaining arguments are flattened (see
// term.Flatten) into a sequence of inputs, and each input produces exactly
// one output appended to the caller's Sink in encounter order.
//
// Architecture:
//
//	Host → MinArgs check → Action.Execute(args) → Sink.Append per input
package action

import (
	"fmt"
	"strings"

	"stringact/internal/term"
)

// Name is the qualified identity of an action, e.g. string/random.
type Name struct {
	Namespace  string
	Identifier string
}

// NewName builds a Name from its parts.
func NewName(namespace, identifier string) Name {
	return Name{Namespace: namespace, Identifier: identifier}
}

// ParseName splits "namespace/identifier". The namespace may itself contain
// slashes; the identifier is the last segment.
func ParseName(s string) (Name, error) {
	s = strings.Trim(s, "/")
	idx := strings.LastIndex(s, "/")
	if idx <= 0 || idx == len(s)-1 {
		return Name{}, fmt.Errorf("%w: %q is not namespace/identifier", ErrUnknownAction, s)
	}
	return Name{Namespace: s[:idx], Identifier: s[idx+1:]}, nil
}

func (n Name) String() string {
	if n.Namespace == "" {
		return n.Identifier
	}
	return n.Namespace + "/" + n.Identifier
}

// ExecContext is the caller-owned evaluation context. Actions pass it
// through untouched.
type ExecContext any

// EmptyContext is an ExecContext for callers that have no plan context.
var EmptyContext ExecContext = struct{}{}

// Action is a named, arity-checked callable unit invoked by a host evaluator.
type Action interface {
	// Name is the qualified registry identity.
	Name() Name

	// MinArgs is the minimum argument count. The caller must check
	// len(args) >= MinArgs() before calling Execute.
	MinArgs() int

	// Execute runs the action. parallel is an advisory hint, ectx is opaque.
	// Outputs are appended to sink; on error, outputs already appended stay.
	// A nil error is success with no diagnostics.
	Execute(parallel bool, ectx ExecContext, args []term.Term, sink Sink) error
}

// Prefix returns the first n arguments and the variadic tail.
// It fails with ErrArgumentCount when args is shorter than n.
func Prefix(args []term.Term, n int) ([]term.Term, []term.Term, error) {
	if len(args) < n {
		return nil, nil, fmt.Errorf("%w: need %d, got %d", ErrArgumentCount, n, len(args))
	}
	return args[:n], args[n:], nil
}

// StringArg reads args[i] as a string, naming the role in the error.
func StringArg(args []term.Term, i int, role string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: missing %s at position %d", ErrArgumentCount, role, i)
	}
	s, err := args[i].AsString()
	if err != nil {
		return "", fmt.Errorf("%s at position %d: %w", role, i, err)
	}
	return s, nil
}
