package action

import (
	"errors"

	"stringact/internal/term"
)

// Action execution errors. Actions wrap these with position context, callers
// classify with errors.Is or Kind.
var (
	// ErrArgumentCount is returned when fewer arguments than MinArgs are supplied.
	// Hosts raise it before Execute; actions only raise it when their fixed
	// prefix cannot be read.
	ErrArgumentCount = errors.New("not enough arguments")

	// ErrArgumentType is returned when a flattened element has the wrong kind
	// for its position.
	ErrArgumentType = term.ErrArgumentType

	// ErrPatternSyntax is returned when a search pattern or its replacement
	// template cannot be compiled. No output is appended.
	ErrPatternSyntax = errors.New("invalid pattern")

	// ErrGeneration is returned when a string cannot be generated for a
	// requested length.
	ErrGeneration = errors.New("generation failed")

	// ErrMatchTimeout is returned when matching a subject exceeds the
	// configured match timeout.
	ErrMatchTimeout = errors.New("match timeout")

	// ErrUnknownAction is returned by hosts when no action has the requested name.
	ErrUnknownAction = errors.New("unknown action")
)

// Kind names the error class of err for hosts that surface it to users.
// Returns "" for nil and "internal" for errors outside this package.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrArgumentCount):
		return "argument_count"
	case errors.Is(err, ErrArgumentType):
		return "argument_type"
	case errors.Is(err, ErrPatternSyntax):
		return "pattern_syntax"
	case errors.Is(err, ErrGeneration):
		return "generation"
	case errors.Is(err, ErrMatchTimeout):
		return "match_timeout"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	default:
		return "internal"
	}
}
