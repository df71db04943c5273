package main

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"stringact/internal/term"
)

// parseArg reads one command-line argument as a YAML scalar or flow list.
// Text that is not valid YAML, or that is empty or null, is taken as a
// literal string so patterns like [a-z]+ need no quoting.
func parseArg(raw string) (term.Term, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return term.String(raw), nil
	}
	if _, isMap := v.(map[string]any); isMap {
		return term.String(raw), nil
	}
	t, err := term.FromGo(v)
	if err != nil {
		return term.Term{}, fmt.Errorf("argument %q: %w", raw, err)
	}
	return t, nil
}

// parseArgs parses each argument, or wraps them as strings when literal is set.
func parseArgs(raw []string, literal bool) ([]term.Term, error) {
	if literal {
		return term.Strings(raw...), nil
	}
	args := make([]term.Term, len(raw))
	for i, r := range raw {
		t, err := parseArg(r)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	return args, nil
}
