package text

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"stringact/internal/action"
	"stringact/internal/logging"
	"stringact/internal/term"
)

// Replace substitutes every match of a regular expression in each subject.
// The first argument is the pattern, the second the replacement, and every
// further argument, after flattening, is a subject yielding one string.
//
//	[A|B] = .string/replace( "search", "replace with", "this is a search string", "another string" );
//
// Patterns use the regexp2 dialect (Perl/Java style, with lookaround and
// backreferences). Replacements use $n, ${name} and backslash escapes.
type Replace struct {
	opts    regexp2.RegexOptions
	timeout time.Duration
	cache   *PatternCache
}

// ReplaceOption configures a Replace action.
type ReplaceOption func(*Replace)

// WithRegexOptions sets the regexp2 compile options.
func WithRegexOptions(opts regexp2.RegexOptions) ReplaceOption {
	return func(r *Replace) { r.opts = opts }
}

// WithMatchTimeout bounds the time spent matching one subject.
// Zero leaves matching unbounded.
func WithMatchTimeout(d time.Duration) ReplaceOption {
	return func(r *Replace) { r.timeout = d }
}

// WithPatternCache reuses compiled patterns across calls. A nil cache
// compiles on every call.
func WithPatternCache(c *PatternCache) ReplaceOption {
	return func(r *Replace) { r.cache = c }
}

// NewReplace creates the string/replace action.
func NewReplace(opts ...ReplaceOption) *Replace {
	r := &Replace{opts: regexp2.None}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var replaceName = action.NewName("string", "replace")

// Name returns string/replace.
func (r *Replace) Name() action.Name { return replaceName }

// MinArgs is 3: pattern, replacement and at least one subject.
func (r *Replace) MinArgs() int { return 3 }

// Execute compiles the pattern and replacement before touching any subject,
// so syntax errors leave the sink empty. Each subject then gets one global,
// non-overlapping substitution pass over its original text.
func (r *Replace) Execute(_ bool, _ action.ExecContext, args []term.Term, sink action.Sink) error {
	head, subjects, err := action.Prefix(args, 2)
	if err != nil {
		return err
	}
	pattern, err := action.StringArg(head, 0, "pattern")
	if err != nil {
		return err
	}
	replacement, err := action.StringArg(head, 1, "replacement")
	if err != nil {
		return err
	}

	re, err := r.compile(pattern)
	if err != nil {
		return err
	}
	tmpl, err := translateTemplate(replacement, re)
	if err != nil {
		return err
	}

	i := 0
	for t := range term.Flatten(subjects) {
		subject, err := t.AsString()
		if err != nil {
			return fmt.Errorf("subject at position %d: %w", i, err)
		}
		// regexp2 only fails a replacement when the match timeout expires.
		out, err := re.Replace(subject, tmpl, -1, -1)
		if err != nil {
			return fmt.Errorf("%w: subject at position %d: %v", action.ErrMatchTimeout, i, err)
		}
		sink.Append(term.String(out))
		i++
	}

	logging.ActionsDebug("%s replaced %q in %d subjects", replaceName, pattern, i)
	return nil
}

func (r *Replace) compile(pattern string) (*regexp2.Regexp, error) {
	key := patternKey{pattern: pattern, opts: r.opts, timeout: r.timeout}
	if re, ok := r.cache.get(key); ok {
		return re, nil
	}

	re, err := regexp2.Compile(pattern, r.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", action.ErrPatternSyntax, err)
	}
	if r.timeout > 0 {
		re.MatchTimeout = r.timeout
	}
	r.cache.add(key, re)
	return re, nil
}

// ParseRegexOptions maps option names to regexp2 flags.
// Known names: ignore_case, multiline, singleline, explicit_capture,
// ignore_whitespace, ecmascript, re2.
func ParseRegexOptions(names []string) (regexp2.RegexOptions, error) {
	opts := regexp2.None
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ignore_case":
			opts |= regexp2.IgnoreCase
		case "multiline":
			opts |= regexp2.Multiline
		case "singleline":
			opts |= regexp2.Singleline
		case "explicit_capture":
			opts |= regexp2.ExplicitCapture
		case "ignore_whitespace":
			opts |= regexp2.IgnorePatternWhitespace
		case "ecmascript":
			opts |= regexp2.ECMAScript
		case "re2":
			opts |= regexp2.RE2
		case "":
		default:
			return regexp2.None, fmt.Errorf("unknown regex option %q", name)
		}
	}
	return opts, nil
}
