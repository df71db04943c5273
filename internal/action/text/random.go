package text

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"stringact/internal/action"
	"stringact/internal/logging"
	"stringact/internal/term"
)

// DefaultMaxLength caps a single requested length unless overridden.
const DefaultMaxLength = 1 << 20

// hardMaxLength bounds every length, capped or not, so the output buffer
// size always fits in an int.
const hardMaxLength = math.MaxInt / utf8.UTFMax

// growLimit bounds the up-front buffer reservation for one string.
const growLimit = 1 << 20

// intSource is the part of a random generator Random draws from.
type intSource interface {
	IntN(n int) int
}

// globalSource draws from the math/rand/v2 top-level generator, which is
// safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Random creates random strings over an alphabet.
// The first argument is the alphabet; every further argument, after
// flattening, is a length and yields one string.
//
//	[A|B|C] = .string/random( "abdefgXYZUI", 5, 3, 6 );
//
// Lengths above the configured maximum (DefaultMaxLength unless set with
// WithMaxLength) fail with ErrGeneration rather than producing a string.
// WithMaxLength(0) lifts that cap; lengths beyond what a string buffer can
// hold still fail with ErrGeneration.
type Random struct {
	seed      uint64
	seeded    bool
	maxLength int
	filters   []CharacterPredicate
}

// RandomOption configures a Random action.
type RandomOption func(*Random)

// WithSeed makes every call draw from a fresh generator seeded with seed,
// so equal arguments give equal outputs.
func WithSeed(seed uint64) RandomOption {
	return func(r *Random) {
		r.seed = seed
		r.seeded = true
	}
}

// WithMaxLength caps each requested length. Zero or negative disables the cap.
func WithMaxLength(n int) RandomOption {
	return func(r *Random) { r.maxLength = n }
}

// WithFilter further restricts the alphabet of every call.
func WithFilter(preds ...CharacterPredicate) RandomOption {
	return func(r *Random) { r.filters = append(r.filters, preds...) }
}

// NewRandom creates the string/random action.
func NewRandom(opts ...RandomOption) *Random {
	r := &Random{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var randomName = action.NewName("string", "random")

// Name returns string/random.
func (r *Random) Name() action.Name { return randomName }

// MinArgs is 2: the alphabet and at least one length.
func (r *Random) MinArgs() int { return 2 }

// Execute appends one random string per flattened length.
// Lengths are handled in order; a failing length leaves the strings of
// earlier lengths in the sink.
func (r *Random) Execute(_ bool, _ action.ExecContext, args []term.Term, sink action.Sink) error {
	head, lengths, err := action.Prefix(args, 1)
	if err != nil {
		return err
	}
	chars, err := action.StringArg(head, 0, "alphabet")
	if err != nil {
		return err
	}
	alphabet := NewAlphabet(chars).Filter(r.filters...)
	src := r.source()

	i := 0
	for t := range term.Flatten(lengths) {
		n, err := r.length(t, i)
		if err != nil {
			return err
		}
		s, err := generate(src, alphabet, n)
		if err != nil {
			return fmt.Errorf("length %d at position %d: %w", n, i, err)
		}
		sink.Append(term.String(s))
		i++
	}

	logging.ActionsDebug("%s generated %d strings from %d code points", randomName, i, alphabet.Size())
	return nil
}

func (r *Random) source() intSource {
	if r.seeded {
		return rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15))
	}
	return globalSource{}
}

// length reads a requested length from t, truncating toward zero.
func (r *Random) length(t term.Term, pos int) (int, error) {
	n, err := t.AsInt()
	switch {
	case errors.Is(err, term.ErrNotFinite):
		return 0, fmt.Errorf("%w: length at position %d: %v", action.ErrGeneration, pos, err)
	case err != nil:
		return 0, fmt.Errorf("length at position %d: %w", pos, err)
	case n < 0:
		return 0, fmt.Errorf("%w: negative length %d at position %d", action.ErrGeneration, n, pos)
	case r.maxLength > 0 && n > int64(r.maxLength):
		return 0, fmt.Errorf("%w: length %d at position %d exceeds maximum %d", action.ErrGeneration, n, pos, r.maxLength)
	case n > hardMaxLength:
		return 0, fmt.Errorf("%w: length %d at position %d cannot be allocated", action.ErrGeneration, n, pos)
	}
	return int(n), nil
}

// generate draws n code points uniformly, with replacement, from alphabet.
func generate(src intSource, alphabet Alphabet, n int) (string, error) {
	if n == 0 {
		return "", nil
	}
	if alphabet.Empty() {
		return "", fmt.Errorf("%w: empty character set", action.ErrGeneration)
	}

	var sb strings.Builder
	sb.Grow(min(n, growLimit))
	size := alphabet.Size()
	for k := 0; k < n; k++ {
		sb.WriteRune(alphabet.runes[src.IntN(size)])
	}
	return sb.String(), nil
}
