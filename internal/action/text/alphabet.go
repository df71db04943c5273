package text

import "unicode"

// CharacterPredicate tests whether a code point is acceptable.
type CharacterPredicate func(r rune) bool

// Alphabet is a set of code points with a stable sampling order.
// Duplicates in the source string are ignored.
type Alphabet struct {
	runes []rune
	set   map[rune]struct{}
}

// NewAlphabet builds the code point set of s. Invalid UTF-8 bytes decode to
// unicode.ReplacementChar and join the set like any other code point.
func NewAlphabet(s string) Alphabet {
	a := Alphabet{set: make(map[rune]struct{}, len(s))}
	for _, r := range s {
		if _, dup := a.set[r]; dup {
			continue
		}
		a.set[r] = struct{}{}
		a.runes = append(a.runes, r)
	}
	return a
}

// Contains reports whether r is in the set.
func (a Alphabet) Contains(r rune) bool {
	_, ok := a.set[r]
	return ok
}

// Predicate returns the membership test of a as a CharacterPredicate.
func (a Alphabet) Predicate() CharacterPredicate {
	return a.Contains
}

// Size is the number of distinct code points.
func (a Alphabet) Size() int {
	return len(a.runes)
}

// Empty reports whether the alphabet has no code points.
func (a Alphabet) Empty() bool {
	return len(a.runes) == 0
}

// Filter keeps only the code points accepted by every predicate.
func (a Alphabet) Filter(preds ...CharacterPredicate) Alphabet {
	if len(preds) == 0 {
		return a
	}
	out := Alphabet{set: make(map[rune]struct{}, len(a.runes))}
	for _, r := range a.runes {
		if acceptAll(r, preds) {
			out.set[r] = struct{}{}
			out.runes = append(out.runes, r)
		}
	}
	return out
}

func acceptAll(r rune, preds []CharacterPredicate) bool {
	for _, p := range preds {
		if p != nil && !p(r) {
			return false
		}
	}
	return true
}

// Printable rejects control and other non-graphic code points.
func Printable(r rune) bool {
	return unicode.IsGraphic(r)
}

// NotSpace rejects whitespace.
func NotSpace(r rune) bool {
	return !unicode.IsSpace(r)
}
