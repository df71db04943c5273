package term

import "iter"

// frame is one level of the explicit traversal stack.
type frame struct {
	items []Term
	next  int
}

// Flatten returns a lazy depth-first, left-to-right sequence of the scalar
// leaves in terms. Lists are expanded in place, empty lists contribute
// nothing. Each range over the returned sequence restarts the traversal.
//
// The traversal keeps its own stack, so nesting depth is bounded only by
// memory and never by the goroutine stack.
func Flatten(terms []Term) iter.Seq[Term] {
	return func(yield func(Term) bool) {
		stack := []frame{{items: terms}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(top.items) {
				stack = stack[:len(stack)-1]
				continue
			}
			t := top.items[top.next]
			top.next++

			if t.kind == KindList {
				if len(t.list) > 0 {
					stack = append(stack, frame{items: t.list})
				}
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Collect drains Flatten(terms) into a slice.
func Collect(terms []Term) []Term {
	var out []Term
	for t := range Flatten(terms) {
		out = append(out, t)
	}
	return out
}

// Count returns the number of leaves Flatten(terms) would yield.
func Count(terms []Term) int {
	n := 0
	for range Flatten(terms) {
		n++
	}
	return n
}
