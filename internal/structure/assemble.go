package structure

// assemble runs the three ordered rewrite passes over the merged forest:
// sub-file splice, non-section nesting, section nesting.
func (r *run) assemble(elems []*Element) []*Element {
	if r.cfg.MergeSubFiles {
		elems = r.splice(elems)
	}
	elems = nestNonSections(elems)
	return nestSections(elems, r.rank)
}

// splice replaces each resolved sub-file element with the recursively spliced
// forest of its target file. Every cached file is expanded at most once per
// run; a repeated inclusion (cycle or diamond) stays an unexpanded leaf on its
// second encounter. Unresolved sub-files stay leaves too.
func (r *run) splice(elems []*Element) []*Element {
	out := make([]*Element, 0, len(elems))
	for _, el := range elems {
		if el.Kind == KindSubFile {
			if sub, ok := r.cache[el.Label]; ok && !r.spliced[el.Label] {
				r.spliced[el.Label] = true
				out = append(out, r.splice(sub)...)
				continue
			}
			out = append(out, el)
			continue
		}
		el.Children = r.splice(el.Children)
		out = append(out, el)
	}
	return out
}

// nestNonSections attaches every non-section element to the nearest preceding
// sibling section. Elements before the first section stay at their level.
// Each subtree is processed independently; the current-section pointer never
// crosses scope boundaries.
func nestNonSections(elems []*Element) []*Element {
	out := make([]*Element, 0, len(elems))
	var current *Element
	for _, el := range elems {
		el.Children = nestNonSections(el.Children)
		if el.isSection() {
			current = el
			out = append(out, el)
			continue
		}
		if current != nil {
			current.Children = append(current.Children, el)
			continue
		}
		out = append(out, el)
	}
	return out
}

// nestSections builds the strict section hierarchy from a flat sibling run,
// driven by each section's configured depth rank. The stack of open sections
// is strictly increasing in rank from outermost to innermost.
func nestSections(elems []*Element, rank rankFunc) []*Element {
	out := make([]*Element, 0, len(elems))
	var stack []*Element

	attach := func(el *Element) {
		if len(stack) == 0 {
			out = append(out, el)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, el)
	}

	for _, el := range elems {
		if !el.isSection() {
			// Non-sections were already nested by the previous pass or
			// are genuine top-level elements; sub-file leaves follow the
			// innermost open section without a rank constraint.
			if el.Kind == KindSubFile {
				attach(el)
			} else {
				out = append(out, el)
			}
			continue
		}

		rk, ok := rank(el.Name)
		if !ok {
			// No configured rank: keep at the current level.
			attach(el)
			continue
		}

		switch {
		case len(stack) == 0:
			out = append(out, el)
			stack = append(stack, el)

		case rankOf(stack[0], rank) >= rk:
			// Same or higher level than the outermost open section
			// closes everything.
			out = append(out, el)
			stack = stack[:0]
			stack = append(stack, el)

		case rankOf(stack[len(stack)-1], rank) < rk:
			// Strictly deeper than the innermost open section.
			top := stack[len(stack)-1]
			top.Children = append(top.Children, el)
			stack = append(stack, el)

		default:
			// Pop until the innermost open section is shallower.
			for len(stack) > 0 && rankOf(stack[len(stack)-1], rank) >= rk {
				stack = stack[:len(stack)-1]
			}
			top := stack[len(stack)-1]
			top.Children = append(top.Children, el)
			stack = append(stack, el)
		}
	}
	return out
}

func rankOf(el *Element, rank rankFunc) int {
	r, _ := rank(el.Name)
	return r
}
