package structure

import (
	"strconv"
	"strings"
)

// numberFloats inserts a sequential per-name counter into every float label.
// Counters are global to the whole tree, not per scope, so N figures anywhere
// in the document number 1..N in document order. Documentation blocks are
// exempt.
func numberFloats(elems []*Element) {
	counters := make(map[string]int)
	var walk func(els []*Element)
	walk = func(els []*Element) {
		for _, el := range els {
			if el.Kind == KindEnvironment && !docBlockEnvs[el.Name] {
				counters[el.Name]++
				el.Label = insertFloatNumber(el.Label, counters[el.Name])
			}
			walk(el.Children)
		}
	}
	walk(elems)
}

// insertFloatNumber places the counter after the part of the label preceding
// the first ":" separator, or at the end when there is none.
func insertFloatNumber(label string, n int) string {
	num := strconv.Itoa(n)
	if head, tail, found := strings.Cut(label, ":"); found {
		return head + " " + num + ":" + tail
	}
	return label + " " + num
}

// numberSections prepends hierarchical dotted numbers to section labels.
// Counters are per rank and reset per scope. lowest is the shallowest rank
// that counts as unpadded in this scope; pass -1 to derive it from the
// siblings themselves (the root scope). Rank gaps below lowest are padded
// with "0." segments, so a rank-2 section directly inside a rank-0 scope
// prefixed "3." numbers as "3.0.1". Starred sections display "*" and do not
// consume a counter; sections with no configured rank are left unnumbered.
func numberSections(elems []*Element, prefix string, lowest int, rank rankFunc) {
	if lowest < 0 {
		lowest = lowestRank(elems, rank)
	}
	counters := make(map[int]int)
	for _, el := range elems {
		if !el.isSection() {
			numberSections(el.Children, prefix, -1, rank)
			continue
		}
		rk, ok := rank(el.Name)
		if !ok {
			numberSections(el.Children, prefix, -1, rank)
			continue
		}
		number := "*"
		if el.Kind == KindSection {
			counters[rk]++
			pad := rk - lowest
			if pad < 0 {
				pad = 0
			}
			number = prefix + strings.Repeat("0.", pad) + strconv.Itoa(counters[rk])
		}
		if el.Label == "" {
			el.Label = number
		} else {
			el.Label = number + " " + el.Label
		}
		numberSections(el.Children, number+".", rk+1, rank)
	}
}

func lowestRank(elems []*Element, rank rankFunc) int {
	lowest := -1
	for _, el := range elems {
		if !el.isSection() {
			continue
		}
		if rk, ok := rank(el.Name); ok && (lowest < 0 || rk < lowest) {
			lowest = rk
		}
	}
	if lowest < 0 {
		return 0
	}
	return lowest
}
