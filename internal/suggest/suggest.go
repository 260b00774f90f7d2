// Package suggest ranks known names against a name the user actually typed,
// for use in "did you mean" hints. The heuristic is deliberately crude:
// names whose length is closest to the typed name rank first, which catches
// the common case of a one or two character typo without dragging in an edit
// distance dependency for three-line hints.
package suggest

import "sort"

// ByLength returns up to n candidates ranked by the absolute difference
// between their length and the target's length. Candidates are sorted
// lexicographically before the stable rank sort, so ties resolve the same
// way on every run regardless of the caller's iteration order.
func ByLength(target string, candidates []string, n int) []string {
	ranked := make([]string, len(candidates))
	copy(ranked, candidates)
	sort.Strings(ranked)
	sort.SliceStable(ranked, func(i, j int) bool {
		return lengthDistance(ranked[i], target) < lengthDistance(ranked[j], target)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func lengthDistance(a, b string) int {
	d := len(a) - len(b)
	if d < 0 {
		return -d
	}
	return d
}
