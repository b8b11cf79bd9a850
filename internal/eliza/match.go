package eliza

import "strings"

// Match attempts to decompose words against pattern, returning one
// component per pattern element. Pattern elements are literal words,
// word-group specs ("(*A B)" or "(/TAG)"), exact-count wildcards ("2"
// consumes exactly two words) or the zero-or-more wildcard ("0"). A "0"
// element tries the shortest capture first and grows it only when the
// rest of the pattern cannot match, so ties always resolve to the
// leftmost, shortest capture. The function is pure; callers own the
// slices it returns.
func Match(tags TagMap, pattern, words []string) ([]string, bool) {
	if len(pattern) == 0 {
		if len(words) == 0 {
			return []string{}, true
		}
		return nil, false
	}

	head := pattern[0]
	switch n := ParseCount(head); {
	case n == 0:
		// Zero-or-more wildcard: grow the capture from zero upward,
		// recursing on the remainder at each length.
		for take := 0; take <= len(words); take++ {
			rest, ok := Match(tags, pattern[1:], words[take:])
			if ok {
				return prepend(strings.Join(words[:take], " "), rest), true
			}
		}
		return nil, false
	case n > 0:
		if len(words) < n {
			return nil, false
		}
		rest, ok := Match(tags, pattern[1:], words[n:])
		if !ok {
			return nil, false
		}
		return prepend(strings.Join(words[:n], " "), rest), true
	case groupSpec(head):
		if len(words) == 0 || !WordInGroup(words[0], head, tags) {
			return nil, false
		}
		rest, ok := Match(tags, pattern[1:], words[1:])
		if !ok {
			return nil, false
		}
		return prepend(words[0], rest), true
	default:
		if len(words) == 0 || words[0] != head {
			return nil, false
		}
		rest, ok := Match(tags, pattern[1:], words[1:])
		if !ok {
			return nil, false
		}
		return prepend(words[0], rest), true
	}
}

func prepend(component string, rest []string) []string {
	out := make([]string, 0, len(rest)+1)
	out = append(out, component)
	return append(out, rest...)
}
