package eliza

import (
	"fmt"
	"strings"
)

// Reassemble expands a reassembly template against matched components.
// Literal template words are emitted verbatim; an integer k splices in
// the words of components[k-1]. A zero or out-of-range index is a script
// bug: it renders as a visible diagnostic token rather than aborting the
// conversation, so malformed scripts stay debuggable.
func Reassemble(template, components []string) []string {
	var out []string
	for _, token := range template {
		k := ParseCount(token)
		switch {
		case k < 0:
			out = append(out, token)
		case k == 0 || k > len(components):
			out = append(out, fmt.Sprintf("[%d?]", k))
		default:
			out = append(out, strings.Fields(components[k-1])...)
		}
	}
	return out
}
