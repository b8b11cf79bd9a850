// Package eliza implements the conversational pattern-matching engine:
// keyword scanning with precedence ranking, recursive decomposition
// matching, reassembly, rule linking, and the cyclic memory mechanism.
// Scripts are parsed by the companion script package; terminal I/O lives
// in the CLI layer.
package eliza

import "strings"

// The engine works over the historical 64-character set. Characters are
// listed here in encoding order; the position of each character is its
// six-bit code (see hash.go). The NUL placeholders mark codes with no
// printable assignment.
const charset = "0123456789\x00='\x00\x00\x00+ABCDEFGHI\x00.)\x00\x00\x00-JKLMNOPQR\x00$*\x00\x00\x00 /STUVWXYZ\x00,(\x00\x00\x00"

// validChar reports whether c belongs to the 64-character set.
func validChar(c byte) bool {
	if c == 0 {
		return false
	}
	return strings.IndexByte(charset, c) >= 0
}

// Filter maps text onto the historical character set: '?' and '!' become
// '.', and any other character outside the set becomes a space. Input is
// expected to be uppercased first; lowercase letters are not in the set.
func Filter(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '?' || c == '!':
			b.WriteByte('.')
		case c == ' ' || validChar(c):
			b.WriteByte(c)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Uppercase ASCII case-folds text to upper case.
func Uppercase(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Tokenize splits filtered, uppercased text into words. The punctuation
// marks ',' and '.' are emitted as standalone tokens.
func Tokenize(text string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case ' ':
			flush()
		case ',', '.':
			flush()
			words = append(words, string(c))
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return words
}

// JoinWords renders a word sequence as a display string.
func JoinWords(words []string) string {
	return strings.Join(words, " ")
}

// delimiter reports whether a token separates clauses. The word BUT acts
// as a delimiter alongside ',' and '.', matching the behavior of the
// historical program rather than its published description.
func delimiter(token string) bool {
	return token == "," || token == "." || token == "BUT"
}

// ParseCount returns the non-negative integer value of an all-digit
// token, or -1 when the token is not a number.
func ParseCount(token string) int {
	if token == "" {
		return -1
	}
	n := 0
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// groupSpec reports whether a pattern token is an opaque word-group,
// i.e. a parenthesized sub-list captured whole by the script parser.
func groupSpec(token string) bool {
	return len(token) >= 2 && token[0] == '(' && token[len(token)-1] == ')'
}

// WordInGroup reports whether word belongs to the group denoted by spec.
// A spec of the form "(*A B C)" names its members literally; "(/TAG...)"
// refers to one or more tag sets in the tag map. Membership uses whole
// words, not the six-character chunks of the historical machine.
func WordInGroup(word, spec string, tags TagMap) bool {
	if !groupSpec(spec) {
		return false
	}
	body := strings.TrimSpace(spec[1 : len(spec)-1])
	if body == "" {
		return false
	}
	marker := body[0]
	body = strings.TrimSpace(body[1:])
	switch marker {
	case '*':
		for _, member := range strings.Fields(body) {
			if member == word {
				return true
			}
		}
	case '/':
		for _, tag := range strings.Fields(body) {
			if tags.Contains(tag, word) {
				return true
			}
		}
	}
	return false
}

// TagMap maps a tag name to its member words. It is built once from the
// script's tag declarations and never mutated afterwards. Member order is
// preserved for display.
type TagMap map[string][]string

// Add records word as a member of tag, ignoring duplicates.
func (t TagMap) Add(tag, word string) {
	for _, w := range t[tag] {
		if w == word {
			return
		}
	}
	t[tag] = append(t[tag], word)
}

// Contains reports whether word is a member of tag.
func (t TagMap) Contains(tag, word string) bool {
	for _, w := range t[tag] {
		if w == word {
			return true
		}
	}
	return false
}
