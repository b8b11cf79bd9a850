// Package script parses the S-expression conversation script grammar
// into the engine's rule model.
package script

import (
	"io"

	"github.com/valter-silva-au/eliza/internal/eliza"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOpen
	tokClose
	tokSymbol
)

func (k tokenKind) String() string {
	switch k {
	case tokOpen:
		return "'('"
	case tokClose:
		return "')'"
	case tokSymbol:
		return "symbol"
	default:
		return "end of script"
	}
}

// token is one lexical element of the script grammar.
type token struct {
	kind tokenKind
	text string
	line int
}

// tokenizer produces tokens from script text: parenthesized groups, bare
// symbols, and ';' line comments (skipped). Symbols are uppercased, which
// is neutral for the historical scripts and lets hand-written lowercase
// scripts load.
type tokenizer struct {
	data   []byte
	pos    int
	line   int
	peeked *token
}

func newTokenizer(r io.Reader) (*tokenizer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &tokenizer{data: data, line: 1}, nil
}

// peek returns the next token without consuming it.
func (t *tokenizer) peek() token {
	if t.peeked == nil {
		tok := t.scan()
		t.peeked = &tok
	}
	return *t.peeked
}

// next consumes and returns the next token.
func (t *tokenizer) next() token {
	if t.peeked != nil {
		tok := *t.peeked
		t.peeked = nil
		return tok
	}
	return t.scan()
}

func (t *tokenizer) scan() token {
	t.skipSpaceAndComments()
	if t.pos >= len(t.data) {
		return token{kind: tokEOF, line: t.line}
	}
	switch c := t.data[t.pos]; c {
	case '(':
		t.pos++
		return token{kind: tokOpen, text: "(", line: t.line}
	case ')':
		t.pos++
		return token{kind: tokClose, text: ")", line: t.line}
	default:
		start := t.pos
		for t.pos < len(t.data) && !boundary(t.data[t.pos]) {
			t.pos++
		}
		return token{
			kind: tokSymbol,
			text: eliza.Uppercase(string(t.data[start:t.pos])),
			line: t.line,
		}
	}
}

func (t *tokenizer) skipSpaceAndComments() {
	for t.pos < len(t.data) {
		switch c := t.data[t.pos]; {
		case c == '\n':
			t.line++
			t.pos++
		case c == ' ' || c == '\t' || c == '\r':
			t.pos++
		case c == ';':
			for t.pos < len(t.data) && t.data[t.pos] != '\n' {
				t.pos++
			}
		default:
			return
		}
	}
}

// boundary reports whether c ends a symbol run.
func boundary(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', ';':
		return true
	}
	return false
}
