package script

import (
	"strings"
	"testing"
)

func TestTokenizer(t *testing.T) {
	tz, err := newTokenizer(strings.NewReader("(abc DEF) ; comment\n(0 =WHAT)"))
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		kind tokenKind
		text string
		line int
	}{
		{tokOpen, "(", 1},
		{tokSymbol, "ABC", 1},
		{tokSymbol, "DEF", 1},
		{tokClose, ")", 1},
		{tokOpen, "(", 2},
		{tokSymbol, "0", 2},
		{tokSymbol, "=WHAT", 2},
		{tokClose, ")", 2},
		{tokEOF, "", 2},
	}
	for i, w := range want {
		tok := tz.next()
		if tok.kind != w.kind || tok.text != w.text || tok.line != w.line {
			t.Errorf("token %d = {%v %q line %d}, want {%v %q line %d}",
				i, tok.kind, tok.text, tok.line, w.kind, w.text, w.line)
		}
	}
}

func TestTokenizerPeek(t *testing.T) {
	tz, err := newTokenizer(strings.NewReader("A B"))
	if err != nil {
		t.Fatal(err)
	}
	if tz.peek().text != "A" || tz.peek().text != "A" {
		t.Error("peek must not consume")
	}
	if tz.next().text != "A" || tz.next().text != "B" {
		t.Error("next after peek out of order")
	}
	if tz.next().kind != tokEOF {
		t.Error("expected EOF")
	}
}

func TestTokenizerCommentToEndOfLine(t *testing.T) {
	tz, err := newTokenizer(strings.NewReader("; all comment\n; more (ignored)\nX"))
	if err != nil {
		t.Fatal(err)
	}
	tok := tz.next()
	if tok.text != "X" || tok.line != 3 {
		t.Errorf("got %q on line %d, want X on line 3", tok.text, tok.line)
	}
}
