package script

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/valter-silva-au/eliza/internal/eliza"
)

// Error describes a script grammar violation: where it was found and
// what the parser expected there. All grammar violations are fatal at
// load time.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("script error at line %d: %s", e.Line, e.Msg)
}

// Load parses a conversation script into the engine's rule model. The
// expected structure is an opening greeting word-list, an optional START
// atom, a sequence of rule definitions, and a terminating empty ().
func Load(r io.Reader) (*eliza.Script, error) {
	tz, err := newTokenizer(r)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	p := &parser{
		tz:    tz,
		rules: make(map[string]eliza.Rule),
		tags:  make(eliza.TagMap),
	}
	return p.parse()
}

// LoadString parses script text held in memory.
func LoadString(text string) (*eliza.Script, error) {
	return Load(strings.NewReader(text))
}

// LoadFile parses the script in the named file.
func LoadFile(path string) (*eliza.Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

type parser struct {
	tz    *tokenizer
	rules map[string]eliza.Rule
	tags  eliza.TagMap
}

func (p *parser) errf(line int, format string, args ...any) error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// expect consumes the next token and fails unless it has the wanted kind.
func (p *parser) expect(kind tokenKind, context string) (token, error) {
	tok := p.tz.next()
	if tok.kind != kind {
		return tok, p.errf(tok.line, "expected %s %s, got %s %q", kind, context, tok.kind, tok.text)
	}
	return tok, nil
}

func (p *parser) parse() (*eliza.Script, error) {
	greeting, err := p.parseGreeting()
	if err != nil {
		return nil, err
	}
	if tok := p.tz.peek(); tok.kind == tokSymbol && tok.text == "START" {
		p.tz.next()
	}
	if err := p.parseRules(); err != nil {
		return nil, err
	}
	return &eliza.Script{Greeting: greeting, Rules: p.rules, Tags: p.tags}, nil
}

func (p *parser) parseGreeting() ([]string, error) {
	if _, err := p.expect(tokOpen, "starting the greeting"); err != nil {
		return nil, err
	}
	var words []string
	for {
		tok := p.tz.next()
		switch tok.kind {
		case tokSymbol:
			words = append(words, tok.text)
		case tokClose:
			return words, nil
		default:
			return nil, p.errf(tok.line, "expected word or ')' in greeting, got %s", tok.kind)
		}
	}
}

// parseRules reads rule definitions until the terminating empty () or a
// clean end of input at a rule boundary.
func (p *parser) parseRules() error {
	for {
		tok := p.tz.next()
		if tok.kind == tokEOF {
			return nil
		}
		if tok.kind != tokOpen {
			return p.errf(tok.line, "expected '(' starting a rule, got %s %q", tok.kind, tok.text)
		}
		head := p.tz.next()
		if head.kind == tokClose {
			// The empty () terminates the rule list.
			return nil
		}
		if head.kind != tokSymbol {
			return p.errf(head.line, "expected keyword after '(', got %s", head.kind)
		}
		var err error
		switch head.text {
		case "MEMORY":
			err = p.parseMemoryRule(head.line)
		case "NONE":
			err = p.parseKeywordRule(eliza.KeyNone, head.line)
		default:
			err = p.parseKeywordRule(head.text, head.line)
		}
		if err != nil {
			return err
		}
	}
}

// parseMemoryRule parses the MEMORY block: the trigger keyword followed
// by exactly four (pattern = reassembly) pairs.
func (p *parser) parseMemoryRule(line int) error {
	kw, err := p.expect(tokSymbol, "naming the MEMORY keyword")
	if err != nil {
		return err
	}
	var pairs []eliza.MemoryPair
	for {
		tok := p.tz.next()
		if tok.kind == tokClose {
			break
		}
		if tok.kind != tokOpen {
			return p.errf(tok.line, "expected '(' starting a memory pair or ')', got %s %q", tok.kind, tok.text)
		}
		pair, err := p.parseMemoryPair()
		if err != nil {
			return err
		}
		pairs = append(pairs, pair)
	}
	rule, err := eliza.NewMemoryRule(kw.text, pairs)
	if err != nil {
		return p.errf(line, "%v", err)
	}
	p.rules[eliza.KeyMemory] = rule
	return nil
}

// parseMemoryPair reads "pattern... = reassembly..." up to the closing
// paren; the opening paren has already been consumed.
func (p *parser) parseMemoryPair() (eliza.MemoryPair, error) {
	var pair eliza.MemoryPair
	for {
		tok := p.tz.next()
		switch {
		case tok.kind == tokSymbol && tok.text == "=":
			goto reassembly
		case tok.kind == tokSymbol:
			pair.Pattern = append(pair.Pattern, tok.text)
		case tok.kind == tokOpen:
			group, err := p.parseGroupSpec()
			if err != nil {
				return pair, err
			}
			pair.Pattern = append(pair.Pattern, group)
		default:
			return pair, p.errf(tok.line, "expected '=' separating a memory pair, got %s", tok.kind)
		}
	}
reassembly:
	for {
		tok := p.tz.next()
		switch tok.kind {
		case tokSymbol:
			pair.Reassembly = append(pair.Reassembly, tok.text)
		case tokClose:
			return pair, nil
		default:
			return pair, p.errf(tok.line, "expected word or ')' in memory reassembly, got %s", tok.kind)
		}
	}
}

// parseKeywordRule parses everything after "(<keyword>": the optional
// substitution, the optional precedence, and one of the rule tails
// (nothing, DLIST, a lone link, or transformation blocks).
func (p *parser) parseKeywordRule(keyword string, line int) error {
	replacement := ""
	precedence := 0

	// Optional "= WORD" substitution, spaced or not.
	if tok := p.tz.peek(); tok.kind == tokSymbol && strings.HasPrefix(tok.text, "=") {
		p.tz.next()
		if tok.text == "=" {
			word, err := p.expect(tokSymbol, "naming the substitution word")
			if err != nil {
				return err
			}
			replacement = word.text
		} else {
			replacement = tok.text[1:]
		}
	}

	// Optional precedence.
	if tok := p.tz.peek(); tok.kind == tokSymbol {
		if n := eliza.ParseCount(tok.text); n >= 0 {
			p.tz.next()
			precedence = n
		}
	}

	tok := p.tz.next()
	switch tok.kind {
	case tokClose:
		p.rules[keyword] = eliza.NewSubstitutionRule(keyword, replacement)
		return nil
	case tokSymbol:
		if tok.text != "DLIST" {
			return p.errf(tok.line, "expected DLIST or '(' in rule %s, got %q", keyword, tok.text)
		}
		return p.parseTagRule(keyword, replacement)
	case tokOpen:
		return p.parseTransformation(keyword, replacement, precedence, tok.line)
	default:
		return p.errf(tok.line, "rule %s is truncated: expected rule body or ')'", keyword)
	}
}

// parseTagRule parses "DLIST (/ tag...)" and registers the keyword under
// each declared tag.
func (p *parser) parseTagRule(keyword, replacement string) error {
	if _, err := p.expect(tokOpen, "starting the DLIST tags"); err != nil {
		return err
	}
	var tags []string
	first := true
	for {
		tok := p.tz.next()
		switch tok.kind {
		case tokSymbol:
			text := tok.text
			if first {
				// The leading '/' marks the tag list; it may be glued
				// to the first tag or stand alone.
				text = strings.TrimPrefix(text, "/")
				first = false
				if text == "" {
					continue
				}
			}
			tags = append(tags, text)
		case tokClose:
			if len(tags) == 0 {
				return p.errf(tok.line, "DLIST for %s declares no tags", keyword)
			}
			if _, err := p.expect(tokClose, "ending rule "+keyword); err != nil {
				return err
			}
			for _, tag := range tags {
				p.tags.Add(tag, keyword)
			}
			p.rules[keyword] = eliza.NewTagRule(keyword, replacement, tags)
			return nil
		default:
			return p.errf(tok.line, "expected tag or ')' in DLIST for %s, got %s", keyword, tok.kind)
		}
	}
}

// transformation blocks come in three shapes, distinguished below:
// a lone (=TARGET) link, a ((decomposition) (PRE ...)) pre-link, or one
// or more ((decomposition) (reassembly)...) vanilla blocks.
type block struct {
	link   string // "=TARGET" shorthand block
	pre    *preBlock
	decomp eliza.Decomposition
}

type preBlock struct {
	pattern    []string
	reassembly []string
	target     string
}

func (p *parser) parseTransformation(keyword, replacement string, precedence, line int) error {
	var blocks []block
	for {
		b, err := p.parseBlock(keyword)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)

		tok := p.tz.next()
		if tok.kind == tokClose {
			break
		}
		if tok.kind != tokOpen {
			return p.errf(tok.line, "expected '(' or ')' after a transformation block in rule %s, got %s %q",
				keyword, tok.kind, tok.text)
		}
	}

	// A single (=TARGET) block is an equivalence link.
	if len(blocks) == 1 && blocks[0].link != "" {
		target, _ := strings.CutPrefix(blocks[0].link, "=")
		p.rules[keyword] = eliza.NewLinkRule(keyword, replacement, precedence, target)
		return nil
	}
	// A single block whose reassembly position is PRE is a pre-link.
	if len(blocks) == 1 && blocks[0].pre != nil {
		pre := blocks[0].pre
		p.rules[keyword] = eliza.NewPreRule(keyword, replacement, pre.pattern, pre.reassembly, pre.target)
		return nil
	}

	var decomps []eliza.Decomposition
	for _, b := range blocks {
		switch {
		case b.pre != nil:
			return p.errf(line, "rule %s: PRE must be the rule's only transformation block", keyword)
		case b.link != "":
			// A trailing (=TARGET) among other blocks acts as a
			// catch-all decomposition that links.
			decomps = append(decomps, eliza.Decomposition{
				Pattern:      []string{"0"},
				Reassemblies: [][]string{{b.link}},
			})
		default:
			decomps = append(decomps, b.decomp)
		}
	}
	p.rules[keyword] = eliza.NewVanillaRule(keyword, replacement, precedence, decomps)
	return nil
}

// parseBlock reads one transformation block; its opening paren has
// already been consumed.
func (p *parser) parseBlock(keyword string) (block, error) {
	tok := p.tz.next()
	switch tok.kind {
	case tokSymbol:
		// (=TARGET) or (= TARGET): a link shorthand block.
		link, err := p.parseLinkBody(tok, keyword)
		if err != nil {
			return block{}, err
		}
		return block{link: link}, nil
	case tokOpen:
		// ((decomposition) (reassembly)...)
		pattern, err := p.parsePattern(keyword)
		if err != nil {
			return block{}, err
		}
		return p.parseReassemblies(keyword, pattern)
	default:
		return block{}, p.errf(tok.line, "expected decomposition or '=' link in rule %s, got %s", keyword, tok.kind)
	}
}

// parseLinkBody normalizes "(=TARGET)" and "(= TARGET)" to "=TARGET" and
// consumes the closing paren.
func (p *parser) parseLinkBody(first token, keyword string) (string, error) {
	if !strings.HasPrefix(first.text, "=") {
		return "", p.errf(first.line, "expected '=' link in rule %s, got %q", keyword, first.text)
	}
	target := first.text[1:]
	if target == "" {
		word, err := p.expect(tokSymbol, "naming the link target")
		if err != nil {
			return "", err
		}
		target = word.text
	}
	if _, err := p.expect(tokClose, "ending the link"); err != nil {
		return "", err
	}
	return "=" + target, nil
}

// parsePattern reads decomposition elements up to the closing paren. A
// nested group like (*WANT NEED) or (/FAMILY) is captured as one opaque
// token for group matching.
func (p *parser) parsePattern(keyword string) ([]string, error) {
	var pattern []string
	for {
		tok := p.tz.next()
		switch tok.kind {
		case tokSymbol:
			pattern = append(pattern, tok.text)
		case tokOpen:
			group, err := p.parseGroupSpec()
			if err != nil {
				return nil, err
			}
			pattern = append(pattern, group)
		case tokClose:
			return pattern, nil
		default:
			return nil, p.errf(tok.line, "decomposition in rule %s is missing its ')'", keyword)
		}
	}
}

// parseGroupSpec captures a parenthesized sub-list as a single "(...)"
// token; the opening paren has already been consumed.
func (p *parser) parseGroupSpec() (string, error) {
	var parts []string
	for {
		tok := p.tz.next()
		switch tok.kind {
		case tokSymbol:
			parts = append(parts, tok.text)
		case tokClose:
			return "(" + strings.Join(parts, " ") + ")", nil
		default:
			return "", p.errf(tok.line, "word group is missing its ')'")
		}
	}
}

// parseReassemblies reads the reassembly groups of one block, detecting
// the PRE form, and consumes the block's closing paren.
func (p *parser) parseReassemblies(keyword string, pattern []string) (block, error) {
	var reassemblies [][]string
	for {
		tok := p.tz.next()
		switch tok.kind {
		case tokClose:
			if len(reassemblies) == 0 {
				return block{}, p.errf(tok.line, "decomposition in rule %s has no reassembly rules", keyword)
			}
			return block{decomp: eliza.Decomposition{Pattern: pattern, Reassemblies: reassemblies}}, nil
		case tokOpen:
			first := p.tz.peek()
			if first.kind == tokSymbol && first.text == "PRE" {
				if len(reassemblies) != 0 {
					return block{}, p.errf(first.line, "rule %s: PRE must be the only reassembly of its decomposition", keyword)
				}
				pre, err := p.parsePre(keyword, pattern)
				if err != nil {
					return block{}, err
				}
				if _, err := p.expect(tokClose, "ending the PRE block"); err != nil {
					return block{}, err
				}
				return block{pre: pre}, nil
			}
			reassembly, err := p.parseReassembly(keyword)
			if err != nil {
				return block{}, err
			}
			reassemblies = append(reassemblies, reassembly)
		default:
			return block{}, p.errf(tok.line, "expected reassembly or ')' in rule %s, got %s %q", keyword, tok.kind, tok.text)
		}
	}
}

// parseReassembly reads one reassembly word list, normalizing a spaced
// "=' TARGET" link to a single "=TARGET" token.
func (p *parser) parseReassembly(keyword string) ([]string, error) {
	var words []string
	for {
		tok := p.tz.next()
		switch tok.kind {
		case tokSymbol:
			words = append(words, tok.text)
		case tokClose:
			if len(words) == 2 && words[0] == "=" {
				words = []string{"=" + words[1]}
			}
			return words, nil
		default:
			return nil, p.errf(tok.line, "reassembly in rule %s is missing its ')'", keyword)
		}
	}
}

// parsePre reads "PRE (reassembly) (=TARGET)" after the PRE symbol has
// been peeked; it consumes up to the PRE group's closing paren.
func (p *parser) parsePre(keyword string, pattern []string) (*preBlock, error) {
	p.tz.next() // the PRE symbol
	if _, err := p.expect(tokOpen, "starting the PRE reassembly"); err != nil {
		return nil, err
	}
	reassembly, err := p.parseReassembly(keyword)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokOpen, "starting the PRE link"); err != nil {
		return nil, err
	}
	first := p.tz.next()
	if first.kind != tokSymbol {
		return nil, p.errf(first.line, "expected '=' link in PRE for rule %s, got %s", keyword, first.kind)
	}
	link, err := p.parseLinkBody(first, keyword)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokClose, "ending the PRE group"); err != nil {
		return nil, err
	}
	return &preBlock{pattern: pattern, reassembly: reassembly, target: strings.TrimPrefix(link, "=")}, nil
}
