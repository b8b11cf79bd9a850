package eliza

import (
	"fmt"
	"strings"
)

// Reserved rule-map keys. Input words are uppercase after filtering, so a
// key containing a lowercase byte can never collide with a real word.
const (
	KeyNone   = "zNONE"
	KeyMemory = "zMEMORY"
)

// Rule kinds, as reported by Rule.Kind.
const (
	KindSubstitution = "substitution"
	KindTags         = "tags"
	KindLink         = "link"
	KindPre          = "pre"
	KindMemory       = "memory"
	KindVanilla      = "vanilla"
)

// ActionKind discriminates the outcomes of Rule.Transform.
type ActionKind int

const (
	// ActionInapplicable means the rule cannot process the sentence
	// (no decomposition matched, or the rule has no transformation).
	ActionInapplicable ActionKind = iota
	// ActionComplete carries the finished response words.
	ActionComplete
	// ActionNewKey tells the engine to try the next keystack keyword.
	ActionNewKey
	// ActionLink redirects processing to Target; when Words is non-nil
	// it also replaces the working sentence.
	ActionLink
)

// Action is the result of applying a rule's transformation.
type Action struct {
	Kind   ActionKind
	Words  []string
	Target string
}

// Rule is the uniform transformation contract implemented by every
// keyword rule variant.
type Rule interface {
	Keyword() string
	Precedence() int
	Kind() string

	// Substitute returns the rule's configured word substitution when
	// word equals the keyword exactly; ok is false when inapplicable.
	Substitute(word string) (replacement string, ok bool)

	// HasTransformation reports whether the rule can process a full
	// sentence. Keywords whose rules cannot are never pushed onto the
	// keystack.
	HasTransformation() bool

	// Transform applies the rule to the working sentence. Mutable rule
	// state (reassembly cycle positions) lives in st, never in the rule
	// itself, so one parsed script can serve many sessions.
	Transform(words []string, tags TagMap, st *State) Action
}

// ruleBase carries the fields common to all rule variants.
type ruleBase struct {
	keyword     string
	replacement string
	precedence  int
}

func (r ruleBase) Keyword() string { return r.keyword }

func (r ruleBase) Precedence() int { return r.precedence }

func (r ruleBase) Substitute(word string) (string, bool) {
	if r.replacement != "" && word == r.keyword {
		return r.replacement, true
	}
	return word, false
}

// --- unconditional substitution ---

type substitutionRule struct {
	ruleBase
}

// NewSubstitutionRule builds a keyword rule whose only effect is replacing
// the keyword with another word during the scanning pass.
func NewSubstitutionRule(keyword, replacement string) Rule {
	return &substitutionRule{ruleBase{keyword: keyword, replacement: replacement}}
}

func (r *substitutionRule) Kind() string            { return KindSubstitution }
func (r *substitutionRule) HasTransformation() bool { return false }

func (r *substitutionRule) Transform([]string, TagMap, *State) Action {
	return Action{Kind: ActionInapplicable}
}

// --- tag declaration ---

type tagRule struct {
	ruleBase
	tags []string
}

// NewTagRule builds a rule declaring its keyword a member of the given
// tags, with an optional word substitution.
func NewTagRule(keyword, replacement string, tags []string) Rule {
	return &tagRule{
		ruleBase: ruleBase{keyword: keyword, replacement: replacement},
		tags:     tags,
	}
}

func (r *tagRule) Kind() string            { return KindTags }
func (r *tagRule) HasTransformation() bool { return false }

func (r *tagRule) Transform([]string, TagMap, *State) Action {
	return Action{Kind: ActionInapplicable}
}

// Tags returns the tag names this keyword was declared under.
func (r *tagRule) Tags() []string { return r.tags }

// --- equivalence link ---

type linkRule struct {
	ruleBase
	target string
}

// NewLinkRule builds a rule that redirects processing to another keyword
// without touching the sentence.
func NewLinkRule(keyword, replacement string, precedence int, target string) Rule {
	return &linkRule{
		ruleBase: ruleBase{keyword: keyword, replacement: replacement, precedence: precedence},
		target:   target,
	}
}

func (r *linkRule) Kind() string            { return KindLink }
func (r *linkRule) HasTransformation() bool { return true }

func (r *linkRule) Transform([]string, TagMap, *State) Action {
	return Action{Kind: ActionLink, Target: r.target}
}

// --- pre-transformation link ---

type preRule struct {
	ruleBase
	pattern    []string
	reassembly []string
	target     string
}

// NewPreRule builds a rule that rewrites the sentence through a single
// decomposition/reassembly pair and then links to another keyword. Used
// for pronoun swaps such as I'M -> YOU'RE before the linked rule runs.
func NewPreRule(keyword, replacement string, pattern, reassembly []string, target string) Rule {
	return &preRule{
		ruleBase:   ruleBase{keyword: keyword, replacement: replacement},
		pattern:    pattern,
		reassembly: reassembly,
		target:     target,
	}
}

func (r *preRule) Kind() string            { return KindPre }
func (r *preRule) HasTransformation() bool { return true }

func (r *preRule) Transform(words []string, tags TagMap, _ *State) Action {
	// The link is unconditional; the rewrite happens only when the
	// decomposition matches.
	if components, ok := Match(tags, r.pattern, words); ok {
		words = Reassemble(r.reassembly, components)
	}
	return Action{Kind: ActionLink, Words: words, Target: r.target}
}

// --- memory ---

// MemoryPair is one of a memory rule's four decomposition/reassembly
// pairs.
type MemoryPair struct {
	Pattern    []string
	Reassembly []string
}

// MemoryRule opportunistically records a reassembled sentence whenever
// its trigger keyword is attempted, for recall on a later keyword-less
// turn. It never transforms the sentence itself.
type MemoryRule struct {
	ruleBase
	pairs []MemoryPair
}

// MemoryPairCount is the required number of decomposition/reassembly
// pairs; pair selection uses a 2-bit hash.
const MemoryPairCount = 4

// NewMemoryRule builds the memory rule for the given trigger keyword.
// Exactly four pairs are required.
func NewMemoryRule(keyword string, pairs []MemoryPair) (*MemoryRule, error) {
	if len(pairs) != MemoryPairCount {
		return nil, fmt.Errorf("memory rule for %s: want %d decomposition/reassembly pairs, got %d",
			keyword, MemoryPairCount, len(pairs))
	}
	return &MemoryRule{
		ruleBase: ruleBase{keyword: keyword},
		pairs:    append([]MemoryPair(nil), pairs...),
	}, nil
}

func (r *MemoryRule) Kind() string            { return KindMemory }
func (r *MemoryRule) HasTransformation() bool { return false }

func (r *MemoryRule) Transform([]string, TagMap, *State) Action {
	return Action{Kind: ActionInapplicable}
}

// CreateMemory records a new memory when trigger equals this rule's own
// keyword. The pair is chosen by hashing the packed final word of the
// sentence down to two bits; if that pair's decomposition matches, the
// reassembled text is appended to the session's memory queue.
func (r *MemoryRule) CreateMemory(trigger string, words []string, tags TagMap, st *State) {
	if trigger != r.keyword || len(words) == 0 {
		return
	}
	pair := r.pairs[Hash(LastChunkAsDatum(words[len(words)-1]), 2)]
	components, ok := Match(tags, pair.Pattern, words)
	if !ok {
		return
	}
	st.remember(JoinWords(Reassemble(pair.Reassembly, components)))
}

// --- vanilla decomposition/reassembly ---

// Decomposition pairs one decomposition pattern with its ordered
// reassembly rules. Successive matches cycle through the reassemblies in
// declaration order (round-robin, not random); the cycle position lives
// in the session State.
type Decomposition struct {
	Pattern      []string
	Reassemblies [][]string
}

type vanillaRule struct {
	ruleBase
	decompositions []Decomposition
}

// NewVanillaRule builds an ordinary keyword rule with one or more
// decomposition patterns, each carrying its own reassembly cycle.
func NewVanillaRule(keyword, replacement string, precedence int, decompositions []Decomposition) Rule {
	return &vanillaRule{
		ruleBase:       ruleBase{keyword: keyword, replacement: replacement, precedence: precedence},
		decompositions: decompositions,
	}
}

func (r *vanillaRule) Kind() string            { return KindVanilla }
func (r *vanillaRule) HasTransformation() bool { return true }

func (r *vanillaRule) Transform(words []string, tags TagMap, st *State) Action {
	for di, d := range r.decompositions {
		components, ok := Match(tags, d.Pattern, words)
		if !ok {
			continue
		}
		reassembly := d.Reassemblies[st.nextCycle(r.keyword, di, len(d.Reassemblies))]
		if len(reassembly) == 1 {
			if reassembly[0] == "NEWKEY" {
				return Action{Kind: ActionNewKey}
			}
			if target, ok := linkTarget(reassembly[0]); ok {
				return Action{Kind: ActionLink, Target: target}
			}
		}
		return Action{Kind: ActionComplete, Words: Reassemble(reassembly, components)}
	}
	return Action{Kind: ActionInapplicable}
}

// linkTarget extracts the keyword from a "=TARGET" reassembly token.
func linkTarget(token string) (string, bool) {
	if strings.HasPrefix(token, "=") && len(token) > 1 {
		return token[1:], true
	}
	return "", false
}

// --- per-session mutable rule state ---

// State owns the mutable parts of a loaded script for one session: the
// round-robin cycle position of every decomposition and the memory FIFO.
// Keeping these out of the rules lets concurrent sessions share a parsed
// Script read-only.
type State struct {
	cycles map[cycleKey]int
	memory []string
}

type cycleKey struct {
	keyword string
	decomp  int
}

// NewState returns empty per-session rule state.
func NewState() *State {
	return &State{cycles: make(map[cycleKey]int)}
}

// nextCycle returns the current cycle position for the given
// decomposition and advances it modulo n.
func (s *State) nextCycle(keyword string, decomp, n int) int {
	k := cycleKey{keyword: keyword, decomp: decomp}
	idx := s.cycles[k] % n
	s.cycles[k] = idx + 1
	return idx
}

// remember appends text to the memory queue.
func (s *State) remember(text string) {
	s.memory = append(s.memory, text)
}

// HasMemory reports whether a stored memory is available for recall.
func (s *State) HasMemory() bool { return len(s.memory) > 0 }

// RecallMemory dequeues and returns the oldest stored memory, or the
// empty string when none is available.
func (s *State) RecallMemory() string {
	if len(s.memory) == 0 {
		return ""
	}
	text := s.memory[0]
	s.memory = s.memory[1:]
	return text
}
