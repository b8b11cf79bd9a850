package eliza

import (
	"fmt"

	"go.uber.org/zap"
)

// fallbackPhrases are the four canned responses selected by the turn
// counter when a keyword cannot produce an answer.
var fallbackPhrases = [limitCycle]string{
	"PLEASE CONTINUE",
	"HMMM",
	"GO ON , PLEASE",
	"I SEE",
}

const (
	// limitCycle is the period of the turn counter.
	limitCycle = 4
	// recallLimit is the counter value at which a keyword-less input may
	// recall a stored memory.
	recallLimit = 4
	// maxLinks bounds rule-link chains per turn so a cyclic script
	// cannot hang a session.
	maxLinks = 100
)

// Session runs one conversation over a loaded script. It owns all
// per-conversation mutable state: the 1..4 turn counter, the reassembly
// cycle positions, and the memory queue. Sessions are not safe for
// concurrent use; run one goroutine per session and share the Script.
type Session struct {
	script *Script
	memory *MemoryRule
	state  *State
	limit  int
	turn   int
	logger *zap.Logger
	trace  *Trace
}

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a logger for per-turn debug traces.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a conversation session over script. It fails when
// the script lacks the reserved NONE or MEMORY rules.
func NewSession(script *Script, opts ...Option) (*Session, error) {
	if script == nil {
		return nil, fmt.Errorf("new session: nil script")
	}
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s := &Session{
		script: script,
		memory: script.Rules[KeyMemory].(*MemoryRule),
		state:  NewState(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Greeting returns the script's opening line.
func (s *Session) Greeting() string {
	return JoinWords(s.script.Greeting)
}

// Turn returns the number of completed exchanges.
func (s *Session) Turn() int { return s.turn }

// LastTrace returns the derivation trace of the most recent Respond
// call, or nil before the first turn.
func (s *Session) LastTrace() *Trace { return s.trace }

// Respond produces the response to one line of user input. It is total:
// whatever the input or the script's runtime inconsistencies, it returns
// a display-ready string.
func (s *Session) Respond(input string) string {
	s.limit = s.limit%limitCycle + 1
	s.turn++
	s.trace = &Trace{Input: input, Limit: s.limit}

	words := Tokenize(Filter(Uppercase(input)))
	keystack := s.scan(words, s.trace)
	words = s.trace.Words

	response := s.applyRules(keystack, words)
	s.trace.Response = response
	s.logger.Debug("turn",
		zap.Int("turn", s.turn),
		zap.Int("limit", s.limit),
		zap.Strings("keystack", s.trace.Keystack),
		zap.Strings("words", s.trace.Words),
		zap.Bool("memory_recalled", s.trace.MemoryRecalled),
		zap.String("response", response),
	)
	return response
}

// scan walks the words once, left to right, building the keystack and
// applying word substitutions in place. Only the first keyword-bearing
// clause survives: a delimiter before any keyword discards the prefix, a
// delimiter after one discards the rest. The trimmed, substituted words
// are recorded on the trace.
func (s *Session) scan(words []string, trace *Trace) []string {
	var keystack []string
	topRank := 0
	i := 0
	for i < len(words) {
		w := words[i]
		if delimiter(w) {
			if len(keystack) == 0 {
				words = words[i+1:]
				i = 0
				continue
			}
			words = words[:i]
			break
		}
		if rule, ok := s.script.Rules[w]; ok {
			if rule.HasTransformation() {
				if rule.Precedence() > topRank {
					keystack = prepend(w, keystack)
					topRank = rule.Precedence()
				} else {
					keystack = append(keystack, w)
				}
			}
			if sub, ok := rule.Substitute(w); ok {
				words[i] = sub
				trace.Substitutions++
			}
		}
		i++
	}
	trace.Words = words
	trace.Keystack = append([]string(nil), keystack...)
	return keystack
}

// applyRules drains the keystack per the per-turn algorithm: memory
// recall for keyword-less input, then keyword rules with link and
// new-key handling, then the NONE rule as the guaranteed backstop.
func (s *Session) applyRules(keystack, words []string) string {
	if len(keystack) == 0 {
		if s.limit == recallLimit && s.state.HasMemory() {
			s.trace.MemoryRecalled = true
			return s.state.RecallMemory()
		}
	}

	links := 0
	for len(keystack) > 0 {
		key := keystack[0]
		keystack = keystack[1:]

		rule, ok := s.script.Rules[key]
		if !ok {
			// Dangling link or stale keyword: degrade, don't fail.
			s.trace.step(key, "missing")
			return fallbackPhrases[s.limit-1]
		}

		// Memory creation is attempted on every keyword, as a side
		// effect that never alters control flow.
		before := len(s.state.memory)
		s.memory.CreateMemory(key, words, s.script.Tags, s.state)
		if len(s.state.memory) > before {
			s.trace.MemoryStored = s.state.memory[len(s.state.memory)-1]
		}

		switch action := rule.Transform(words, s.script.Tags, s.state); action.Kind {
		case ActionComplete:
			s.trace.step(key, "complete")
			return JoinWords(action.Words)
		case ActionInapplicable:
			s.trace.step(key, "inapplicable")
			return fallbackPhrases[s.limit-1]
		case ActionNewKey:
			s.trace.step(key, "newkey")
		case ActionLink:
			s.trace.step(key, "link "+action.Target)
			if action.Words != nil {
				words = action.Words
			}
			links++
			if links > maxLinks {
				return fallbackPhrases[s.limit-1]
			}
			keystack = prepend(action.Target, keystack)
		}
	}

	// The NONE rule's sole catch-all decomposition always matches.
	if action := s.script.Rules[KeyNone].Transform(words, s.script.Tags, s.state); action.Kind == ActionComplete {
		s.trace.step(KeyNone, "complete")
		return JoinWords(action.Words)
	}
	return fallbackPhrases[s.limit-1]
}
