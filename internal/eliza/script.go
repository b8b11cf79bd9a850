package eliza

import (
	"fmt"
	"sort"

	"github.com/valter-silva-au/eliza/pkg/models"
)

// Script is a fully parsed rule set: the greeting word-list, the keyword
// rule map, and the tag map derived from all tag declarations. A Script
// is immutable after load and safe to share between sessions; all
// per-conversation mutable state lives in Session/State.
type Script struct {
	Greeting []string
	Rules    map[string]Rule
	Tags     TagMap
}

// Validate checks the invariants every loaded script must satisfy before
// a session can run: the reserved NONE rule with a transformation, and
// the reserved memory rule.
func (s *Script) Validate() error {
	none, ok := s.Rules[KeyNone]
	if !ok {
		return fmt.Errorf("script: missing required NONE rule")
	}
	if !none.HasTransformation() {
		return fmt.Errorf("script: NONE rule has no transformation")
	}
	if _, ok := s.Rules[KeyMemory].(*MemoryRule); !ok {
		return fmt.Errorf("script: missing required MEMORY rule")
	}
	return nil
}

// Info summarizes the script for operational inspection: keyword counts
// by rule kind, the non-zero precedence table, tags, and the reserved
// rules' presence.
func (s *Script) Info() models.ScriptInfo {
	info := models.ScriptInfo{
		Greeting:   JoinWords(s.Greeting),
		RuleCount:  len(s.Rules),
		KindCounts: make(map[string]int),
		Tags:       make(map[string][]string, len(s.Tags)),
	}
	for key, rule := range s.Rules {
		info.KindCounts[rule.Kind()]++
		switch key {
		case KeyNone:
			info.HasNoneRule = true
			continue
		case KeyMemory:
			info.HasMemoryRule = true
			info.MemoryKeyword = rule.Keyword()
			continue
		}
		if rule.Precedence() != 0 {
			info.Precedence = append(info.Precedence, models.KeywordPrecedence{
				Keyword:    key,
				Precedence: rule.Precedence(),
			})
		}
	}
	sort.Slice(info.Precedence, func(i, j int) bool {
		a, b := info.Precedence[i], info.Precedence[j]
		if a.Precedence != b.Precedence {
			return a.Precedence > b.Precedence
		}
		return a.Keyword < b.Keyword
	})
	for tag, members := range s.Tags {
		info.Tags[tag] = append([]string(nil), members...)
	}
	return info
}
