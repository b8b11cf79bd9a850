package models

// ScriptInfo summarizes a loaded conversation script for the script
// inspection command and the MCP script_info tool.
type ScriptInfo struct {
	Greeting      string              `json:"greeting"`
	RuleCount     int                 `json:"rule_count"`
	KindCounts    map[string]int      `json:"kind_counts"`
	Precedence    []KeywordPrecedence `json:"precedence,omitempty"`
	Tags          map[string][]string `json:"tags,omitempty"`
	HasNoneRule   bool                `json:"has_none_rule"`
	HasMemoryRule bool                `json:"has_memory_rule"`
	MemoryKeyword string              `json:"memory_keyword,omitempty"`
}

// KeywordPrecedence is one row of a script's precedence table.
type KeywordPrecedence struct {
	Keyword    string `json:"keyword"`
	Precedence int    `json:"precedence"`
}
