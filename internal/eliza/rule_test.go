package eliza

import (
	"reflect"
	"testing"
)

func TestSubstitutionRule(t *testing.T) {
	r := NewSubstitutionRule("DONT", "DON'T")
	if r.HasTransformation() {
		t.Error("substitution rule must have no transformation")
	}
	if got, ok := r.Substitute("DONT"); !ok || got != "DON'T" {
		t.Errorf("Substitute(DONT) = %q, %v", got, ok)
	}
	if got, ok := r.Substitute("DONTS"); ok || got != "DONTS" {
		t.Errorf("Substitute(DONTS) = %q, %v; substitution must require exact equality", got, ok)
	}
	if act := r.Transform([]string{"X"}, nil, NewState()); act.Kind != ActionInapplicable {
		t.Errorf("Transform kind = %v, want inapplicable", act.Kind)
	}
}

func TestSubstitutionRuleWithoutReplacement(t *testing.T) {
	r := NewSubstitutionRule("NOOP", "")
	if got, ok := r.Substitute("NOOP"); ok || got != "NOOP" {
		t.Errorf("empty replacement must never substitute, got %q, %v", got, ok)
	}
}

func TestTagRule(t *testing.T) {
	r := NewTagRule("MOM", "MOTHER", []string{"FAMILY"})
	if r.HasTransformation() {
		t.Error("tag rule must have no transformation")
	}
	if got, ok := r.Substitute("MOM"); !ok || got != "MOTHER" {
		t.Errorf("Substitute(MOM) = %q, %v", got, ok)
	}
	if r.Kind() != KindTags {
		t.Errorf("Kind = %q", r.Kind())
	}
}

func TestLinkRule(t *testing.T) {
	r := NewLinkRule("ALIKE", "", 10, "DIT")
	if !r.HasTransformation() {
		t.Error("link rule must have a transformation")
	}
	act := r.Transform([]string{"ANY", "WORDS"}, nil, NewState())
	if act.Kind != ActionLink || act.Target != "DIT" {
		t.Errorf("Transform = %+v, want link to DIT", act)
	}
	if act.Words != nil {
		t.Error("equivalence link must not touch the sentence")
	}
	if r.Precedence() != 10 {
		t.Errorf("Precedence = %d", r.Precedence())
	}
}

func TestPreRule(t *testing.T) {
	r := NewPreRule("I'M", "YOU'RE", []string{"0", "YOU'RE", "0"}, []string{"YOU", "ARE", "3"}, "I")

	act := r.Transform([]string{"WELL", "YOU'RE", "VERY", "KIND"}, nil, NewState())
	if act.Kind != ActionLink || act.Target != "I" {
		t.Fatalf("Transform = %+v, want link to I", act)
	}
	want := []string{"YOU", "ARE", "VERY", "KIND"}
	if !reflect.DeepEqual(act.Words, want) {
		t.Errorf("rewritten words = %v, want %v", act.Words, want)
	}

	// The link fires even when the decomposition does not match.
	act = r.Transform([]string{"NOTHING", "RELEVANT"}, nil, NewState())
	if act.Kind != ActionLink || act.Target != "I" {
		t.Errorf("Transform on non-match = %+v, want link to I", act)
	}
	if !reflect.DeepEqual(act.Words, []string{"NOTHING", "RELEVANT"}) {
		t.Errorf("non-matching pre rule must pass words through, got %v", act.Words)
	}
}

func TestVanillaRuleRoundRobin(t *testing.T) {
	r := NewVanillaRule("ALWAYS", "", 1, []Decomposition{{
		Pattern: []string{"0"},
		Reassemblies: [][]string{
			{"CAN", "YOU", "THINK", "OF", "A", "SPECIFIC", "EXAMPLE"},
			{"WHEN"},
			{"REALLY,", "ALWAYS"},
		},
	}})
	st := NewState()
	words := []string{"YOU", "ALWAYS", "SAY", "THAT"}

	want := []string{
		"CAN YOU THINK OF A SPECIFIC EXAMPLE",
		"WHEN",
		"REALLY, ALWAYS",
		"CAN YOU THINK OF A SPECIFIC EXAMPLE", // wraps around
	}
	for i, w := range want {
		act := r.Transform(words, nil, st)
		if act.Kind != ActionComplete {
			t.Fatalf("use %d: kind = %v", i, act.Kind)
		}
		if got := JoinWords(act.Words); got != w {
			t.Errorf("use %d: response = %q, want %q", i, got, w)
		}
	}
}

func TestVanillaRuleDecompositionOrder(t *testing.T) {
	r := NewVanillaRule("WAS", "", 2, []Decomposition{
		{Pattern: []string{"0", "WAS", "YOU", "0"}, Reassemblies: [][]string{{"WERE", "YOU", "4"}}},
		{Pattern: []string{"0"}, Reassemblies: [][]string{{"FALLBACK"}}},
	})
	st := NewState()

	act := r.Transform([]string{"WAS", "YOU", "SAD"}, nil, st)
	if JoinWords(act.Words) != "WERE YOU SAD" {
		t.Errorf("first decomposition should win: %v", act.Words)
	}
	act = r.Transform([]string{"NO", "MATCH", "HERE"}, nil, st)
	if JoinWords(act.Words) != "FALLBACK" {
		t.Errorf("later decomposition should catch: %v", act.Words)
	}
}

func TestVanillaRuleNewKeyAndLink(t *testing.T) {
	r := NewVanillaRule("REMEMBER", "", 5, []Decomposition{
		{Pattern: []string{"0", "DO", "I", "REMEMBER", "0"}, Reassemblies: [][]string{{"=WHAT"}}},
		{Pattern: []string{"0"}, Reassemblies: [][]string{{"NEWKEY"}}},
	})
	st := NewState()

	act := r.Transform([]string{"DO", "I", "REMEMBER", "YOU"}, nil, st)
	if act.Kind != ActionLink || act.Target != "WHAT" {
		t.Errorf("=WHAT reassembly should link, got %+v", act)
	}
	act = r.Transform([]string{"UNRELATED"}, nil, st)
	if act.Kind != ActionNewKey {
		t.Errorf("NEWKEY reassembly should signal next keyword, got %+v", act)
	}
}

func TestVanillaRuleInapplicable(t *testing.T) {
	r := NewVanillaRule("IF", "", 3, []Decomposition{
		{Pattern: []string{"0", "IF", "0"}, Reassemblies: [][]string{{"SO"}}},
	})
	if act := r.Transform([]string{"NO", "CONDITION"}, nil, NewState()); act.Kind != ActionInapplicable {
		t.Errorf("kind = %v, want inapplicable", act.Kind)
	}
}

func testMemoryPairs() []MemoryPair {
	return []MemoryPair{
		{Pattern: []string{"0", "YOUR", "0"}, Reassembly: []string{"LETS", "DISCUSS", "YOUR", "3"}},
		{Pattern: []string{"0", "YOUR", "0"}, Reassembly: []string{"EARLIER", "YOU", "SAID", "YOUR", "3"}},
		{Pattern: []string{"0", "YOUR", "0"}, Reassembly: []string{"BUT", "YOUR", "3"}},
		{Pattern: []string{"0", "YOUR", "0"}, Reassembly: []string{"DOES", "THAT", "RELATE", "TO", "YOUR", "3"}},
	}
}

func TestNewMemoryRuleRequiresFourPairs(t *testing.T) {
	for _, n := range []int{0, 3, 5} {
		pairs := make([]MemoryPair, n)
		for i := range pairs {
			pairs[i] = testMemoryPairs()[i%4]
		}
		if _, err := NewMemoryRule("MY", pairs); err == nil {
			t.Errorf("NewMemoryRule with %d pairs: want error", n)
		}
	}
	if _, err := NewMemoryRule("MY", testMemoryPairs()); err != nil {
		t.Errorf("NewMemoryRule with 4 pairs: %v", err)
	}
}

func TestMemoryRuleCreateAndRecall(t *testing.T) {
	r, err := NewMemoryRule("MY", testMemoryPairs())
	if err != nil {
		t.Fatal(err)
	}
	st := NewState()

	// Wrong trigger keyword is a no-op.
	r.CreateMemory("YOUR", []string{"YOUR", "DOG", "BARKS"}, nil, st)
	if st.HasMemory() {
		t.Fatal("memory stored for foreign trigger")
	}

	// hash(pack("HERE"), 2) == 3 selects the fourth pair.
	r.CreateMemory("MY", []string{"YOUR", "BOYFRIEND", "MADE", "YOU", "COME", "HERE"}, nil, st)
	if !st.HasMemory() {
		t.Fatal("memory not stored")
	}
	got := st.RecallMemory()
	want := "DOES THAT RELATE TO YOUR BOYFRIEND MADE YOU COME HERE"
	if got != want {
		t.Errorf("recalled %q, want %q", got, want)
	}

	// hash(pack("TIME"), 2) == 0 selects the first pair.
	r.CreateMemory("MY", []string{"YOUR", "LACK", "OF", "TIME"}, nil, st)
	if got := st.RecallMemory(); got != "LETS DISCUSS YOUR LACK OF TIME" {
		t.Errorf("recalled %q", got)
	}
}

func TestMemoryQueueIsFIFO(t *testing.T) {
	r, err := NewMemoryRule("MY", testMemoryPairs())
	if err != nil {
		t.Fatal(err)
	}
	st := NewState()
	r.CreateMemory("MY", []string{"YOUR", "FIRST", "TIME"}, nil, st)
	r.CreateMemory("MY", []string{"YOUR", "SECOND", "TIME"}, nil, st)

	if got := st.RecallMemory(); got != "LETS DISCUSS YOUR FIRST TIME" {
		t.Errorf("first recall = %q", got)
	}
	if got := st.RecallMemory(); got != "LETS DISCUSS YOUR SECOND TIME" {
		t.Errorf("second recall = %q", got)
	}
	if st.HasMemory() {
		t.Error("queue should be drained")
	}
	if got := st.RecallMemory(); got != "" {
		t.Errorf("recall on empty queue = %q, want empty", got)
	}
}
