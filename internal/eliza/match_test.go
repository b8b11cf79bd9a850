package eliza

import (
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestMatch(t *testing.T) {
	tags := TagMap{}
	tags.Add("FAMILY", "MOTHER")
	tags.Add("FAMILY", "FATHER")

	tests := []struct {
		name    string
		pattern []string
		words   []string
		want    []string
		wantOK  bool
	}{
		{
			name:    "wildcards around a literal group",
			pattern: []string{"0", "YOU", "(*WANT NEED)", "0"},
			words:   []string{"YOU", "NEED", "NICE", "FOOD"},
			want:    []string{"", "YOU", "NEED", "NICE FOOD"},
			wantOK:  true,
		},
		{
			name:    "exact counts cannot absorb leftovers",
			pattern: []string{"1", "(*WANT NEED)", "1"},
			words:   []string{"YOU", "WANT", "NICE", "FOOD"},
			wantOK:  false,
		},
		{
			name:    "mixed exact counts and wildcards",
			pattern: []string{"MARY", "2", "2", "ITS", "1", "0"},
			words:   []string{"MARY", "HAD", "A", "LITTLE", "LAMB", "ITS", "PROBABILITY", "WAS", "ZERO"},
			want:    []string{"MARY", "HAD A", "LITTLE LAMB", "ITS", "PROBABILITY", "WAS ZERO"},
			wantOK:  true,
		},
		{
			name:    "empty pattern matches only empty words",
			pattern: []string{},
			words:   []string{},
			want:    []string{},
			wantOK:  true,
		},
		{
			name:    "empty pattern rejects leftover words",
			pattern: []string{},
			words:   []string{"X"},
			wantOK:  false,
		},
		{
			name:    "zero wildcard matches nothing",
			pattern: []string{"0"},
			words:   []string{},
			want:    []string{""},
			wantOK:  true,
		},
		{
			name:    "zero wildcard takes the shortest capture first",
			pattern: []string{"0", "YOU", "0"},
			words:   []string{"YOU", "SAY", "YOU", "KNOW"},
			want:    []string{"", "YOU", "SAY YOU KNOW"},
			wantOK:  true,
		},
		{
			name:    "backtracking past an early literal match",
			pattern: []string{"0", "YOU", "ARE", "0"},
			words:   []string{"WHY", "YOU", "SAY", "YOU", "ARE", "SAD"},
			want:    []string{"WHY YOU SAY", "YOU", "ARE", "SAD"},
			wantOK:  true,
		},
		{
			name:    "tag group element",
			pattern: []string{"0", "YOUR", "0", "(/FAMILY)", "0"},
			words:   []string{"WELL", "YOUR", "OLD", "MOTHER", "WORRIES", "ME"},
			want:    []string{"WELL", "YOUR", "OLD", "MOTHER", "WORRIES ME"},
			wantOK:  true,
		},
		{
			name:    "tag group rejects non-member",
			pattern: []string{"0", "(/FAMILY)", "0"},
			words:   []string{"YOUR", "BOYFRIEND", "CALLED"},
			wantOK:  false,
		},
		{
			name:    "exact count short of words",
			pattern: []string{"3"},
			words:   []string{"TOO", "FEW"},
			wantOK:  false,
		},
		{
			name:    "literal mismatch",
			pattern: []string{"HELLO"},
			words:   []string{"GOODBYE"},
			wantOK:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tags, tt.pattern, tt.words)
			if ok != tt.wantOK {
				t.Fatalf("Match ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match components = %v, want %v", got, tt.want)
			}
		})
	}
}

// A successful match must produce one component per pattern element, and
// re-splitting the components must reproduce the input words.
func TestProperty_MatchComponentsPartitionWords(t *testing.T) {
	wordGen := rapid.StringMatching(`[A-Z]{1,6}`)
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfN(wordGen, 0, 8).Draw(rt, "words")
		// A catch-all pattern of alternating wildcards always matches.
		pattern := []string{"0", "0"}
		components, ok := Match(nil, pattern, words)
		if !ok {
			rt.Fatalf("catch-all pattern failed on %v", words)
		}
		if len(components) != len(pattern) {
			rt.Fatalf("got %d components for %d elements", len(components), len(pattern))
		}
		var rejoined []string
		for _, c := range components {
			if c != "" {
				rejoined = append(rejoined, strings.Fields(c)...)
			}
		}
		if strings.Join(rejoined, " ") != strings.Join(words, " ") {
			rt.Fatalf("components %v do not partition %v", components, words)
		}
	})
}

// The zero-or-more wildcard must resolve ties by the leftmost, shortest
// capture: the first "0" takes as little as possible.
func TestProperty_MatchShortestFirst(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		words := make([]string, 0, n+1)
		for i := 0; i < n+1; i++ {
			words = append(words, "X")
		}
		components, ok := Match(nil, []string{"0", "X", "0"}, words)
		if !ok {
			rt.Fatalf("match failed on %v", words)
		}
		if components[0] != "" {
			rt.Fatalf("first wildcard captured %q, want empty", components[0])
		}
	})
}
