package visit

import "testing"

func TestFuzzyMatchEmptyInputs(t *testing.T) {
	if !FuzzyMatch("", "") {
		t.Error("empty search must match empty text")
	}
	if !FuzzyMatch("anything", "") {
		t.Error("empty search must match any text")
	}
	if FuzzyMatch("", "ali") {
		t.Error("empty text must not match a non-empty search")
	}
}

func TestFuzzyMatchSubstring(t *testing.T) {
	tests := []struct {
		text, search string
		want         bool
	}{
		{"Ali Khan", "ali", true},
		{"Ali Khan", "khan", true},
		{"Ali Khan", "ali khan", true},
		{"café", "cafe", true}, // diacritic insensitive
		{"Mönchengladbach", "monchengladbach", true},
		{"03001234567", "0300", true},
		{"Ali Khan", "x", false}, // single chars never fuzzy-match
		{"Ali Khan", "a", true},  // but do match as substrings
	}
	for _, tt := range tests {
		if got := FuzzyMatch(tt.text, tt.search); got != tt.want {
			t.Errorf("FuzzyMatch(%q, %q) = %v, want %v", tt.text, tt.search, got, tt.want)
		}
	}
}

func TestFuzzyMatchConjunctive(t *testing.T) {
	if FuzzyMatch("John Smith", "john doe") {
		t.Error("every search word must match; 'doe' does not occur in 'John Smith'")
	}
	if !FuzzyMatch("John Smith", "smith john") {
		t.Error("word order must not matter for substring hits")
	}
}

func TestFuzzyMatchTypoTolerance(t *testing.T) {
	tests := []struct {
		text, search string
		want         bool
	}{
		// One inserted char within the 1-per-4 budget.
		{"khaan", "khan", true},
		// Two errors against a budget of one.
		{"smith", "doe", false},
		// Budget scales with length: floor(8/4) = 2 errors allowed and the
		// pointer reaches exactly the 75% coverage floor.
		{"abcdefgh", "abcdefxy", true},
		{"muhammad", "muhamad", true},
	}
	for _, tt := range tests {
		if got := FuzzyMatch(tt.text, tt.search); got != tt.want {
			t.Errorf("FuzzyMatch(%q, %q) = %v, want %v", tt.text, tt.search, got, tt.want)
		}
	}
}

func TestFuzzyMatchSelfMatch(t *testing.T) {
	texts := []string{"Ali Khan", "café corner", "Sara-Jane O'Neil", "سلام دنیا"}
	for _, text := range texts {
		if !FuzzyMatch(text, Normalize(text)) {
			t.Errorf("FuzzyMatch(%q, Normalize(same)) = false, want true", text)
		}
	}
}

func TestFuzzyWordMatchAsymmetry(t *testing.T) {
	// The scan tolerates insertions in the candidate relative to the search
	// word but is order-sensitive: it is not a symmetric edit distance.
	if !fuzzyWordMatch("khan", "khaan") {
		t.Error("insertion in candidate within budget should match")
	}
	if fuzzyWordMatch("khaan", "khan") {
		t.Error("the reverse direction exhausts the candidate before 75% coverage")
	}
}
