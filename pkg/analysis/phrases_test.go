package analysis

import "testing"

func TestExtractPhrases(t *testing.T) {
	lines := []string{
		"chand sitara raat meri",
		"chand sitara raat teri",
		"chand sitara raat kahin",
	}
	phrases := ExtractPhrases(lines)
	var found *PhraseStat
	for i := range phrases {
		if phrases[i].Text == "chand sitara raat" {
			found = &phrases[i]
		}
	}
	if found == nil {
		t.Fatalf("repeated trigram not extracted, got %v", phrases)
	}
	if found.Frequency != 3 {
		t.Errorf("frequency = %d, want 3", found.Frequency)
	}
	if !found.IsSignature {
		t.Errorf("lift = %v, expected signature flag for rare phrase", found.Lift)
	}
}

func TestExtractPhrasesStopwordBoundaries(t *testing.T) {
	lines := []string{"the fire inside", "the fire inside", "the fire inside"}
	for _, p := range ExtractPhrases(lines) {
		if p.Text == "the fire" {
			t.Fatalf("phrase starting on a stopword was kept: %v", p)
		}
	}
}

func TestExtractPhrasesEmpty(t *testing.T) {
	if got := ExtractPhrases(nil); got != nil {
		t.Fatalf("expected nil for empty corpus, got %v", got)
	}
}

func TestAntiVocabulary(t *testing.T) {
	anti := AntiVocabulary(map[string]int{"dil": 5, "pyaar": 3}, 5)
	if len(anti) != 5 {
		t.Fatalf("got %d words, want 5", len(anti))
	}
	if anti[0] != "love" {
		t.Errorf("highest-rate absent word = %q, want love", anti[0])
	}
	for _, w := range anti {
		if w == "dil" || w == "pyaar" {
			t.Errorf("word %q is in the author vocabulary, must not be anti", w)
		}
	}
}
