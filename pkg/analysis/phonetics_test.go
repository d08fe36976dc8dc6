package analysis

import (
	"testing"

	"github.com/verseprint/backend/pkg/style"
)

func TestClassifyRhyme(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want style.RhymeType
		ok   bool
	}{
		{"perfect adjacent suffix", "rain", "again", style.RhymePerfect, true},
		{"perfect three letter suffix", "tonight", "light", style.RhymePerfect, true},
		{"slant two letter suffix", "heart", "hurt", style.RhymeSlant, true},
		{"assonance shared final vowel", "feel", "sleep", style.RhymeAssonance, true},
		{"cross language romanized suffix", "drama", "सनम", style.RhymeCrossLanguage, true},
		{"same word never rhymes", "rain", "rain", "", false},
		{"no relation", "rain", "stone", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyRhyme(tt.a, tt.b)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("type = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanSection(t *testing.T) {
	pairs := ScanSection([]string{"rain", "again", "stone", "alone"})
	found := false
	for _, p := range pairs {
		if p.WordA == "again" && p.WordB == "rain" && p.Type == style.RhymePerfect && p.Gap == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("adjacent perfect pair (again, rain) not found in %v", pairs)
	}
}

func TestDetectScheme(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  string
	}{
		{"aabb", []string{"rain", "again", "go", "slow"}, "AABB"},
		{"abab", []string{"fire", "tonight", "desire", "light"}, "ABAB"},
		{"non quatrain is free", []string{"rain", "again"}, "FREE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectScheme(tt.words); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRomanize(t *testing.T) {
	if got := Romanize("Dil"); got != "dil" {
		t.Errorf("latin passthrough = %q, want dil", got)
	}
	if got := Romanize("रात"); got == "" {
		t.Error("devanagari word romanized to empty string")
	}
}
