package analysis

import (
	"testing"

	"github.com/verseprint/backend/pkg/style"
)

func fingerprintInput() FingerprintInput {
	return FingerprintInput{
		AuthorID:     "author-1",
		GraphVersion: 2,
		Documents:    []style.Document{{ID: "d1"}},
		Sections:     []style.Section{{ID: "s1"}, {ID: "s2"}},
		Lines: []style.Line{
			{ID: "l1", Text: "dil mera kho gaya"},
			{ID: "l2", Text: "dil tera kho gaya"},
			{ID: "l3", Text: "dil mera kho gaya"},
			{ID: "l4", Text: "raat भर jaaga", CodeSwitched: true},
		},
		RhymePairs: []style.RhymePair{
			{WordA: "again", WordB: "rain", Type: style.RhymePerfect, Frequency: 3},
			{WordA: "feel", WordB: "sleep", Type: style.RhymeAssonance, Frequency: 1},
		},
		Structures: []style.StructureTemplate{
			{Pattern: []style.SectionType{style.SectionVerse, style.SectionChorus}, Frequency: 4},
			{Pattern: []style.SectionType{style.SectionVerse}, Frequency: 1},
		},
		Motifs:       []style.Motif{{SourceText: "dil mein aag"}},
		SectionMoods: []style.Mood{{Valence: -0.6, Arousal: 0.3}, {Valence: 0.6, Arousal: 0.5}},
	}
}

func TestBuildFingerprint(t *testing.T) {
	fp := BuildFingerprint(fingerprintInput())

	if fp.LineCount != 4 || fp.DocumentCount != 1 {
		t.Fatalf("counts = %d lines / %d docs", fp.LineCount, fp.DocumentCount)
	}
	// 15 tokens, 8 distinct words.
	if got, want := fp.TypeTokenRatio, 8.0/15.0; !closeTo(got, want) {
		t.Errorf("type-token ratio = %v, want %v", got, want)
	}
	// l3 repeats l1 once.
	if got, want := fp.RepetitionIndex, 0.25; !closeTo(got, want) {
		t.Errorf("repetition index = %v, want %v", got, want)
	}
	if got, want := fp.CodeSwitchFrequency, 0.25; !closeTo(got, want) {
		t.Errorf("code-switch frequency = %v, want %v", got, want)
	}
	if got, want := fp.AvgSectionLength, 2.0; !closeTo(got, want) {
		t.Errorf("avg section length = %v, want %v", got, want)
	}
	if got, want := fp.MoodValenceMean, 0.0; !closeTo(got, want) {
		t.Errorf("valence mean = %v, want %v", got, want)
	}
	if len(fp.TopRhymeTypes) == 0 || fp.TopRhymeTypes[0].Type != style.RhymePerfect {
		t.Errorf("top rhyme types = %v, want perfect first", fp.TopRhymeTypes)
	}
	if len(fp.TopStructures) == 0 || fp.TopStructures[0].Count != 4 {
		t.Errorf("top structures = %v, want verse-chorus first", fp.TopStructures)
	}
}

// Rebuilding from an identical graph must yield identical scalars.
func TestBuildFingerprintDeterministic(t *testing.T) {
	a := BuildFingerprint(fingerprintInput())
	b := BuildFingerprint(fingerprintInput())
	a.BuiltAt = b.BuiltAt

	if a.TypeTokenRatio != b.TypeTokenRatio ||
		a.RepetitionIndex != b.RepetitionIndex ||
		a.MetaphorDensity != b.MetaphorDensity ||
		a.MoodValenceMean != b.MoodValenceMean {
		t.Fatal("scalar statistics differ between identical rebuilds")
	}
	if len(a.Vocabulary) != len(b.Vocabulary) {
		t.Fatalf("vocabulary lengths differ: %d vs %d", len(a.Vocabulary), len(b.Vocabulary))
	}
	for i := range a.Vocabulary {
		if a.Vocabulary[i] != b.Vocabulary[i] {
			t.Fatalf("vocabulary order differs at %d: %v vs %v", i, a.Vocabulary[i], b.Vocabulary[i])
		}
	}
}

func closeTo(a, b float64) bool {
	d := a - b
	return d > -1e-9 && d < 1e-9
}
