package prompt

import (
	"strings"
	"testing"

	"github.com/verseprint/backend/pkg/style"
)

func testBundle() *style.FacetBundle {
	return &style.FacetBundle{
		AuthorID:     "author_1",
		GraphVersion: 2,
		Mode:         style.ModeGraphBacked,
		Topic:        "monsoon nights in the city",
		Fingerprint: &style.StyleFingerprint{
			AuthorID:            "author_1",
			TypeTokenRatio:      0.42,
			AvgLineLength:       6.5,
			CodeSwitchFrequency: 0.3,
			RepetitionIndex:     0.2,
			MetaphorDensity:     1.8,
			Vocabulary:          []style.WordCount{{Word: "baarish", Count: 12}, {Word: "raat", Count: 9}},
			AntiVocabulary:      []string{"baby", "yeah"},
		},
		Phrases: []style.Phrase{
			{Text: "dil ki baat", Frequency: 5, IsSignature: true},
		},
		RhymePairs: []style.RhymePair{
			{WordA: "again", WordB: "rain", Type: style.RhymePerfect, Frequency: 3},
		},
		ArcShapes: []style.ArcShape{style.ArcSlowBuild},
		Passages: []style.ScoredSection{
			{Section: style.Section{Type: style.SectionChorus, Text: "baarish ki raat mein\nshehar jagta hai"}},
			{Section: style.Section{Type: style.SectionVerse, Text: "neon lights reflect\nin puddles of the past"}},
		},
		Motifs: []style.Motif{
			{SourceText: "baarish yaadon ki", SourceDomain: "rain", TargetDomain: "memory", Frequency: 4},
		},
		Cultural: []style.CulturalReference{
			{Text: "yamuna", Category: "place", Frequency: 2},
		},
	}
}

func newTestAssembler(t *testing.T, systemBudget, userBudget int) *Assembler {
	t.Helper()
	a, err := NewAssembler("", systemBudget, userBudget)
	if err != nil {
		t.Fatalf("failed to load encoding: %v", err)
	}
	return a
}

func TestAssembleTwoPartPayload(t *testing.T) {
	a := newTestAssembler(t, 0, 0)

	p := a.Assemble(AssembleInput{
		AuthorName: "Test Poet",
		Bundle:     testBundle(),
		Pattern:    []style.SectionType{style.SectionVerse, style.SectionChorus, style.SectionVerse},
		Moods:      []style.Mood{{Label: "melancholy", Valence: -0.6, Arousal: 0.3}},
	})

	if !strings.Contains(p.SystemBlock, "Test Poet") {
		t.Error("system block missing author identity")
	}
	if !strings.Contains(p.SystemBlock, "Stylistic profile") {
		t.Error("system block missing fingerprint")
	}
	if !strings.Contains(p.SystemBlock, "baby") {
		t.Error("system block missing anti-vocabulary")
	}
	if !strings.Contains(p.UserBlock, "monsoon nights in the city") {
		t.Error("user block missing topic")
	}
	if !strings.Contains(p.UserBlock, "baarish ki raat mein") {
		t.Error("user block missing reference passages")
	}
	if strings.Contains(p.SystemBlock, "baarish ki raat mein") {
		t.Error("reference passages belong in the user block only")
	}
	if a.CountTokens(p.SystemBlock) > SystemBlockBudget {
		t.Error("system block over budget")
	}
	if a.CountTokens(p.UserBlock) > UserBlockBudget {
		t.Error("user block over budget")
	}
	if p.TokenCount <= 0 || p.TokenCount > TotalBudget {
		t.Errorf("token count = %d", p.TokenCount)
	}
	if len(p.Truncated) != 0 {
		t.Errorf("nothing should be truncated at full budget, got %v", p.Truncated)
	}
}

func TestAssembleTruncatesOverflowingFacet(t *testing.T) {
	a := newTestAssembler(t, 0, 80)

	in := AssembleInput{AuthorName: "Test Poet", Bundle: testBundle()}
	p := a.Assemble(in)

	if a.CountTokens(p.UserBlock) > 80 {
		t.Fatalf("user block = %d tokens, budget 80", a.CountTokens(p.UserBlock))
	}
	// The task must survive intact; the overflow lands on passages.
	if !strings.Contains(p.UserBlock, "monsoon nights in the city") {
		t.Error("task dropped instead of truncating a lower-priority facet")
	}
	hasTask := false
	for _, f := range p.FacetsUsed {
		if f == "task" {
			hasTask = true
		}
	}
	if !hasTask {
		t.Errorf("facets used = %v, want task included", p.FacetsUsed)
	}
	for _, f := range p.Truncated {
		if f == "task" {
			t.Error("task must never be the truncated facet while lower tiers exist")
		}
	}
}

func TestAssembleNegativeExamples(t *testing.T) {
	a := newTestAssembler(t, 0, 0)

	p := a.Assemble(AssembleInput{
		Bundle:           testBundle(),
		NegativeExamples: []string{"generic pop lyrics here"},
	})
	if !strings.Contains(p.UserBlock, "rejected attempt 1") {
		t.Error("user block missing negative example framing")
	}
	if !strings.Contains(p.UserBlock, "generic pop lyrics here") {
		t.Error("user block missing rejected attempt text")
	}
}

func TestAssembleRepairTask(t *testing.T) {
	a := newTestAssembler(t, 0, 0)

	p := a.Assemble(AssembleInput{
		Bundle:      testBundle(),
		KeepText:    "line one stays\nline two is weak\nline three stays",
		RepairLines: map[int]string{2: "line two is weak"},
	})
	if !strings.Contains(p.UserBlock, "Rewrite ONLY the flagged lines") {
		t.Error("repair task framing missing")
	}
	if !strings.Contains(p.UserBlock, "line 2: line two is weak") {
		t.Error("flagged line missing from repair task")
	}
}
