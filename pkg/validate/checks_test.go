package validate

import (
	"testing"

	"github.com/verseprint/backend/pkg/style"
)

const reusedPassage = `the moonlight spills across the silent floor
and every shadow knows your name by heart
i count the hours waiting at the door
the city sleeps but we are worlds apart
the monsoon carries letters never sent
and all my songs are made of your descent`

func TestOriginalityFullReuse(t *testing.T) {
	corpus := splitLines(reusedPassage)
	res := checkOriginality(parseOutput(reusedPassage), corpus)
	if res.Score >= 0.4 {
		t.Errorf("reused passage originality = %v, want < 0.4", res.Score)
	}
	if len(res.FlaggedLines) != 6 {
		t.Errorf("flagged %d lines, want all 6", len(res.FlaggedLines))
	}
}

func TestOriginalityFreshText(t *testing.T) {
	corpus := splitLines(reusedPassage)
	fresh := "completely novel words arranged differently tonight\nnothing borrowed from the older songs remains"
	res := checkOriginality(parseOutput(fresh), corpus)
	if res.Score != 1 {
		t.Errorf("fresh text originality = %v, want 1", res.Score)
	}
	if len(res.FlaggedLines) != 0 {
		t.Errorf("flagged lines = %v, want none", res.FlaggedLines)
	}
}

func TestVocabularyAntiPenalty(t *testing.T) {
	fp := &style.StyleFingerprint{
		Vocabulary: []style.WordCount{
			{Word: "dil"}, {Word: "raat"}, {Word: "baarish"}, {Word: "yaad"},
		},
		AntiVocabulary: []string{"baby"},
	}

	clean := checkVocabulary(parseOutput("dil raat baarish yaad"), fp)
	if clean.Score != 1 {
		t.Errorf("all-vocabulary score = %v, want 1", clean.Score)
	}

	tainted := checkVocabulary(parseOutput("dil raat baby yaad"), fp)
	if tainted.Score >= clean.Score {
		t.Errorf("anti-vocabulary hit must lower the score, got %v", tainted.Score)
	}
	if len(tainted.FlaggedLines) != 1 {
		t.Errorf("flagged = %v, want the anti-vocabulary line", tainted.FlaggedLines)
	}
}

func TestRhymeWindows(t *testing.T) {
	tests := []struct {
		name string
		text string
		min  float64
	}{
		{
			name: "adjacent pairs",
			text: "falling with the rain\ncalling you again\nwhere the rivers go\nwaters running slow",
			min:  0.6,
		},
		{
			name: "alternating pairs",
			text: "burning like a fire\nstars are out tonight\nyou are my desire\nholding you so tight",
			min:  0.9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := checkRhyme(parseOutput(tt.text))
			if res.Score < tt.min {
				t.Errorf("rhyme score = %v, want >= %v", res.Score, tt.min)
			}
		})
	}
}

func TestArcMatch(t *testing.T) {
	out := parseOutput("[Verse]\ncalm quiet morning\n\n[Chorus]\ncalm quiet evening")
	same := checkArc(out, style.ArcSteadyMelancholy)
	if same.Score != 1 {
		t.Errorf("matching arc score = %v, want 1", same.Score)
	}
	far := checkArc(out, style.ArcCrescendoCrash)
	if far.Score >= same.Score {
		t.Errorf("distant arc score = %v, want below %v", far.Score, same.Score)
	}
}

func TestStructureExactMatch(t *testing.T) {
	out := parseOutput("[Verse]\none line here\n\n[Chorus]\nanother line\n\n[Verse]\nlast line now")
	match := checkStructure(out, []style.SectionType{style.SectionVerse, style.SectionChorus, style.SectionVerse})
	if match.Score != 1 {
		t.Errorf("exact match score = %v, want 1", match.Score)
	}
	mismatch := checkStructure(out, []style.SectionType{style.SectionVerse, style.SectionVerse})
	if mismatch.Score != 0 {
		t.Errorf("mismatch score = %v, want 0", mismatch.Score)
	}
}

func TestStructureMismatchForcesFullRetry(t *testing.T) {
	v := NewValidator(DefaultWeights())
	text := "[Verse]\nsoft words tonight\n\n[Verse]\nmore soft words"
	report := v.Score(text, Target{
		Pattern: []style.SectionType{style.SectionVerse, style.SectionChorus, style.SectionVerse},
	})

	for _, c := range report.Checks {
		if c.Name == CheckStructure && c.Score != 0 {
			t.Errorf("structure score = %v, want 0", c.Score)
		}
	}
	if report.Decision != FullRetry {
		t.Errorf("decision = %q, want FULL_RETRY", report.Decision)
	}
}

func splitLines(text string) []string {
	out := parseOutput(text)
	return out.lines
}
