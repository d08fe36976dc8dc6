package retrieval

import (
	"testing"

	"github.com/verseprint/backend/pkg/style"
)

func scored(ids ...string) []style.ScoredSection {
	out := make([]style.ScoredSection, len(ids))
	for i, id := range ids {
		out[i] = style.ScoredSection{Section: style.Section{ID: id}}
	}
	return out
}

func TestFuseRankedFirstInBothListsWins(t *testing.T) {
	lexical := scored("a", "b", "c")
	semantic := scored("a", "c", "b")

	fused := FuseRanked(60, lexical, semantic)
	if len(fused) != 3 {
		t.Fatalf("fused %d candidates, want 3", len(fused))
	}
	if fused[0].Section.ID != "a" {
		t.Errorf("top candidate = %q, want a", fused[0].Section.ID)
	}
	for _, cand := range fused[1:] {
		if cand.Score >= fused[0].Score {
			t.Errorf("candidate %q score %v not below top %v", cand.Section.ID, cand.Score, fused[0].Score)
		}
	}
}

func TestFuseRankedScores(t *testing.T) {
	fused := FuseRanked(60, scored("a", "b"), scored("b"))

	// a: 1/61 from one list; b: 1/62 + 1/61 from both.
	if fused[0].Section.ID != "b" {
		t.Fatalf("top = %q, want b", fused[0].Section.ID)
	}
	want := 1.0/61 + 1.0/62
	if diff := fused[0].Score - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("score = %v, want %v", fused[0].Score, want)
	}
}

func TestFuseRankedTieBreaksOnID(t *testing.T) {
	fused := FuseRanked(60, scored("b"), scored("a"))
	if fused[0].Section.ID != "a" || fused[1].Section.ID != "b" {
		t.Errorf("tie order = [%s %s], want [a b]", fused[0].Section.ID, fused[1].Section.ID)
	}
}

func TestFuseRankedEmpty(t *testing.T) {
	if fused := FuseRanked(60); len(fused) != 0 {
		t.Errorf("fused %d candidates from no lists", len(fused))
	}
}
