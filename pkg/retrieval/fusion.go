package retrieval

import (
	"sort"

	"github.com/verseprint/backend/pkg/style"
)

// rrfK is the reciprocal-rank-fusion constant: fused score sums
// 1/(k + rank) over every ranked list containing the candidate.
const rrfK = 60

// FuseRanked merges ranked candidate lists with reciprocal rank fusion.
// Ranks are 1-based; the input scores are only used for ordering, the
// fused score replaces them. Ties break on section ID so the ordering is
// deterministic.
func FuseRanked(k int, lists ...[]style.ScoredSection) []style.ScoredSection {
	if k <= 0 {
		k = rrfK
	}

	fused := make(map[string]float64)
	sections := make(map[string]style.Section)
	for _, list := range lists {
		for rank, cand := range list {
			fused[cand.Section.ID] += 1.0 / float64(k+rank+1)
			sections[cand.Section.ID] = cand.Section
		}
	}

	out := make([]style.ScoredSection, 0, len(fused))
	for id, score := range fused {
		out = append(out, style.ScoredSection{Section: sections[id], Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Section.ID < out[j].Section.ID
	})
	return out
}
