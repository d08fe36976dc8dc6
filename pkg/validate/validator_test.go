package validate

import "testing"

func synthReport(scores map[string]float64, flagged []int) (Report, []CheckResult) {
	names := []string{CheckOriginality, CheckVocabulary, CheckRhyme, CheckArc, CheckStructure}
	w := DefaultWeights()
	weights := map[string]float64{
		CheckOriginality: w.Originality,
		CheckVocabulary:  w.Vocabulary,
		CheckRhyme:       w.Rhyme,
		CheckArc:         w.Arc,
		CheckStructure:   w.Structure,
	}
	checks := make([]CheckResult, 0, len(names))
	overall := 0.0
	for _, name := range names {
		score, ok := scores[name]
		if !ok {
			score = 1
		}
		checks = append(checks, CheckResult{Name: name, Score: score})
		overall += score * weights[name]
	}
	return Report{Checks: checks, Overall: overall, FlaggedLines: flagged}, checks
}

func TestDecide(t *testing.T) {
	v := NewValidator(DefaultWeights())

	tests := []struct {
		name    string
		scores  map[string]float64
		flagged []int
		want    Decision
	}{
		{
			name:   "all perfect",
			scores: nil,
			want:   Accepted,
		},
		{
			name:   "high overall but one check under the floor",
			scores: map[string]float64{CheckRhyme: 0.2},
			want:   FullRetry,
		},
		{
			name:    "mid score with two flagged lines",
			scores:  map[string]float64{CheckOriginality: 0.4, CheckVocabulary: 0.8},
			flagged: []int{2, 5},
			want:    PartialRetry,
		},
		{
			name:    "mid score but too many flagged lines",
			scores:  map[string]float64{CheckOriginality: 0.4, CheckVocabulary: 0.8},
			flagged: []int{1, 2, 3},
			want:    FullRetry,
		},
		{
			name:   "mid score with nothing to repair",
			scores: map[string]float64{CheckOriginality: 0.4, CheckVocabulary: 0.8},
			want:   FullRetry,
		},
		{
			name:    "structure miss overrides everything",
			scores:  map[string]float64{CheckStructure: 0},
			flagged: []int{3},
			want:    FullRetry,
		},
		{
			name:   "low overall",
			scores: map[string]float64{CheckOriginality: 0.1, CheckVocabulary: 0.4, CheckRhyme: 0.4},
			want:   FullRetry,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report, checks := synthReport(tc.scores, tc.flagged)
			if got := v.decide(report, checks); got != tc.want {
				t.Errorf("decide() = %q, want %q (overall %.3f)", got, tc.want, report.Overall)
			}
		})
	}
}
