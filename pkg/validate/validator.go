package validate

import (
	"sort"

	"github.com/verseprint/backend/pkg/style"
)

// Decision is the state-machine outcome for one scored attempt.
type Decision string

const (
	Accepted     Decision = "ACCEPTED"
	PartialRetry Decision = "PARTIAL_RETRY"
	FullRetry    Decision = "FULL_RETRY"
)

// Weights configures the per-check contribution to the overall score.
type Weights struct {
	Originality float64
	Vocabulary  float64
	Rhyme       float64
	Arc         float64
	Structure   float64

	// AcceptScore and PartialScore are the overall-score thresholds;
	// CriticalFloor blocks acceptance when any single check drops under it.
	AcceptScore   float64
	PartialScore  float64
	CriticalFloor float64
	// MaxFlaggedLines bounds how many flagged lines a partial repair may
	// carry.
	MaxFlaggedLines int
}

// DefaultWeights returns the standard configuration.
func DefaultWeights() Weights {
	return Weights{
		Originality:     0.30,
		Vocabulary:      0.25,
		Rhyme:           0.15,
		Arc:             0.15,
		Structure:       0.15,
		AcceptScore:     0.8,
		PartialScore:    0.6,
		CriticalFloor:   0.3,
		MaxFlaggedLines: 2,
	}
}

// Report is the scored outcome of one attempt.
type Report struct {
	Checks   []CheckResult `json:"checks"`
	Overall  float64       `json:"overall"`
	Decision Decision      `json:"decision"`
	// FlaggedLines is the union of per-check flagged lines, 1-based.
	FlaggedLines []int `json:"flaggedLines,omitempty"`
}

// Target is what the attempt is scored against.
type Target struct {
	CorpusLines []string
	Fingerprint *style.StyleFingerprint
	Pattern     []style.SectionType
	ArcShape    style.ArcShape
}

// Validator scores attempts. Stateless; safe for concurrent use.
type Validator struct {
	weights Weights
}

func NewValidator(weights Weights) *Validator {
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Validator{weights: weights}
}

// Score runs the five checks over one generated text and decides the state
// transition.
func (v *Validator) Score(text string, target Target) Report {
	out := parseOutput(text)
	w := v.weights

	checks := []CheckResult{
		checkOriginality(out, target.CorpusLines),
		checkVocabulary(out, target.Fingerprint),
		checkRhyme(out),
		checkArc(out, target.ArcShape),
		checkStructure(out, target.Pattern),
	}

	overall := checks[0].Score*w.Originality +
		checks[1].Score*w.Vocabulary +
		checks[2].Score*w.Rhyme +
		checks[3].Score*w.Arc +
		checks[4].Score*w.Structure

	report := Report{
		Checks:       checks,
		Overall:      overall,
		FlaggedLines: unionFlagged(checks),
	}
	report.Decision = v.decide(report, checks)
	return report
}

func (v *Validator) decide(report Report, checks []CheckResult) Decision {
	w := v.weights

	// A structure mismatch cannot be repaired line by line.
	structureFailed := false
	minScore := 1.0
	for _, c := range checks {
		if c.Name == CheckStructure && c.Score == 0 {
			structureFailed = true
		}
		if c.Score < minScore {
			minScore = c.Score
		}
	}
	if structureFailed {
		return FullRetry
	}

	if report.Overall >= w.AcceptScore && minScore >= w.CriticalFloor {
		return Accepted
	}
	if report.Overall >= w.PartialScore &&
		len(report.FlaggedLines) > 0 && len(report.FlaggedLines) <= w.MaxFlaggedLines {
		return PartialRetry
	}
	return FullRetry
}

func unionFlagged(checks []CheckResult) []int {
	seen := make(map[int]bool)
	for _, c := range checks {
		for _, n := range c.FlaggedLines {
			seen[n] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
