package analysis

import (
	"math"
	"strings"

	"github.com/verseprint/backend/pkg/style"
)

// MoodConfidenceFloor is the keyword-hit confidence under which the caller
// should consult the classify capability instead of trusting the lexicon.
const MoodConfidenceFloor = 0.3

// EstimateMood scores a section against the mood keyword lexicon. The
// confidence grows with keyword hits and saturates at 1; a text without any
// hits returns melancholy at zero confidence, which callers treat as
// "ask the classifier or keep the default".
func EstimateMood(text string) (style.Mood, float64) {
	lower := strings.ToLower(text)
	best, bestHits := "", 0
	for label, words := range moodKeywords {
		hits := 0
		for _, w := range words {
			hits += strings.Count(lower, w)
		}
		if hits > bestHits || (hits == bestHits && hits > 0 && label < best) {
			best, bestHits = label, hits
		}
	}
	if bestHits == 0 {
		return moodVA["melancholy"], 0
	}
	confidence := math.Min(1, float64(bestHits)/3.0)
	return moodVA[best], confidence
}

// MoodByLabel resolves a classifier-returned label against the canonical
// valence/arousal table; unknown labels fall back to melancholy.
func MoodByLabel(label string) style.Mood {
	if m, ok := moodVA[strings.ToLower(strings.TrimSpace(label))]; ok {
		return m
	}
	return moodVA["melancholy"]
}

// Intensity folds a mood into a single magnitude used by arc shaping.
func Intensity(m style.Mood) float64 {
	return math.Abs(m.Valence)*0.5 + m.Arousal*0.5
}

// ClassifyArc labels an intensity sequence with a coarse trajectory shape.
// The checks run from flattest to most dynamic; the first match wins.
func ClassifyArc(intensities []float64) style.ArcShape {
	if len(intensities) < 2 {
		return style.ArcSteadyMelancholy
	}
	min, max := intensities[0], intensities[0]
	maxAt := 0
	for i, v := range intensities {
		if v < min {
			min = v
		}
		if v > max {
			max, maxAt = v, i
		}
	}
	n := len(intensities)
	if max-min < 0.15 {
		return style.ArcSteadyMelancholy
	}
	// Peak in the later part of the document followed by a clear drop.
	if maxAt >= (n*3)/5 && maxAt < n-1 && intensities[n-1] < max-0.2 {
		return style.ArcCrescendoCrash
	}
	nonDecreasing := 0
	signChanges := 0
	prevSign := 0
	for i := 1; i < n; i++ {
		d := intensities[i] - intensities[i-1]
		if d >= 0 {
			nonDecreasing++
		}
		sign := 0
		if d > 0.02 {
			sign = 1
		} else if d < -0.02 {
			sign = -1
		}
		if sign != 0 && prevSign != 0 && sign != prevSign {
			signChanges++
		}
		if sign != 0 {
			prevSign = sign
		}
	}
	if float64(nonDecreasing) >= 0.6*float64(n-1) && intensities[n-1] > intensities[0] {
		return style.ArcGentleRise
	}
	if intensities[n-1] > intensities[0]+0.15 {
		return style.ArcSlowBuild
	}
	if signChanges >= 2 {
		return style.ArcOscillating
	}
	return style.ArcSteadyMelancholy
}

// ArcShapeDistance is the step distance between two shapes on the ordered
// intensity-dynamics scale, used by validation's arc-match scoring.
func ArcShapeDistance(a, b style.ArcShape) int {
	order := []style.ArcShape{
		style.ArcSteadyMelancholy,
		style.ArcGentleRise,
		style.ArcSlowBuild,
		style.ArcOscillating,
		style.ArcCrescendoCrash,
	}
	idx := func(s style.ArcShape) int {
		for i, v := range order {
			if v == s {
				return i
			}
		}
		return 0
	}
	d := idx(a) - idx(b)
	if d < 0 {
		d = -d
	}
	return d
}

// MaxArcDistance is the largest possible ArcShapeDistance.
const MaxArcDistance = 4
