package analysis

import (
	"testing"

	"github.com/verseprint/backend/pkg/style"
)

func TestEstimateMood(t *testing.T) {
	mood, confidence := EstimateMood("pyaar mohabbat aur dil ki baat")
	if mood.Label != "romantic" {
		t.Fatalf("label = %q, want romantic", mood.Label)
	}
	if confidence < MoodConfidenceFloor {
		t.Errorf("confidence %v below floor for three keyword hits", confidence)
	}

	_, confidence = EstimateMood("quarterly revenue projections")
	if confidence != 0 {
		t.Errorf("confidence = %v for text without mood keywords, want 0", confidence)
	}
}

func TestClassifyArc(t *testing.T) {
	tests := []struct {
		name        string
		intensities []float64
		want        style.ArcShape
	}{
		{"flat sequence", []float64{0.3, 0.32, 0.31}, style.ArcSteadyMelancholy},
		{"monotonic rise", []float64{0.2, 0.3, 0.4, 0.5}, style.ArcGentleRise},
		{"late peak then drop", []float64{0.3, 0.4, 0.8, 0.35}, style.ArcCrescendoCrash},
		{"zigzag", []float64{0.6, 0.2, 0.65, 0.25, 0.6}, style.ArcOscillating},
		{"uneven climb", []float64{0.2, 0.18, 0.25, 0.22, 0.4}, style.ArcSlowBuild},
		{"single point", []float64{0.5}, style.ArcSteadyMelancholy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyArc(tt.intensities); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArcShapeDistance(t *testing.T) {
	if d := ArcShapeDistance(style.ArcSteadyMelancholy, style.ArcCrescendoCrash); d != MaxArcDistance {
		t.Errorf("got %d, want %d", d, MaxArcDistance)
	}
	if d := ArcShapeDistance(style.ArcGentleRise, style.ArcGentleRise); d != 0 {
		t.Errorf("identical shapes distance = %d, want 0", d)
	}
}
