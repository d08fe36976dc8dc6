package ai

import (
	"context"
	"fmt"
	"strings"
)

// MotifExtraction is the structured result of one metaphor batch call.
type MotifExtraction struct {
	Motifs []ExtractedMotif `json:"motifs" jsonschema_description:"Every metaphor or recurring image found in the numbered lines"`
}

type ExtractedMotif struct {
	SourceText   string `json:"source_text" jsonschema_description:"The exact line fragment carrying the metaphor"`
	SourceDomain string `json:"source_domain" jsonschema_description:"The literal image domain, e.g. fire, ocean, moon"`
	TargetDomain string `json:"target_domain" jsonschema_description:"What the image stands for, e.g. love, loss, memory"`
}

// ExtractMotifs asks the classify capability to find metaphors in a small
// batch of lines. Batches stay small to bound cost; callers dedupe results
// on normalized source text so re-runs converge.
func ExtractMotifs(ctx context.Context, client StyleAIClient, lines []string) ([]ExtractedMotif, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	var b strings.Builder
	b.WriteString("Identify metaphors and recurring imagery in these lyric lines. ")
	b.WriteString("Report only images that map one domain onto another.\n\n")
	for i, line := range lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}

	var out MotifExtraction
	err := client.GenerateWithFormat(ctx, "motif_extraction",
		"Metaphors and imagery found in lyric lines", b.String(), &out,
		WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("motif extraction: %w", err)
	}
	return out.Motifs, nil
}

// MoodClassification is the structured result of a mood fallback call.
type MoodClassification struct {
	Label      string  `json:"label" jsonschema_description:"One of: melancholy, longing, nostalgic, romantic, joyful, devotional, rebellious, peaceful"`
	Confidence float64 `json:"confidence" jsonschema_description:"Classifier confidence between 0 and 1"`
}

// ClassifyMood resolves a section's mood when the keyword lexicon stays
// under its confidence floor.
func ClassifyMood(ctx context.Context, client StyleAIClient, text string) (MoodClassification, error) {
	prompt := fmt.Sprintf(
		"Classify the dominant emotional mood of this lyric passage:\n\n%s", text)

	var out MoodClassification
	err := client.GenerateWithFormat(ctx, "mood_classification",
		"Dominant mood of a lyric passage", prompt, &out,
		WithTemperature(0.0))
	if err != nil {
		return MoodClassification{}, fmt.Errorf("mood classification: %w", err)
	}
	return out, nil
}

// ClusterLabel is the structured result of a thematic-cluster labeling call.
type ClusterLabel struct {
	Label    string   `json:"label" jsonschema_description:"A short human-readable name for the group of documents"`
	Keywords []string `json:"keywords" jsonschema_description:"Three to five keywords shared by the documents"`
}

// LabelCluster produces a readable label for a thematic cluster from its
// member titles and shared keywords. Failures never block cluster creation;
// callers keep the keyword-derived default label.
func LabelCluster(ctx context.Context, client StyleAIClient, titles, keywords []string) (ClusterLabel, error) {
	prompt := fmt.Sprintf(
		"These documents form one thematic group.\nTitles: %s\nShared keywords: %s\n\nName the group.",
		strings.Join(titles, "; "), strings.Join(keywords, ", "))

	var out ClusterLabel
	err := client.GenerateWithFormat(ctx, "cluster_label",
		"Label for a thematic document cluster", prompt, &out,
		WithTemperature(0.2))
	if err != nil {
		return ClusterLabel{}, fmt.Errorf("cluster labeling: %w", err)
	}
	return out, nil
}
