package analysis

import (
	"sort"
	"time"

	"github.com/verseprint/backend/pkg/style"
)

const (
	vocabularyTop  = 500
	antiVocabLimit = 20
	topRhymeTypes  = 5
	topStructures  = 5
)

// FingerprintInput is the materialized graph slice the builder aggregates.
// Everything here is read-only; the builder is a pure function of it.
type FingerprintInput struct {
	AuthorID     string
	GraphVersion int64
	Lines        []style.Line
	Sections     []style.Section
	Documents    []style.Document
	RhymePairs   []style.RhymePair
	Structures   []style.StructureTemplate
	Motifs       []style.Motif
	SectionMoods []style.Mood
}

// BuildFingerprint computes the fixed-shape per-author profile. It is
// deterministic for a given input graph: every top-k selection breaks ties
// lexicographically.
func BuildFingerprint(in FingerprintInput) style.StyleFingerprint {
	fp := style.StyleFingerprint{
		AuthorID:      in.AuthorID,
		GraphVersion:  in.GraphVersion,
		DocumentCount: len(in.Documents),
		LineCount:     len(in.Lines),
		BuiltAt:       time.Now().UTC(),
	}

	var texts []string
	totalWords := 0
	lineTexts := make(map[string]int)
	switched := 0
	for _, l := range in.Lines {
		texts = append(texts, l.Text)
		lineTexts[NormalizeMotifKey(l.Text)]++
		if l.CodeSwitched {
			switched++
		}
	}
	freq := WordFrequencies(texts)
	for _, n := range freq {
		totalWords += n
	}

	if totalWords > 0 {
		fp.TypeTokenRatio = float64(len(freq)) / float64(totalWords)
		fp.AvgLineLength = float64(totalWords) / float64(len(in.Lines))
		fp.MetaphorDensity = float64(len(in.Motifs)) / (float64(totalWords) / 100)
	}
	if len(in.Lines) > 0 {
		fp.CodeSwitchFrequency = float64(switched) / float64(len(in.Lines))
		repeated := 0
		for _, n := range lineTexts {
			if n > 1 {
				repeated += n - 1
			}
		}
		fp.RepetitionIndex = float64(repeated) / float64(len(in.Lines))
	}
	if len(in.Sections) > 0 {
		fp.AvgSectionLength = float64(len(in.Lines)) / float64(len(in.Sections))
	}

	fp.Vocabulary = topWords(freq, vocabularyTop)
	fp.AntiVocabulary = AntiVocabulary(freq, antiVocabLimit)

	if len(in.SectionMoods) > 0 {
		var v, a float64
		for _, m := range in.SectionMoods {
			v += m.Valence
			a += m.Arousal
		}
		fp.MoodValenceMean = v / float64(len(in.SectionMoods))
		fp.MoodArousalMean = a / float64(len(in.SectionMoods))
	}

	fp.TopRhymeTypes = topRhymes(in.RhymePairs)
	fp.TopStructures = topStructureCounts(in.Structures)
	return fp
}

func topWords(freq map[string]int, limit int) []style.WordCount {
	out := make([]style.WordCount, 0, len(freq))
	for w, n := range freq {
		out = append(out, style.WordCount{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func topRhymes(pairs []style.RhymePair) []style.RhymeTypeCount {
	counts := make(map[style.RhymeType]int)
	for _, p := range pairs {
		counts[p.Type] += p.Frequency
	}
	out := make([]style.RhymeTypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, style.RhymeTypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	if len(out) > topRhymeTypes {
		out = out[:topRhymeTypes]
	}
	return out
}

func topStructureCounts(templates []style.StructureTemplate) []style.StructureCount {
	sorted := make([]style.StructureTemplate, len(templates))
	copy(sorted, templates)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Frequency != sorted[j].Frequency {
			return sorted[i].Frequency > sorted[j].Frequency
		}
		return patternKey(sorted[i].Pattern) < patternKey(sorted[j].Pattern)
	})
	if len(sorted) > topStructures {
		sorted = sorted[:topStructures]
	}
	out := make([]style.StructureCount, len(sorted))
	for i, t := range sorted {
		out[i] = style.StructureCount{Pattern: t.Pattern, Count: t.Frequency}
	}
	return out
}

func patternKey(pattern []style.SectionType) string {
	key := ""
	for _, p := range pattern {
		key += string(p) + "|"
	}
	return key
}
