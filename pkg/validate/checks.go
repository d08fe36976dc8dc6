// Package validate scores generation attempts against the retrieved
// facets and drives the accept / partial-repair / full-retry loop.
package validate

import (
	"strings"

	"github.com/verseprint/backend/pkg/analysis"
	"github.com/verseprint/backend/pkg/style"
)

// Check names, stable across reports.
const (
	CheckOriginality = "originality"
	CheckVocabulary  = "vocabulary"
	CheckRhyme       = "rhyme"
	CheckArc         = "arc"
	CheckStructure   = "structure"
)

// lineOverlapCeiling flags output lines whose 4-gram overlap with the
// corpus exceeds this fraction.
const lineOverlapCeiling = 0.6

// antiVocabPenalty is subtracted from the vocabulary score per
// anti-vocabulary word present in the output.
const antiVocabPenalty = 0.1

// CheckResult is one scored check. FlaggedLines are 1-based indices into
// the output's lyric lines (headers excluded).
type CheckResult struct {
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	FlaggedLines []int   `json:"flaggedLines,omitempty"`
}

// parsedOutput is one generation attempt decomposed the same way ingestion
// decomposes corpus documents.
type parsedOutput struct {
	sections []analysis.RawSection
	lines    []string
	pattern  []style.SectionType
}

func parseOutput(text string) parsedOutput {
	sections := analysis.Decompose(text)
	out := parsedOutput{
		sections: sections,
		pattern:  analysis.SectionPattern(sections),
	}
	for _, sec := range sections {
		for _, l := range sec.Lines {
			out.lines = append(out.lines, l.Text)
		}
	}
	return out
}

// checkOriginality scores 1 minus the fraction of output 4-grams that
// appear verbatim in any corpus line. Lines over the overlap ceiling are
// flagged for repair.
func checkOriginality(out parsedOutput, corpusLines []string) CheckResult {
	res := CheckResult{Name: CheckOriginality, Score: 1}

	corpusGrams := make(map[string]bool)
	for _, line := range corpusLines {
		for _, g := range lineGrams(line) {
			corpusGrams[g] = true
		}
	}

	totalGrams, overlapGrams := 0, 0
	for i, line := range out.lines {
		grams := lineGrams(line)
		if len(grams) == 0 {
			continue
		}
		overlap := 0
		for _, g := range grams {
			if corpusGrams[g] {
				overlap++
			}
		}
		totalGrams += len(grams)
		overlapGrams += overlap
		if float64(overlap)/float64(len(grams)) > lineOverlapCeiling {
			res.FlaggedLines = append(res.FlaggedLines, i+1)
		}
	}

	if totalGrams > 0 {
		res.Score = 1 - float64(overlapGrams)/float64(totalGrams)
	}
	return res
}

func lineGrams(line string) []string {
	words := analysis.Tokenize(line)
	if len(words) < 4 {
		return nil
	}
	grams := make([]string, 0, len(words)-3)
	for i := 0; i+4 <= len(words); i++ {
		grams = append(grams, strings.Join(words[i:i+4], " "))
	}
	return grams
}

// checkVocabulary scores the fraction of output words found in the
// author's vocabulary, penalized per anti-vocabulary word. Without a
// fingerprint the check is neutral.
func checkVocabulary(out parsedOutput, fp *style.StyleFingerprint) CheckResult {
	res := CheckResult{Name: CheckVocabulary, Score: 1}
	if fp == nil || len(fp.Vocabulary) == 0 {
		return res
	}

	vocab := make(map[string]bool, len(fp.Vocabulary))
	for _, wc := range fp.Vocabulary {
		vocab[wc.Word] = true
	}
	anti := make(map[string]bool, len(fp.AntiVocabulary))
	for _, w := range fp.AntiVocabulary {
		anti[w] = true
	}

	total, known, antiHits := 0, 0, 0
	for i, line := range out.lines {
		flagged := false
		for _, w := range analysis.Tokenize(line) {
			total++
			if vocab[w] {
				known++
			}
			if anti[w] {
				antiHits++
				flagged = true
			}
		}
		if flagged {
			res.FlaggedLines = append(res.FlaggedLines, i+1)
		}
	}
	if total == 0 {
		return res
	}

	score := float64(known)/float64(total) - antiVocabPenalty*float64(antiHits)
	if score < 0 {
		score = 0
	}
	res.Score = score
	return res
}

// checkRhyme scores, per section, the satisfied fraction of adjacent or
// alternating end-word positions, taking the better of the two windows so
// AABB and ABAB schemes both score cleanly. Sections with fewer than two
// lines are skipped; no scorable section leaves the check neutral.
func checkRhyme(out parsedOutput) CheckResult {
	res := CheckResult{Name: CheckRhyme, Score: 1}

	scored := 0
	total := 0.0
	for _, sec := range out.sections {
		if len(sec.Lines) < 2 {
			continue
		}
		endWords := make([]string, len(sec.Lines))
		for i, l := range sec.Lines {
			endWords[i] = l.EndWord
		}

		adjacentHits, alternatingHits := 0, 0
		for _, obs := range analysis.ScanSection(endWords) {
			switch obs.Gap {
			case 1:
				adjacentHits++
			case 2:
				alternatingHits++
			}
		}
		adjacent := float64(adjacentHits) / float64(len(endWords)-1)
		alternating := 0.0
		if len(endWords) > 2 {
			alternating = float64(alternatingHits) / float64(len(endWords)-2)
		}
		total += max(adjacent, alternating)
		scored++
	}
	if scored > 0 {
		res.Score = total / float64(scored)
	}
	return res
}

// checkArc classifies the output's emotional arc with the ingestion mood
// pipeline and scores by arc-shape distance to the target.
func checkArc(out parsedOutput, target style.ArcShape) CheckResult {
	res := CheckResult{Name: CheckArc, Score: 1}
	if target == "" || len(out.sections) == 0 {
		return res
	}

	intensities := make([]float64, len(out.sections))
	for i, sec := range out.sections {
		var texts []string
		for _, l := range sec.Lines {
			texts = append(texts, l.Text)
		}
		mood, _ := analysis.EstimateMood(strings.Join(texts, "\n"))
		intensities[i] = analysis.Intensity(mood)
	}

	detected := analysis.ClassifyArc(intensities)
	dist := analysis.ArcShapeDistance(detected, target)
	res.Score = 1 - float64(dist)/float64(analysis.MaxArcDistance)
	return res
}

// checkStructure is binary: the output's section-type sequence either
// matches the requested template exactly or scores zero.
func checkStructure(out parsedOutput, requested []style.SectionType) CheckResult {
	res := CheckResult{Name: CheckStructure, Score: 1}
	if len(requested) == 0 {
		return res
	}
	if len(out.pattern) != len(requested) {
		res.Score = 0
		return res
	}
	for i, t := range requested {
		if out.pattern[i] != t {
			res.Score = 0
			return res
		}
	}
	return res
}
