package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/verseprint/backend/internal/util"
	"github.com/verseprint/backend/pkg/ai"
	"github.com/verseprint/backend/pkg/analysis"
	"github.com/verseprint/backend/pkg/store"
	"github.com/verseprint/backend/pkg/style"
)

// buildDerived computes the complete derived layer from the analyzed
// documents. Everything is recomputed from scratch; nothing from a previous
// run survives into the result.
func (p *Pipeline) buildDerived(ctx context.Context, authorID string, results []*docResult) (store.DerivedGraph, []string) {
	var warnings []string
	derived := store.DerivedGraph{}

	var lineTexts []string
	for _, r := range results {
		for _, l := range r.lines {
			lineTexts = append(lineTexts, l.Text)
		}
	}

	for _, stat := range analysis.ExtractPhrases(lineTexts) {
		derived.Phrases = append(derived.Phrases, style.Phrase{
			ID:          util.NewID("phr"),
			AuthorID:    authorID,
			Text:        stat.Text,
			Frequency:   stat.Frequency,
			IsSignature: stat.IsSignature,
			Lift:        stat.Lift,
		})
	}

	derived.RhymePairs = collectRhymePairs(authorID, results)
	derived.Cultural = collectCultural(authorID, lineTexts)
	derived.Themes = collectThemes(authorID, lineTexts)
	derived.Meters = collectMeters(authorID, results)
	derived.Structures = collectStructures(authorID, results)

	motifs, motifWarnings := p.collectMotifs(ctx, authorID, lineTexts)
	derived.Motifs = motifs
	warnings = append(warnings, motifWarnings...)

	for _, r := range results {
		derived.Arcs = append(derived.Arcs, r.arc)
	}

	clusters, clusterWarnings := p.collectClusters(ctx, authorID, results, derived.Phrases)
	derived.Clusters = clusters
	warnings = append(warnings, clusterWarnings...)

	return derived, warnings
}

func collectRhymePairs(authorID string, results []*docResult) []style.RhymePair {
	type pairKey struct {
		a, b string
		t    style.RhymeType
	}
	counts := make(map[pairKey]int)
	for _, r := range results {
		for _, sec := range r.raw {
			endWords := make([]string, len(sec.Lines))
			for i, l := range sec.Lines {
				endWords[i] = l.EndWord
			}
			for _, obs := range analysis.ScanSection(endWords) {
				counts[pairKey{obs.WordA, obs.WordB, obs.Type}]++
			}
		}
	}

	keys := make([]pairKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		if keys[i].b != keys[j].b {
			return keys[i].b < keys[j].b
		}
		return keys[i].t < keys[j].t
	})

	out := make([]style.RhymePair, 0, len(keys))
	for _, k := range keys {
		out = append(out, style.RhymePair{
			ID:        util.NewID("rhy"),
			AuthorID:  authorID,
			WordA:     k.a,
			WordB:     k.b,
			Type:      k.t,
			Frequency: counts[k],
		})
	}
	return out
}

func collectCultural(authorID string, lineTexts []string) []style.CulturalReference {
	var out []style.CulturalReference
	for _, hit := range analysis.SpotReferences(lineTexts) {
		out = append(out, style.CulturalReference{
			ID:        util.NewID("ref"),
			AuthorID:  authorID,
			Text:      hit.Text,
			Category:  hit.Category,
			Frequency: hit.Frequency,
		})
	}
	return out
}

func collectThemes(authorID string, lineTexts []string) []style.Theme {
	var out []style.Theme
	for _, score := range analysis.ScoreThemes(strings.Join(lineTexts, "\n")) {
		out = append(out, style.Theme{
			ID:        util.NewID("thm"),
			AuthorID:  authorID,
			Name:      score.Name,
			Strength:  score.Strength,
			Frequency: score.Frequency,
		})
	}
	return out
}

func collectMeters(authorID string, results []*docResult) []style.MeterPattern {
	counts := make(map[string][]int)
	freq := make(map[string]int)
	for _, r := range results {
		for _, sec := range r.raw {
			meter := analysis.MeterOf(sec)
			if len(meter) == 0 {
				continue
			}
			key := meterKey(meter)
			counts[key] = meter
			freq[key]++
		}
	}

	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]style.MeterPattern, 0, len(keys))
	for _, k := range keys {
		out = append(out, style.MeterPattern{
			ID:        util.NewID("mtr"),
			AuthorID:  authorID,
			Syllables: counts[k],
			Frequency: freq[k],
		})
	}
	return out
}

func meterKey(syllables []int) string {
	parts := make([]string, len(syllables))
	for i, s := range syllables {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, "-")
}

func collectStructures(authorID string, results []*docResult) []style.StructureTemplate {
	type structAgg struct {
		pattern    []style.SectionType
		frequency  int
		lineTotals []int
	}
	aggs := make(map[string]*structAgg)
	for _, r := range results {
		pattern := analysis.SectionPattern(r.raw)
		key := structureKey(pattern)
		agg, ok := aggs[key]
		if !ok {
			agg = &structAgg{pattern: pattern, lineTotals: make([]int, len(pattern))}
			aggs[key] = agg
		}
		agg.frequency++
		for i, sec := range r.raw {
			agg.lineTotals[i] += len(sec.Lines)
		}
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]style.StructureTemplate, 0, len(keys))
	for _, k := range keys {
		agg := aggs[k]
		avg := make([]float64, len(agg.lineTotals))
		for i, total := range agg.lineTotals {
			avg[i] = float64(total) / float64(agg.frequency)
		}
		out = append(out, style.StructureTemplate{
			ID:            util.NewID("struct"),
			AuthorID:      authorID,
			Pattern:       agg.pattern,
			Frequency:     agg.frequency,
			AvgLineCounts: avg,
		})
	}
	return out
}

func structureKey(pattern []style.SectionType) string {
	parts := make([]string, len(pattern))
	for i, t := range pattern {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// collectMotifs runs the classifier over line batches and falls back to the
// keyword pattern table per failed batch. Hits dedupe on normalized source
// text so the two extraction paths converge.
func (p *Pipeline) collectMotifs(ctx context.Context, authorID string, lineTexts []string) ([]style.Motif, []string) {
	var warnings []string
	counts := make(map[string]*style.Motif)

	record := func(sourceText, sourceDomain, targetDomain string) {
		key := analysis.NormalizeMotifKey(sourceText)
		if key == "" {
			return
		}
		if m, ok := counts[key]; ok {
			m.Frequency++
			return
		}
		counts[key] = &style.Motif{
			ID:           util.NewID("mot"),
			AuthorID:     authorID,
			SourceText:   strings.TrimSpace(sourceText),
			SourceDomain: sourceDomain,
			TargetDomain: targetDomain,
			Frequency:    1,
		}
	}

	for start := 0; start < len(lineTexts); start += p.motifBatchSize {
		end := min(start+p.motifBatchSize, len(lineTexts))
		batch := lineTexts[start:end]

		if p.aiClient != nil {
			extracted, err := util.RetryWithContext(ctx, p.maxRetries, func(ctx context.Context) ([]ai.ExtractedMotif, error) {
				return ai.ExtractMotifs(ctx, p.aiClient, batch)
			})
			if err == nil {
				for _, m := range extracted {
					record(m.SourceText, m.SourceDomain, m.TargetDomain)
				}
				continue
			}
			warnings = append(warnings, fmt.Sprintf("motif extraction failed for lines %d-%d, using keyword fallback: %v", start+1, end, err))
		}

		for _, hit := range analysis.FallbackMotifs(batch) {
			record(hit.SourceText, hit.SourceDomain, hit.TargetDomain)
		}
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]style.Motif, 0, len(keys))
	for _, k := range keys {
		out = append(out, *counts[k])
	}
	return out, warnings
}

// collectClusters runs community detection over the documents and labels
// the resulting clusters. Labeling failures keep the keyword default.
func (p *Pipeline) collectClusters(ctx context.Context, authorID string, results []*docResult, phrases []style.Phrase) ([]style.ThematicCluster, []string) {
	var warnings []string

	var signature []string
	for _, ph := range phrases {
		if ph.IsSignature {
			signature = append(signature, ph.Text)
		}
	}

	titles := make(map[string]string, len(results))
	nodes := make([]analysis.DocumentNode, 0, len(results))
	for _, r := range results {
		titles[r.doc.ID] = r.doc.Title
		var docText strings.Builder
		for _, l := range r.lines {
			docText.WriteString(l.Text)
			docText.WriteString("\n")
		}
		lower := strings.ToLower(docText.String())

		node := analysis.DocumentNode{ID: r.doc.ID}
		for _, score := range analysis.ScoreThemes(docText.String()) {
			node.Themes = append(node.Themes, score.Name)
		}
		for _, ph := range signature {
			if strings.Contains(lower, ph) {
				node.Phrases = append(node.Phrases, ph)
			}
		}
		for _, rec := range r.embeds {
			if rec.OwnerID == r.doc.ID {
				node.Embedding = rec.Vector
				break
			}
		}
		node.TopKeywords = topDocKeywords(docText.String(), 5)
		nodes = append(nodes, node)
	}

	clusters := analysis.DetectCommunities(nodes, analysis.ClusterConfig{})
	for i := range clusters {
		clusters[i].ID = util.NewID("cls")
		clusters[i].AuthorID = authorID

		if p.aiClient == nil {
			continue
		}
		memberTitles := make([]string, 0, len(clusters[i].DocumentIDs))
		for _, docID := range clusters[i].DocumentIDs {
			memberTitles = append(memberTitles, titles[docID])
		}
		labeled, err := ai.LabelCluster(ctx, p.aiClient, memberTitles, clusters[i].Keywords)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("cluster labeling failed for %q: %v", clusters[i].Label, err))
			continue
		}
		if labeled.Label != "" {
			clusters[i].Label = labeled.Label
		}
		if len(labeled.Keywords) > 0 {
			clusters[i].Keywords = labeled.Keywords
		}
	}
	return clusters, warnings
}

func topDocKeywords(text string, limit int) []string {
	freq := analysis.WordFrequencies([]string{text})
	type kw struct {
		word string
		n    int
	}
	ranked := make([]kw, 0, len(freq))
	for w, n := range freq {
		if len([]rune(w)) < 4 {
			continue
		}
		ranked = append(ranked, kw{w, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].word < ranked[j].word
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, k := range ranked {
		out[i] = k.word
	}
	return out
}

// buildFingerprint aggregates the corpus and derived slices into the
// per-author profile.
func (p *Pipeline) buildFingerprint(authorID string, graphVersion int64, results []*docResult, derived store.DerivedGraph) style.StyleFingerprint {
	in := analysis.FingerprintInput{
		AuthorID:     authorID,
		GraphVersion: graphVersion,
		RhymePairs:   derived.RhymePairs,
		Structures:   derived.Structures,
		Motifs:       derived.Motifs,
	}
	for _, r := range results {
		in.Documents = append(in.Documents, r.doc)
		in.Sections = append(in.Sections, r.sections...)
		in.Lines = append(in.Lines, r.lines...)
		in.SectionMoods = append(in.SectionMoods, r.moods...)
	}
	return analysis.BuildFingerprint(in)
}
