package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/verseprint/backend/internal/util"
	"github.com/verseprint/backend/pkg/ai"
	"github.com/verseprint/backend/pkg/analysis"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/store"
	"github.com/verseprint/backend/pkg/style"

	"golang.org/x/sync/errgroup"
)

// DocumentInput is one raw lyric document handed to an ingestion run.
type DocumentInput struct {
	Title        string
	CollectionID string
	Text         string
}

// docResult carries one document's tree and per-document analysis through
// the corpus-wide aggregation stage.
type docResult struct {
	doc      style.Document
	raw      []analysis.RawSection
	sections []style.Section
	lines    []style.Line
	moods    []style.Mood
	arc      style.EmotionalArc
	embeds   []style.EmbeddingRecord
}

// Ingest rebuilds the author's graph partition from the given documents.
// The previous corpus and derived layer are replaced wholesale; analyzer
// failures degrade into report warnings instead of aborting the run.
func (p *Pipeline) Ingest(ctx context.Context, authorID, authorName string, docs []DocumentInput) (*style.IngestionReport, error) {
	started := time.Now()

	report := &style.IngestionReport{
		AuthorID:   authorID,
		NodeCounts: make(map[string]int),
	}

	err := p.store.UpsertAuthor(ctx, style.Author{
		ID:        authorID,
		Name:      authorName,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert author: %w", err)
	}

	if err := p.store.DeleteAuthorDocuments(ctx, authorID); err != nil {
		return nil, fmt.Errorf("failed to clear previous corpus: %w", err)
	}

	logger.Info("[Ingest] Processing", "author_id", authorID, "total_docs", len(docs))

	results := make([]*docResult, 0, len(docs))
	for _, in := range docs {
		raw := analysis.Decompose(in.Text)
		if len(raw) == 0 {
			report.SkippedDocs = append(report.SkippedDocs, in.Title)
			continue
		}
		res := buildTree(authorID, in, raw)
		if err := p.store.SaveDocumentTree(ctx, store.DocumentTree{
			Document: res.doc,
			Sections: res.sections,
			Lines:    res.lines,
		}); err != nil {
			return nil, fmt.Errorf("failed to save document tree %q: %w", in.Title, err)
		}
		results = append(results, res)
	}

	if len(results) == 0 {
		report.Duration = time.Since(started)
		return report, nil
	}

	mu := sync.Mutex{}
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		logger.Warn("[Ingest] " + msg)
		mu.Lock()
		report.Warnings = append(report.Warnings, msg)
		mu.Unlock()
	}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.parallelDocs)
	for _, res := range results {
		r := res
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
				p.analyzeDocument(gCtx, r, warn)
				return nil
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to analyze documents: %w", err)
	}

	derived, motifWarnings := p.buildDerived(ctx, authorID, results)
	for _, w := range motifWarnings {
		warn("%s", w)
	}

	var embeds []style.EmbeddingRecord
	for _, r := range results {
		embeds = append(embeds, r.embeds...)
	}
	if len(embeds) > 0 {
		if err := p.store.UpsertEmbeddings(ctx, embeds); err != nil {
			return nil, fmt.Errorf("failed to save embeddings: %w", err)
		}
	}

	if err := p.store.ReplaceDerived(ctx, authorID, derived); err != nil {
		return nil, fmt.Errorf("failed to replace derived layer: %w", err)
	}

	version, err := p.store.BumpGraphVersion(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to bump graph version: %w", err)
	}

	fp := p.buildFingerprint(authorID, version, results, derived)
	if err := p.store.SaveFingerprint(ctx, fp); err != nil {
		return nil, fmt.Errorf("failed to save fingerprint: %w", err)
	}

	report.GraphVersion = version
	fillNodeCounts(report, results, derived)
	report.Duration = time.Since(started)

	logger.Info("[Ingest] Completed",
		"author_id", authorID,
		"graph_version", version,
		"documents", len(results),
		"skipped", len(report.SkippedDocs),
		"warnings", len(report.Warnings),
	)

	return report, nil
}

// buildTree assigns graph IDs to one decomposed document.
func buildTree(authorID string, in DocumentInput, raw []analysis.RawSection) *docResult {
	doc := style.Document{
		ID:           util.NewID("doc"),
		AuthorID:     authorID,
		CollectionID: in.CollectionID,
		Title:        in.Title,
		Language:     analysis.DetectLanguage(in.Text),
		RawText:      in.Text,
	}

	res := &docResult{doc: doc, raw: raw}
	for pos, rs := range raw {
		sec := style.Section{
			ID:         util.NewID("sec"),
			AuthorID:   authorID,
			DocumentID: doc.ID,
			Type:       rs.Type,
			Position:   pos,
		}
		for linePos, rl := range rs.Lines {
			if sec.Text != "" {
				sec.Text += "\n"
			}
			sec.Text += rl.Text
			res.lines = append(res.lines, style.Line{
				ID:            util.NewID("line"),
				AuthorID:      authorID,
				SectionID:     sec.ID,
				Position:      linePos,
				Text:          rl.Text,
				EndWord:       rl.EndWord,
				SyllableCount: rl.SyllableCount,
				CodeSwitched:  rl.CodeSwitched,
			})
		}
		res.sections = append(res.sections, sec)
	}
	return res
}

// analyzeDocument resolves the per-section moods, the emotional arc and the
// document's embeddings. Every failure degrades to a warning.
func (p *Pipeline) analyzeDocument(ctx context.Context, r *docResult, warn func(string, ...any)) {
	r.moods = make([]style.Mood, len(r.sections))
	intensities := make([]float64, len(r.sections))
	points := make([]style.ArcPoint, len(r.sections))

	for i, sec := range r.sections {
		mood, confidence := analysis.EstimateMood(sec.Text)
		if confidence < analysis.MoodConfidenceFloor && p.aiClient != nil {
			classified, err := ai.ClassifyMood(ctx, p.aiClient, sec.Text)
			if err != nil {
				warn("mood fallback failed for document %q section %d: %v", r.doc.Title, sec.Position, err)
			} else if classified.Label != "" {
				mood = analysis.MoodByLabel(classified.Label)
			}
		}
		r.moods[i] = mood
		intensities[i] = analysis.Intensity(mood)
		points[i] = style.ArcPoint{
			SectionID: sec.ID,
			Mood:      mood,
			Intensity: intensities[i],
		}
	}

	r.arc = style.EmotionalArc{
		ID:         util.NewID("arc"),
		AuthorID:   r.doc.AuthorID,
		DocumentID: r.doc.ID,
		Shape:      analysis.ClassifyArc(intensities),
		Points:     points,
	}

	if p.aiClient == nil {
		return
	}

	inputs := make([]string, 0, len(r.sections)+1)
	for _, sec := range r.sections {
		inputs = append(inputs, sec.Text)
	}
	inputs = append(inputs, r.doc.RawText)

	vectors, err := util.RetryWithContext(ctx, p.maxRetries, func(ctx context.Context) ([][]float32, error) {
		return p.aiClient.EmbedBatch(ctx, inputs)
	})
	if err != nil {
		warn("embedding failed for document %q: %v", r.doc.Title, err)
		return
	}
	if len(vectors) != len(inputs) {
		warn("embedding count mismatch for document %q: got %d, want %d", r.doc.Title, len(vectors), len(inputs))
		return
	}

	for i, sec := range r.sections {
		r.embeds = append(r.embeds, style.EmbeddingRecord{
			OwnerID:   sec.ID,
			OwnerType: style.NodeSection,
			AuthorID:  r.doc.AuthorID,
			Vector:    vectors[i],
		})
	}
	r.embeds = append(r.embeds, style.EmbeddingRecord{
		OwnerID:   r.doc.ID,
		OwnerType: style.NodeDocument,
		AuthorID:  r.doc.AuthorID,
		Vector:    vectors[len(vectors)-1],
	})
}

func fillNodeCounts(report *style.IngestionReport, results []*docResult, derived store.DerivedGraph) {
	sections, lines := 0, 0
	for _, r := range results {
		sections += len(r.sections)
		lines += len(r.lines)
	}
	report.NodeCounts["documents"] = len(results)
	report.NodeCounts["sections"] = sections
	report.NodeCounts["lines"] = lines
	report.NodeCounts["phrases"] = len(derived.Phrases)
	report.NodeCounts["motifs"] = len(derived.Motifs)
	report.NodeCounts["cultural_references"] = len(derived.Cultural)
	report.NodeCounts["rhyme_pairs"] = len(derived.RhymePairs)
	report.NodeCounts["themes"] = len(derived.Themes)
	report.NodeCounts["meter_patterns"] = len(derived.Meters)
	report.NodeCounts["structure_templates"] = len(derived.Structures)
	report.NodeCounts["thematic_clusters"] = len(derived.Clusters)
	report.NodeCounts["emotional_arcs"] = len(derived.Arcs)
}
