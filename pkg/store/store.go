// Package store defines the persistence interface of the style knowledge
// graph. The pgx subpackage implements it on PostgreSQL with pgvector.
package store

import (
	"context"

	"github.com/verseprint/backend/pkg/style"
)

// DerivedGraph is the complete derived layer for one author, produced by a
// single ingestion run. It replaces the previous derived layer wholesale;
// frequencies are never patched incrementally.
type DerivedGraph struct {
	Phrases    []style.Phrase
	Motifs     []style.Motif
	Cultural   []style.CulturalReference
	RhymePairs []style.RhymePair
	Themes     []style.Theme
	Meters     []style.MeterPattern
	Structures []style.StructureTemplate
	Clusters   []style.ThematicCluster
	Arcs       []style.EmotionalArc
}

// DocumentTree is one decomposed document with its ordered sections and
// lines, written together so the containment tree never holds orphans.
type DocumentTree struct {
	Document style.Document
	Sections []style.Section
	Lines    []style.Line
}

// StyleStorage persists and queries one style knowledge graph per author.
// Retrieval and validation only read; the ingestion run is the single
// writer for an author's partition.
type StyleStorage interface {
	// Authors.
	UpsertAuthor(ctx context.Context, author style.Author) error
	GetAuthor(ctx context.Context, authorID string) (style.Author, error)
	DeleteAuthor(ctx context.Context, authorID string) error
	// BumpGraphVersion marks the end of an ingestion run and invalidates
	// per-author facet caches. Returns the new version.
	BumpGraphVersion(ctx context.Context, authorID string) (int64, error)

	// Corpus writes.
	SaveDocumentTree(ctx context.Context, tree DocumentTree) error
	DeleteAuthorDocuments(ctx context.Context, authorID string) error

	// Corpus reads.
	GetAuthorLines(ctx context.Context, authorID string) ([]style.Line, error)
	GetAuthorSections(ctx context.Context, authorID string) ([]style.Section, error)
	GetAuthorDocuments(ctx context.Context, authorID string) ([]style.Document, error)
	GetSectionsByDocument(ctx context.Context, documentID string) ([]style.Section, error)

	// Derived layer: replaced atomically per ingestion run.
	ReplaceDerived(ctx context.Context, authorID string, derived DerivedGraph) error
	HasDerived(ctx context.Context, authorID string) (bool, error)

	// Fingerprint: exactly one per author, replaced atomically.
	SaveFingerprint(ctx context.Context, fp style.StyleFingerprint) error
	GetFingerprint(ctx context.Context, authorID string) (style.StyleFingerprint, error)

	// Embeddings.
	UpsertEmbeddings(ctx context.Context, records []style.EmbeddingRecord) error

	// Facet queries.
	SearchSectionsLexical(ctx context.Context, authorID, topic string, limit int) ([]style.ScoredSection, error)
	SearchSectionsSemantic(ctx context.Context, authorID string, vector []float32, limit int, floor float64) ([]style.ScoredSection, error)
	TopPhrases(ctx context.Context, authorID string, limit int, signatureOnly bool) ([]style.Phrase, error)
	TopRhymePairs(ctx context.Context, authorID string, limit int) ([]style.RhymePair, error)
	TopMotifs(ctx context.Context, authorID string, limit int) ([]style.Motif, error)
	TopCultural(ctx context.Context, authorID string, limit int) ([]style.CulturalReference, error)
	TopStructures(ctx context.Context, authorID string, limit int) ([]style.StructureTemplate, error)
	TopArcShapes(ctx context.Context, authorID string, limit int) ([]style.ArcShape, error)
}
