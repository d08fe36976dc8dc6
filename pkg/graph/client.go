// Package graph runs the ingestion pipeline: it decomposes raw lyric
// documents into the containment tree, derives the per-author style
// entities, embeds the retrievable nodes and rebuilds the fingerprint.
// One run is the single writer for an author's partition.
package graph

import (
	"github.com/verseprint/backend/pkg/ai"
	"github.com/verseprint/backend/pkg/store"
)

// Pipeline orchestrates ingestion runs. It manages document-level
// parallelism and the batch size of classifier calls.
//
// A Pipeline should be created using NewPipeline.
type Pipeline struct {
	store          store.StyleStorage
	aiClient       ai.StyleAIClient
	parallelDocs   int
	motifBatchSize int
	maxRetries     int
}

// NewPipelineParams defines the configuration parameters for creating
// a new Pipeline.
//
// ParallelDocs controls how many documents are analyzed in parallel.
// MotifBatchSize caps the number of lines per motif-classifier call.
type NewPipelineParams struct {
	Store          store.StyleStorage
	AIClient       ai.StyleAIClient
	ParallelDocs   int
	MotifBatchSize int
	MaxRetries     int
}

// NewPipeline creates and returns a Pipeline configured with the provided
// parameters. Zero values fall back to conservative defaults.
func NewPipeline(params NewPipelineParams) *Pipeline {
	p := &Pipeline{
		store:          params.Store,
		aiClient:       params.AIClient,
		parallelDocs:   params.ParallelDocs,
		motifBatchSize: params.MotifBatchSize,
		maxRetries:     params.MaxRetries,
	}
	if p.parallelDocs <= 0 {
		p.parallelDocs = 4
	}
	if p.motifBatchSize <= 0 {
		p.motifBatchSize = 10
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	return p
}
