package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/verseprint/backend/pkg/ai"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/store"
	"github.com/verseprint/backend/pkg/style"
)

// Config tunes the retriever's facet queries.
type Config struct {
	PassageLimit  int           // fused thematic passages to keep
	FacetLimit    int           // top-K per derived-entity facet
	FacetTimeout  time.Duration // per-facet degradation deadline
	SemanticFloor float64       // cosine floor for semantic candidates
	RRFK          int           // reciprocal rank fusion constant
}

func (c *Config) defaults() {
	if c.PassageLimit <= 0 {
		c.PassageLimit = 8
	}
	if c.FacetLimit <= 0 {
		c.FacetLimit = 10
	}
	if c.FacetTimeout <= 0 {
		c.FacetTimeout = 3 * time.Second
	}
	if c.SemanticFloor <= 0 {
		c.SemanticFloor = 0.5
	}
	if c.RRFK <= 0 {
		c.RRFK = rrfK
	}
}

// Retriever answers facet requests against one style graph store. It is
// safe for concurrent use; the facet cache is shared across requests.
type Retriever struct {
	store    store.StyleStorage
	aiClient ai.StyleAIClient
	cache    *facetCache
	cfg      Config
}

func NewRetriever(st store.StyleStorage, aiClient ai.StyleAIClient, cfg Config) *Retriever {
	cfg.defaults()
	return &Retriever{
		store:    st,
		aiClient: aiClient,
		cache:    newFacetCache(),
		cfg:      cfg,
	}
}

// InvalidateAuthor drops every cached facet for the author, used when the
// author's graph is deleted outright. Re-ingestion needs no explicit
// invalidation: the version bump changes the cache keys.
func (r *Retriever) InvalidateAuthor(authorID string) {
	r.cache.drop(authorID)
}

// RetrieveFacets fans out every retrieval facet concurrently and blocks
// until all have returned or their per-facet timeout elapsed. A timed-out
// facet degrades to its empty value and is listed in the bundle's Timeouts.
func (r *Retriever) RetrieveFacets(ctx context.Context, authorID string, req Request) (*style.FacetBundle, error) {
	author, err := r.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	hasDerived, err := r.store.HasDerived(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to probe derived layer: %w", err)
	}

	mode := style.ModeGraphBacked
	if !hasDerived {
		docs, err := r.store.GetAuthorDocuments(ctx, authorID)
		if err != nil {
			return nil, fmt.Errorf("failed to probe corpus: %w", err)
		}
		if len(docs) == 0 {
			return nil, style.ErrNoAuthorData
		}
		mode = style.ModeFlatFallback
	}

	parsed := ParseRequest(req)
	bundle := &style.FacetBundle{
		AuthorID:     authorID,
		GraphVersion: author.GraphVersion,
		Mode:         mode,
		Topic:        parsed.Topic,
	}

	var (
		wg        sync.WaitGroup
		timeoutMu sync.Mutex
	)
	runFacet := func(name string, fn func(ctx context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, r.cfg.FacetTimeout)
			defer cancel()
			err := fn(fctx)
			if err == nil {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				timeoutMu.Lock()
				bundle.Timeouts = append(bundle.Timeouts, name)
				timeoutMu.Unlock()
				return
			}
			// Degrade: the facet stays empty, the request continues.
			logger.Warn("[Retrieval] Facet failed", "facet", name, "author_id", authorID, "error", err)
		}()
	}

	runFacet("passages", func(fctx context.Context) error {
		passages, err := r.retrievePassages(fctx, authorID, parsed.Topic, mode)
		if err != nil {
			return err
		}
		bundle.Passages = passages
		return nil
	})

	if mode == style.ModeGraphBacked {
		version := author.GraphVersion

		runFacet("fingerprint", func(fctx context.Context) error {
			fp, err := cachedFacet(fctx, r, authorID, version, "fingerprint",
				func(fctx context.Context) (style.StyleFingerprint, error) {
					return r.store.GetFingerprint(fctx, authorID)
				})
			if err != nil {
				return err
			}
			bundle.Fingerprint = &fp
			return nil
		})

		runFacet("phrases", func(fctx context.Context) error {
			phrases, err := cachedFacet(fctx, r, authorID, version, "phrases",
				func(fctx context.Context) ([]style.Phrase, error) {
					return r.store.TopPhrases(fctx, authorID, r.cfg.FacetLimit, true)
				})
			if err != nil {
				return err
			}
			bundle.Phrases = phrases
			return nil
		})

		runFacet("rhyme_pairs", func(fctx context.Context) error {
			pairs, err := cachedFacet(fctx, r, authorID, version, "rhyme_pairs",
				func(fctx context.Context) ([]style.RhymePair, error) {
					return r.store.TopRhymePairs(fctx, authorID, r.cfg.FacetLimit)
				})
			if err != nil {
				return err
			}
			bundle.RhymePairs = pairs
			return nil
		})

		runFacet("arc_shapes", func(fctx context.Context) error {
			shapes, err := cachedFacet(fctx, r, authorID, version, "arc_shapes",
				func(fctx context.Context) ([]style.ArcShape, error) {
					return r.store.TopArcShapes(fctx, authorID, r.cfg.FacetLimit)
				})
			if err != nil {
				return err
			}
			bundle.ArcShapes = shapes
			return nil
		})

		runFacet("motifs", func(fctx context.Context) error {
			motifs, err := cachedFacet(fctx, r, authorID, version, "motifs",
				func(fctx context.Context) ([]style.Motif, error) {
					return r.store.TopMotifs(fctx, authorID, r.cfg.FacetLimit)
				})
			if err != nil {
				return err
			}
			bundle.Motifs = motifs
			return nil
		})

		runFacet("cultural", func(fctx context.Context) error {
			refs, err := cachedFacet(fctx, r, authorID, version, "cultural",
				func(fctx context.Context) ([]style.CulturalReference, error) {
					return r.store.TopCultural(fctx, authorID, r.cfg.FacetLimit)
				})
			if err != nil {
				return err
			}
			bundle.Cultural = refs
			return nil
		})

		runFacet("structures", func(fctx context.Context) error {
			structures, err := cachedFacet(fctx, r, authorID, version, "structures",
				func(fctx context.Context) ([]style.StructureTemplate, error) {
					return r.store.TopStructures(fctx, authorID, r.cfg.FacetLimit)
				})
			if err != nil {
				return err
			}
			bundle.Structures = structures
			return nil
		})
	}

	wg.Wait()
	return bundle, nil
}

// retrievePassages runs the hybrid thematic-passage facet. Graph-backed
// mode fuses the lexical and semantic rankings with RRF; flat fallback uses
// embeddings only. Topic passages are never cached.
func (r *Retriever) retrievePassages(ctx context.Context, authorID, topic string, mode style.RetrievalMode) ([]style.ScoredSection, error) {
	if topic == "" {
		return nil, nil
	}

	candidateLimit := r.cfg.PassageLimit * 2

	var semantic []style.ScoredSection
	if r.aiClient != nil {
		vector, err := r.aiClient.Embed(ctx, topic)
		if err != nil {
			if mode == style.ModeFlatFallback {
				return nil, fmt.Errorf("failed to embed topic: %w", err)
			}
			logger.Warn("[Retrieval] Topic embedding failed, lexical only", "author_id", authorID, "error", err)
		} else {
			semantic, err = r.store.SearchSectionsSemantic(ctx, authorID, vector, candidateLimit, r.cfg.SemanticFloor)
			if err != nil {
				return nil, err
			}
		}
	}

	if mode == style.ModeFlatFallback {
		if len(semantic) > r.cfg.PassageLimit {
			semantic = semantic[:r.cfg.PassageLimit]
		}
		return semantic, nil
	}

	lexical, err := r.store.SearchSectionsLexical(ctx, authorID, topic, candidateLimit)
	if err != nil {
		return nil, err
	}

	fused := FuseRanked(r.cfg.RRFK, lexical, semantic)
	if len(fused) > r.cfg.PassageLimit {
		fused = fused[:r.cfg.PassageLimit]
	}
	return fused, nil
}

// cachedFacet serves one per-author facet from the version-keyed cache,
// loading and caching it on miss.
func cachedFacet[T any](ctx context.Context, r *Retriever, authorID string, version int64, facet string, load func(context.Context) (T, error)) (T, error) {
	key := cacheKey{authorID: authorID, version: version, facet: facet}
	if v, ok := r.cache.get(key); ok {
		return v.(T), nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	r.cache.set(key, v)
	return v, nil
}
