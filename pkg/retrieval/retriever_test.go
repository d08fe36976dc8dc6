package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/verseprint/backend/pkg/ai"
	"github.com/verseprint/backend/pkg/store"
	"github.com/verseprint/backend/pkg/style"
)

// facetStore stubs the queries the retriever issues; everything else
// panics through the embedded nil interface.
type facetStore struct {
	store.StyleStorage

	version int64
	derived bool
	docs    []style.Document

	lexical  []style.ScoredSection
	semantic []style.ScoredSection

	phraseLoads int
}

func (s *facetStore) GetAuthor(ctx context.Context, authorID string) (style.Author, error) {
	return style.Author{ID: authorID, Name: "Test Poet", GraphVersion: s.version}, nil
}

func (s *facetStore) HasDerived(ctx context.Context, authorID string) (bool, error) {
	return s.derived, nil
}

func (s *facetStore) GetAuthorDocuments(ctx context.Context, authorID string) ([]style.Document, error) {
	return s.docs, nil
}

func (s *facetStore) SearchSectionsLexical(ctx context.Context, authorID, topic string, limit int) ([]style.ScoredSection, error) {
	return s.lexical, nil
}

func (s *facetStore) SearchSectionsSemantic(ctx context.Context, authorID string, vector []float32, limit int, floor float64) ([]style.ScoredSection, error) {
	return s.semantic, nil
}

func (s *facetStore) GetFingerprint(ctx context.Context, authorID string) (style.StyleFingerprint, error) {
	return style.StyleFingerprint{AuthorID: authorID, GraphVersion: s.version}, nil
}

func (s *facetStore) TopPhrases(ctx context.Context, authorID string, limit int, signatureOnly bool) ([]style.Phrase, error) {
	s.phraseLoads++
	return []style.Phrase{{Text: "dil ki baat", Frequency: 5, IsSignature: true}}, nil
}

func (s *facetStore) TopRhymePairs(ctx context.Context, authorID string, limit int) ([]style.RhymePair, error) {
	return []style.RhymePair{{WordA: "again", WordB: "rain", Type: style.RhymePerfect, Frequency: 3}}, nil
}

func (s *facetStore) TopMotifs(ctx context.Context, authorID string, limit int) ([]style.Motif, error) {
	return nil, nil
}

func (s *facetStore) TopCultural(ctx context.Context, authorID string, limit int) ([]style.CulturalReference, error) {
	return nil, nil
}

func (s *facetStore) TopStructures(ctx context.Context, authorID string, limit int) ([]style.StructureTemplate, error) {
	return nil, nil
}

func (s *facetStore) TopArcShapes(ctx context.Context, authorID string, limit int) ([]style.ArcShape, error) {
	return []style.ArcShape{style.ArcSlowBuild}, nil
}

type embedStub struct{}

func (embedStub) Generate(ctx context.Context, systemBlock, userBlock string, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (embedStub) GenerateWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return nil
}

func (embedStub) Embed(ctx context.Context, input string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (embedStub) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	return [][]float32{{1, 0}}, nil
}

func (embedStub) Name() string                { return "stub" }
func (embedStub) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
func (embedStub) ResetMetrics()               {}

func monsoonSections() (match, other style.ScoredSection) {
	match = style.ScoredSection{Section: style.Section{ID: "sec_monsoon", Text: "monsoon raat aayi"}}
	other = style.ScoredSection{Section: style.Section{ID: "sec_other", Text: "city lights burn"}}
	return
}

func TestRetrieveFacetsRanksLexicalMatchFirst(t *testing.T) {
	match, other := monsoonSections()
	st := &facetStore{
		version:  3,
		derived:  true,
		lexical:  []style.ScoredSection{match},
		semantic: []style.ScoredSection{other, match},
	}
	r := NewRetriever(st, embedStub{}, Config{})

	bundle, err := r.RetrieveFacets(context.Background(), "author_1", Request{Topic: "monsoon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.Mode != style.ModeGraphBacked {
		t.Errorf("mode = %q, want graphBacked", bundle.Mode)
	}
	if bundle.GraphVersion != 3 {
		t.Errorf("graph version = %d, want 3", bundle.GraphVersion)
	}
	if len(bundle.Passages) != 2 {
		t.Fatalf("passages = %d, want 2", len(bundle.Passages))
	}
	if bundle.Passages[0].Section.ID != "sec_monsoon" {
		t.Errorf("top passage = %q, want the lexical match", bundle.Passages[0].Section.ID)
	}
	if bundle.Fingerprint == nil || bundle.Fingerprint.GraphVersion != 3 {
		t.Error("fingerprint facet missing")
	}
	if len(bundle.Phrases) != 1 || !bundle.Phrases[0].IsSignature {
		t.Errorf("phrases facet = %v", bundle.Phrases)
	}
	if len(bundle.Timeouts) != 0 {
		t.Errorf("unexpected timeouts: %v", bundle.Timeouts)
	}
}

func TestRetrieveFacetsCachesUntilVersionBump(t *testing.T) {
	st := &facetStore{version: 1, derived: true}
	r := NewRetriever(st, embedStub{}, Config{})

	for range 2 {
		if _, err := r.RetrieveFacets(context.Background(), "author_1", Request{Topic: "rain"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if st.phraseLoads != 1 {
		t.Fatalf("phrase loads = %d, want 1 (second request cached)", st.phraseLoads)
	}

	st.version = 2
	if _, err := r.RetrieveFacets(context.Background(), "author_1", Request{Topic: "rain"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.phraseLoads != 2 {
		t.Errorf("phrase loads = %d, want 2 after version bump", st.phraseLoads)
	}
}

func TestRetrieveFacetsFlatFallback(t *testing.T) {
	match, other := monsoonSections()
	st := &facetStore{
		version:  1,
		derived:  false,
		docs:     []style.Document{{ID: "doc_1"}},
		semantic: []style.ScoredSection{match, other},
	}
	r := NewRetriever(st, embedStub{}, Config{})

	bundle, err := r.RetrieveFacets(context.Background(), "author_1", Request{Topic: "monsoon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.Mode != style.ModeFlatFallback {
		t.Errorf("mode = %q, want flatFallback", bundle.Mode)
	}
	if len(bundle.Passages) != 2 || bundle.Passages[0].Section.ID != "sec_monsoon" {
		t.Errorf("passages = %v", bundle.Passages)
	}
	if bundle.Fingerprint != nil || bundle.Phrases != nil {
		t.Error("derived facets must stay empty in flat fallback mode")
	}
}

func TestRetrieveFacetsEmptyGraph(t *testing.T) {
	st := &facetStore{version: 0, derived: false}
	r := NewRetriever(st, embedStub{}, Config{})

	_, err := r.RetrieveFacets(context.Background(), "author_1", Request{Topic: "monsoon"})
	if err != style.ErrNoAuthorData {
		t.Fatalf("error = %v, want ErrNoAuthorData", err)
	}
}

func TestRetrieveFacetsTimeoutDegrades(t *testing.T) {
	st := &slowStore{facetStore: facetStore{version: 1, derived: true}, delay: 50 * time.Millisecond}
	r := NewRetriever(st, embedStub{}, Config{FacetTimeout: time.Millisecond})

	// Only the rhyme facet is slow; everything else answers instantly, so
	// the bundle arrives with one recorded timeout.
	bundle, err := r.RetrieveFacets(context.Background(), "author_1", Request{Topic: "rain"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, name := range bundle.Timeouts {
		if name == "rhyme_pairs" {
			found = true
		}
	}
	if !found {
		t.Errorf("timeouts = %v, want rhyme_pairs listed", bundle.Timeouts)
	}
	if len(bundle.RhymePairs) != 0 {
		t.Errorf("timed-out facet must stay empty, got %v", bundle.RhymePairs)
	}
}

type slowStore struct {
	facetStore
	delay time.Duration
}

func (s *slowStore) TopRhymePairs(ctx context.Context, authorID string, limit int) ([]style.RhymePair, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return s.facetStore.TopRhymePairs(ctx, authorID, limit)
	}
}
