package validate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/verseprint/backend/pkg/ai"
	"github.com/verseprint/backend/pkg/prompt"
	"github.com/verseprint/backend/pkg/retrieval"
	"github.com/verseprint/backend/pkg/store"
	"github.com/verseprint/backend/pkg/style"
)

// engineStore stubs the reads the engine and retriever issue.
type engineStore struct {
	store.StyleStorage
	lines []style.Line
}

func (s *engineStore) GetAuthor(ctx context.Context, authorID string) (style.Author, error) {
	return style.Author{ID: authorID, Name: "Test Poet", GraphVersion: 1}, nil
}

func (s *engineStore) HasDerived(ctx context.Context, authorID string) (bool, error) {
	return true, nil
}

func (s *engineStore) GetAuthorLines(ctx context.Context, authorID string) ([]style.Line, error) {
	return s.lines, nil
}

func (s *engineStore) GetFingerprint(ctx context.Context, authorID string) (style.StyleFingerprint, error) {
	return style.StyleFingerprint{AuthorID: authorID, GraphVersion: 1}, nil
}

func (s *engineStore) SearchSectionsLexical(ctx context.Context, authorID, topic string, limit int) ([]style.ScoredSection, error) {
	return nil, nil
}

func (s *engineStore) SearchSectionsSemantic(ctx context.Context, authorID string, vector []float32, limit int, floor float64) ([]style.ScoredSection, error) {
	return nil, nil
}

func (s *engineStore) TopPhrases(ctx context.Context, authorID string, limit int, signatureOnly bool) ([]style.Phrase, error) {
	return nil, nil
}

func (s *engineStore) TopRhymePairs(ctx context.Context, authorID string, limit int) ([]style.RhymePair, error) {
	return nil, nil
}

func (s *engineStore) TopMotifs(ctx context.Context, authorID string, limit int) ([]style.Motif, error) {
	return nil, nil
}

func (s *engineStore) TopCultural(ctx context.Context, authorID string, limit int) ([]style.CulturalReference, error) {
	return nil, nil
}

func (s *engineStore) TopStructures(ctx context.Context, authorID string, limit int) ([]style.StructureTemplate, error) {
	return nil, nil
}

func (s *engineStore) TopArcShapes(ctx context.Context, authorID string, limit int) ([]style.ArcShape, error) {
	return nil, nil
}

// scriptedAI returns one canned generation per call, repeating the last
// entry once the script runs out.
type scriptedAI struct {
	mu      sync.Mutex
	script  []string
	calls   int
	failGen bool
}

func (s *scriptedAI) Generate(ctx context.Context, systemBlock, userBlock string, opts ...ai.GenerateOption) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failGen {
		return "", errors.New("provider down")
	}
	idx := s.calls - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	return s.script[idx], nil
}

func (s *scriptedAI) GenerateWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return nil
}

func (s *scriptedAI) Embed(ctx context.Context, input string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (s *scriptedAI) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (s *scriptedAI) Name() string                { return "scripted" }
func (s *scriptedAI) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
func (s *scriptedAI) ResetMetrics()               {}

func newTestEngine(t *testing.T, st store.StyleStorage, client ai.StyleAIClient) *Engine {
	t.Helper()
	assembler, err := prompt.NewAssembler("", 0, 0)
	if err != nil {
		t.Fatalf("failed to build assembler: %v", err)
	}
	r := retrieval.NewRetriever(st, client, retrieval.Config{})
	return NewEngine(st, r, assembler, NewValidator(DefaultWeights()), client, EngineConfig{GenRetries: 1})
}

const goodAttempt = `[Verse]
clouds gather soft with silver rain
my quiet heart beats slow again`

const wrongStructure = `[Verse]
soft words fall tonight slowly here

[Verse]
more soft words drift away again`

func TestGenerateStyledAcceptsFirstGoodAttempt(t *testing.T) {
	st := &engineStore{}
	client := &scriptedAI{script: []string{goodAttempt}}
	e := newTestEngine(t, st, client)

	res, err := e.GenerateStyled(context.Background(), "author_1", retrieval.Request{Topic: "rain"}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", res.Attempts)
	}
	if res.Report.Decision != Accepted {
		t.Errorf("decision = %q, want ACCEPTED", res.Report.Decision)
	}
	if res.QualityWarning {
		t.Error("accepted result must not carry a quality warning")
	}
	if res.Text != goodAttempt {
		t.Errorf("text = %q", res.Text)
	}
}

func TestGenerateStyledNeverExceedsAttemptCap(t *testing.T) {
	st := &engineStore{}
	client := &scriptedAI{script: []string{wrongStructure}}
	e := newTestEngine(t, st, client)

	res, err := e.GenerateStyled(context.Background(), "author_1",
		retrieval.Request{Topic: "rain", StructuralHint: "verse-chorus-verse"}, 10)
	if err != nil {
		t.Fatalf("low quality must degrade, not fail: %v", err)
	}
	if client.calls != 3 {
		t.Errorf("generation calls = %d, want exactly 3", client.calls)
	}
	if res.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", res.Attempts)
	}
	if !res.QualityWarning {
		t.Error("degraded result must carry a quality warning")
	}
	if res.Report.Decision != FullRetry {
		t.Errorf("decision = %q, want FULL_RETRY on the best attempt", res.Report.Decision)
	}
}

func TestGenerateStyledCapabilityOutage(t *testing.T) {
	st := &engineStore{}
	client := &scriptedAI{failGen: true}
	e := newTestEngine(t, st, client)

	_, err := e.GenerateStyled(context.Background(), "author_1", retrieval.Request{Topic: "rain"}, 3)
	if !errors.Is(err, style.ErrGenerationUnavailable) {
		t.Fatalf("error = %v, want ErrGenerationUnavailable", err)
	}
}

func TestGenerateStyledCanceledBetweenAttempts(t *testing.T) {
	st := &engineStore{}
	client := &scriptedAI{script: []string{wrongStructure}}
	e := newTestEngine(t, st, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.GenerateStyled(ctx, "author_1", retrieval.Request{Topic: "rain"}, 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
