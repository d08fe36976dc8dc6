package validate

import (
	"context"
	"errors"
	"time"

	"github.com/verseprint/backend/internal/util"
	"github.com/verseprint/backend/pkg/ai"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/prompt"
	"github.com/verseprint/backend/pkg/retrieval"
	"github.com/verseprint/backend/pkg/store"
	"github.com/verseprint/backend/pkg/style"
)

// EngineConfig tunes the generation loop.
type EngineConfig struct {
	MaxAttempts int           // hard cap on generation attempts, default 3
	GenRetries  int           // transport retries per attempt, default 3
	GenBackoff  time.Duration // initial backoff between transport retries
	Temperature float64
	MaxTokens   int
}

func (c *EngineConfig) defaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.GenRetries <= 0 {
		c.GenRetries = 3
	}
	if c.GenBackoff <= 0 {
		c.GenBackoff = 500 * time.Millisecond
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.8
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1200
	}
}

// Result is the outcome of one generateStyled call. When no attempt was
// accepted, Text holds the best-scoring attempt and QualityWarning is set.
type Result struct {
	Text           string   `json:"text"`
	FacetsUsed     []string `json:"facetsUsed"`
	Report         Report   `json:"validationReport"`
	Attempts       int      `json:"attempts"`
	QualityWarning bool     `json:"qualityWarning,omitempty"`
}

// Engine runs the retrieve → assemble → generate → score loop.
type Engine struct {
	store     store.StyleStorage
	retriever *retrieval.Retriever
	assembler *prompt.Assembler
	validator *Validator
	aiClient  ai.StyleAIClient
	cfg       EngineConfig
}

func NewEngine(st store.StyleStorage, r *retrieval.Retriever, a *prompt.Assembler, v *Validator, aiClient ai.StyleAIClient, cfg EngineConfig) *Engine {
	cfg.defaults()
	return &Engine{
		store:     st,
		retriever: r,
		assembler: a,
		validator: v,
		aiClient:  aiClient,
		cfg:       cfg,
	}
}

type attempt struct {
	text    string
	report  Report
	payload prompt.Payload
}

// GenerateStyled produces text in the author's style, looping through the
// regeneration state machine until acceptance or the attempt cap. Low
// quality never fails the call; only an empty graph or a generation
// capability outage does.
func (e *Engine) GenerateStyled(ctx context.Context, authorID string, req retrieval.Request, maxAttempts int) (*Result, error) {
	if maxAttempts <= 0 || maxAttempts > e.cfg.MaxAttempts {
		maxAttempts = e.cfg.MaxAttempts
	}

	author, err := e.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	bundle, err := e.retriever.RetrieveFacets(ctx, authorID, req)
	if err != nil {
		return nil, err
	}

	corpusLines, err := e.store.GetAuthorLines(ctx, authorID)
	if err != nil {
		return nil, err
	}
	lineTexts := make([]string, len(corpusLines))
	for i, l := range corpusLines {
		lineTexts[i] = l.Text
	}

	parsed := retrieval.ParseRequest(req)
	pattern := parsed.Pattern
	if len(pattern) == 0 && len(bundle.Structures) > 0 {
		pattern = bundle.Structures[0].Pattern
	}
	var targetArc style.ArcShape
	if len(bundle.ArcShapes) > 0 {
		targetArc = bundle.ArcShapes[0]
	}

	target := Target{
		CorpusLines: lineTexts,
		Fingerprint: bundle.Fingerprint,
		Pattern:     pattern,
		ArcShape:    targetArc,
	}

	var (
		attempts  []attempt
		negatives []string
		repair    map[int]string
		keepText  string
	)

	for len(attempts) < maxAttempts {
		// Abort between attempts on request cancellation.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payload := e.assembler.Assemble(prompt.AssembleInput{
			AuthorName:       author.Name,
			Bundle:           bundle,
			Pattern:          pattern,
			Moods:            parsed.Moods,
			NegativeExamples: negatives,
			RepairLines:      repair,
			KeepText:         keepText,
		})

		text, err := util.RetryWithBackoff(ctx, e.cfg.GenRetries, e.cfg.GenBackoff,
			func(ctx context.Context) (string, error) {
				return e.aiClient.Generate(ctx, payload.SystemBlock, payload.UserBlock,
					ai.WithTemperature(e.cfg.Temperature),
					ai.WithMaxTokens(e.cfg.MaxTokens))
			})
		if err != nil {
			return nil, errors.Join(style.ErrGenerationUnavailable, err)
		}

		report := e.validator.Score(text, target)
		attempts = append(attempts, attempt{text: text, report: report, payload: payload})

		logger.Info("[Generate] Attempt scored",
			"author_id", authorID,
			"attempt", len(attempts),
			"overall", report.Overall,
			"decision", report.Decision,
		)

		switch report.Decision {
		case Accepted:
			return &Result{
				Text:       text,
				FacetsUsed: payload.FacetsUsed,
				Report:     report,
				Attempts:   len(attempts),
			}, nil
		case PartialRetry:
			out := parseOutput(text)
			repair = make(map[int]string, len(report.FlaggedLines))
			for _, n := range report.FlaggedLines {
				if n >= 1 && n <= len(out.lines) {
					repair[n] = out.lines[n-1]
				}
			}
			keepText = text
		default: // FullRetry
			negatives = append(negatives, text)
			repair = nil
			keepText = ""
		}
	}

	best := attempts[0]
	for _, a := range attempts[1:] {
		if a.report.Overall > best.report.Overall {
			best = a
		}
	}
	return &Result{
		Text:           best.text,
		FacetsUsed:     best.payload.FacetsUsed,
		Report:         best.report,
		Attempts:       len(attempts),
		QualityWarning: true,
	}, nil
}
