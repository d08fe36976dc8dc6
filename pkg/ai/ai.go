// Package ai defines the capability interface the style pipeline consumes:
// text generation from a two-part prompt, embeddings with a fixed
// dimensionality, and structured classification. Adapters live in the
// subpackages; the Chain type provides ordered multi-provider fallback.
package ai

import "context"

// GenerateOptions holds configuration for generation requests.
type GenerateOptions struct {
	Model       string  // model identifier
	Temperature float64 // sampling temperature (0.0-2.0)
	MaxTokens   int     // maximum completion length, 0 for provider default
}

// GenerateOption is a functional option for configuring generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithTemperature returns a GenerateOption that sets the sampling
// temperature. Higher values produce more varied output.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens returns a GenerateOption that caps the completion length.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

// ModelMetrics contains accumulated performance metrics from AI operations.
type ModelMetrics struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	TotalTokens  int   `json:"total_tokens"`
	DurationMs   int64 `json:"duration_ms"`
	Requests     int   `json:"requests"`
}

func (m *ModelMetrics) Add(other ModelMetrics) {
	m.InputTokens += other.InputTokens
	m.OutputTokens += other.OutputTokens
	m.TotalTokens += other.TotalTokens
	m.DurationMs += other.DurationMs
	m.Requests++
}

// StyleAIClient is the capability surface consumed by ingestion, retrieval
// and generation. Implementations must be safe for concurrent use.
type StyleAIClient interface {
	// Generate produces text from a stable system block and a
	// request-specific user block.
	Generate(ctx context.Context, systemBlock, userBlock string, opts ...GenerateOption) (string, error)

	// GenerateWithFormat enforces a JSON schema derived from out's type and
	// unmarshals the completion into out.
	GenerateWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...GenerateOption) error

	// Embed returns a vector of the provider's fixed dimensionality.
	Embed(ctx context.Context, input string) ([]float32, error)

	// EmbedBatch embeds multiple inputs in one round trip where the
	// provider supports it.
	EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error)

	Name() string
	GetMetrics() ModelMetrics
	ResetMetrics()
}
