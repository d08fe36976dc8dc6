package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/verseprint/backend/pkg/ai"

	"github.com/ollama/ollama/api"
)

// Embed returns one embedding; blank input yields a zero vector at the
// configured dimensionality so vector columns stay non-null.
func (c *StyleOllamaClient) Embed(ctx context.Context, input string) ([]float32, error) {
	if strings.TrimSpace(input) == "" {
		return make([]float32, c.dimensions), nil
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.client.Embed(ctx, &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: input,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != 1 {
		return nil, fmt.Errorf("unexpected embedding count: got %d want 1", len(res.Embeddings))
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	return toFixedDim(res.Embeddings[0], c.dimensions), nil
}

// EmbedBatch embeds the inputs sequentially; the Ollama embed endpoint
// accepts batches but local servers gain nothing from them, and sequential
// calls keep the semaphore fair with concurrent chat traffic.
func (c *StyleOllamaClient) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		vec, err := c.Embed(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("embed input %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func toFixedDim(vec []float32, dim int) []float32 {
	if dim <= 0 || len(vec) == dim {
		return vec
	}
	out := make([]float32, dim)
	copy(out, vec)
	return out
}
