package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/verseprint/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// Embed returns one embedding at the configured dimensionality.
func (c *StyleOpenAIClient) Embed(ctx context.Context, input string) ([]float32, error) {
	res, err := c.EmbedBatch(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("unexpected embedding result size: got %d want 1", len(res))
	}
	return res[0], nil
}

// EmbedBatch embeds the inputs in one request, preserving order. Empty
// inputs come back as zero vectors so vector columns stay non-null.
func (c *StyleOpenAIClient) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(inputs))
	var nonEmpty []string
	var idx []int
	for i, in := range inputs {
		if in == "" {
			out[i] = make([]float32, c.dimensions)
			continue
		}
		nonEmpty = append(nonEmpty, in)
		idx = append(idx, i)
	}
	if len(nonEmpty) == 0 {
		return out, nil
	}

	body := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: nonEmpty,
		},
	}
	if c.dimensions > 0 {
		body.Dimensions = openai.Int(int64(c.dimensions))
	}

	start := time.Now()
	response, err := c.embeddingClient.Embeddings.New(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(response.Data) != len(nonEmpty) {
		return nil, fmt.Errorf("embedding count mismatch: got %d want %d", len(response.Data), len(nonEmpty))
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: int(response.Usage.PromptTokens),
		TotalTokens: int(response.Usage.TotalTokens),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	for i, d := range response.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		if c.dimensions > 0 && len(vec) != c.dimensions {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d want %d", len(vec), c.dimensions)
		}
		out[idx[i]] = vec
	}
	return out, nil
}
