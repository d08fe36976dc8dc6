package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/verseprint/backend/pkg/logger"
)

// Chain is an ordered multi-provider fallback: each call walks the adapter
// list in order until one succeeds or the attempt cap is reached. There is
// no hidden retry state; a failed adapter is retried fresh on the next call.
type Chain struct {
	adapters    []StyleAIClient
	maxAttempts int
}

// NewChain builds a fallback chain over the given adapters in priority
// order. maxAttempts caps total calls per operation across all adapters;
// zero means one attempt per adapter.
func NewChain(maxAttempts int, adapters ...StyleAIClient) *Chain {
	if maxAttempts <= 0 {
		maxAttempts = len(adapters)
	}
	return &Chain{adapters: adapters, maxAttempts: maxAttempts}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) walk(ctx context.Context, op string, fn func(StyleAIClient) error) error {
	if len(c.adapters) == 0 {
		return errors.New("fallback chain has no adapters")
	}
	var errs []error
	attempts := 0
	for _, adapter := range c.adapters {
		if attempts >= c.maxAttempts {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		attempts++
		err := fn(adapter)
		if err == nil {
			return nil
		}
		logger.Warn("ai provider failed, trying next",
			"op", op, "provider", adapter.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", adapter.Name(), err))
	}
	return fmt.Errorf("all providers failed for %s: %w", op, errors.Join(errs...))
}

func (c *Chain) Generate(ctx context.Context, systemBlock, userBlock string, opts ...GenerateOption) (string, error) {
	var out string
	err := c.walk(ctx, "generate", func(a StyleAIClient) error {
		var err error
		out, err = a.Generate(ctx, systemBlock, userBlock, opts...)
		return err
	})
	return out, err
}

func (c *Chain) GenerateWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...GenerateOption) error {
	return c.walk(ctx, "classify", func(a StyleAIClient) error {
		return a.GenerateWithFormat(ctx, name, description, prompt, out, opts...)
	})
}

func (c *Chain) Embed(ctx context.Context, input string) ([]float32, error) {
	var out []float32
	err := c.walk(ctx, "embed", func(a StyleAIClient) error {
		var err error
		out, err = a.Embed(ctx, input)
		return err
	})
	return out, err
}

func (c *Chain) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	var out [][]float32
	err := c.walk(ctx, "embed_batch", func(a StyleAIClient) error {
		var err error
		out, err = a.EmbedBatch(ctx, inputs)
		return err
	})
	return out, err
}

// GetMetrics sums metrics across the chain's adapters.
func (c *Chain) GetMetrics() ModelMetrics {
	var total ModelMetrics
	for _, a := range c.adapters {
		m := a.GetMetrics()
		total.InputTokens += m.InputTokens
		total.OutputTokens += m.OutputTokens
		total.TotalTokens += m.TotalTokens
		total.DurationMs += m.DurationMs
		total.Requests += m.Requests
	}
	return total
}

func (c *Chain) ResetMetrics() {
	for _, a := range c.adapters {
		a.ResetMetrics()
	}
}
