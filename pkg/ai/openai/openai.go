// Package openai adapts the OpenAI API (or any OpenAI-compatible endpoint)
// to the ai.StyleAIClient capability interface. Chat and embedding traffic
// may target different endpoints and models.
package openai

import (
	"sync"

	"github.com/verseprint/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type StyleOpenAIClient struct {
	chatModel      string
	embeddingModel string
	dimensions     int

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	chatClient      *openai.Client
	embeddingClient *openai.Client
}

// NewStyleOpenAIClientParams configures a StyleOpenAIClient. Empty URLs
// target the public OpenAI endpoint; Dimensions fixes the embedding width
// for the store's lifetime.
type NewStyleOpenAIClientParams struct {
	ChatModel      string
	EmbeddingModel string
	Dimensions     int

	ChatURL      string
	ChatKey      string
	EmbeddingURL string
	EmbeddingKey string
}

// NewStyleAIClient creates an adapter with separate clients for chat and
// embedding endpoints.
func NewStyleAIClient(params NewStyleOpenAIClientParams) *StyleOpenAIClient {
	chatOpts := []option.RequestOption{option.WithAPIKey(params.ChatKey)}
	if params.ChatURL != "" {
		chatOpts = append(chatOpts, option.WithBaseURL(params.ChatURL))
	}
	embedOpts := []option.RequestOption{option.WithAPIKey(params.EmbeddingKey)}
	if params.EmbeddingURL != "" {
		embedOpts = append(embedOpts, option.WithBaseURL(params.EmbeddingURL))
	}

	chat := openai.NewClient(chatOpts...)
	embed := openai.NewClient(embedOpts...)

	return &StyleOpenAIClient{
		chatModel:       params.ChatModel,
		embeddingModel:  params.EmbeddingModel,
		dimensions:      params.Dimensions,
		chatClient:      &chat,
		embeddingClient: &embed,
	}
}

func (c *StyleOpenAIClient) Name() string { return "openai" }

func (c *StyleOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.Add(m)
}

func (c *StyleOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *StyleOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}
