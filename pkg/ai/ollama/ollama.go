// Package ollama adapts a locally-hosted Ollama server to the
// ai.StyleAIClient capability interface. Requests are throttled with a
// weighted semaphore since local models serve little concurrency.
package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/verseprint/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

type StyleOllamaClient struct {
	chatModel      string
	embeddingModel string
	dimensions     int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	client *api.Client
}

// NewStyleOllamaClientParams configures a StyleOllamaClient. An empty
// BaseURL targets the local default; ApiKey is only sent when set, for
// proxied deployments.
type NewStyleOllamaClientParams struct {
	ChatModel      string
	EmbeddingModel string
	Dimensions     int

	BaseURL string
	ApiKey  string

	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewStyleAIClient creates an Ollama-backed adapter.
func NewStyleAIClient(params NewStyleOllamaClientParams) (*StyleOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)
	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := http.DefaultClient
	if params.ApiKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{
					"Authorization": "Bearer " + params.ApiKey,
				},
				rt: http.DefaultTransport,
			},
		}
	}

	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 2
	}

	return &StyleOllamaClient{
		chatModel:      params.ChatModel,
		embeddingModel: params.EmbeddingModel,
		dimensions:     params.Dimensions,
		reqLock:        semaphore.NewWeighted(params.MaxConcurrentRequests),
		client:         api.NewClient(u, httpClient),
	}, nil
}

func (c *StyleOllamaClient) Name() string { return "ollama" }

func (c *StyleOllamaClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.Add(m)
}

func (c *StyleOllamaClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *StyleOllamaClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}
