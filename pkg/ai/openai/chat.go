package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verseprint/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// Generate sends the system and user blocks as one chat completion and
// returns the generated text.
func (c *StyleOpenAIClient) Generate(
	ctx context.Context,
	systemBlock, userBlock string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.8,
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{}
	if systemBlock != "" {
		msgs = append(msgs, openai.SystemMessage(systemBlock))
	}
	msgs = append(msgs, openai.UserMessage(userBlock))

	body := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(options.Model),
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}
	if options.MaxTokens > 0 {
		body.MaxCompletionTokens = openai.Int(int64(options.MaxTokens))
	}

	start := time.Now()
	response, err := c.chatClient.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   time.Since(start).Milliseconds(),
	})

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty completion for model %s", options.Model)
	}
	return response.Choices[0].Message.Content, nil
}

// GenerateWithFormat enforces a JSON schema derived from out's type and
// unmarshals the completion into out. Malformed model JSON goes through
// the flexible repair path before failing.
func (c *StyleOpenAIClient) GenerateWithFormat(
	ctx context.Context,
	name, description, prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      ai.GenerateSchema(out),
		Strict:      openai.Bool(true),
	}

	options := ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.1,
	}
	for _, o := range opts {
		o(&options)
	}

	body := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(options.Model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(options.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	}

	start := time.Now()
	response, err := c.chatClient.Chat.Completions.New(ctx, body)
	if err != nil {
		return err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   time.Since(start).Milliseconds(),
	})

	if len(response.Choices) == 0 {
		return fmt.Errorf("empty structured completion for %s", name)
	}
	content := response.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}
	if err := ai.UnmarshalFlexible(content, out); err != nil {
		return fmt.Errorf("parse %s output: %w", name, err)
	}
	return nil
}
