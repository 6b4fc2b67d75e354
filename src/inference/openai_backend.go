package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

// OpenAIBackend calls the chat completions API of any OpenAI-compatible
// service through go-openai. Its errors keep the HTTP status, which the
// dispatcher uses to spot rate limiting.
type OpenAIBackend struct {
	name   string
	model  string
	client *openai.Client
}

func NewOpenAIBackend(name, baseURL, apiKey, model string, timeout time.Duration) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &OpenAIBackend{
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (b *OpenAIBackend) request(prompt string, opts models.GenerationOptions, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
		Stream:      stream,
	}
}

func (b *OpenAIBackend) Generate(ctx context.Context, prompt string, opts models.GenerationOptions) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, b.request(prompt, opts, false))
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", b.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", b.name)
	}

	return resp.Choices[0].Message.Content, nil
}

func (b *OpenAIBackend) Stream(ctx context.Context, prompt string, opts models.GenerationOptions, onChunk func(string) error) error {
	stream, err := b.client.CreateChatCompletionStream(ctx, b.request(prompt, opts, true))
	if err != nil {
		return fmt.Errorf("%s streaming failed: %w", b.name, err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s stream receive failed: %w", b.name, err)
		}

		for _, choice := range resp.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onChunk(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
}
