package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

// LangChainBackend talks to an OpenAI-compatible endpoint through langchaingo.
type LangChainBackend struct {
	name    string
	llm     llms.Model
	timeout time.Duration
}

func NewLangChainBackend(name, baseURL, apiKey, model string, timeout time.Duration) (*LangChainBackend, error) {
	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for model %s: %w", model, err)
	}

	return &LangChainBackend{
		name:    name,
		llm:     llm,
		timeout: timeout,
	}, nil
}

func (b *LangChainBackend) Generate(ctx context.Context, prompt string, opts models.GenerationOptions) (string, error) {
	ctx, cancel := withTimeout(ctx, b.timeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(ctx, b.llm, prompt, callOptions(opts)...)
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", b.name, err)
	}

	return response, nil
}

func (b *LangChainBackend) Stream(ctx context.Context, prompt string, opts models.GenerationOptions, onChunk func(string) error) error {
	ctx, cancel := withTimeout(ctx, b.timeout)
	defer cancel()

	streamingFunc := func(ctx context.Context, chunk []byte) error {
		if len(chunk) > 0 {
			return onChunk(string(chunk))
		}
		return nil
	}

	options := append(callOptions(opts), llms.WithStreamingFunc(streamingFunc))
	if _, err := llms.GenerateFromSinglePrompt(ctx, b.llm, prompt, options...); err != nil {
		return fmt.Errorf("%s streaming failed: %w", b.name, err)
	}

	return nil
}

func callOptions(opts models.GenerationOptions) []llms.CallOption {
	var options []llms.CallOption
	if opts.Temperature > 0 {
		options = append(options, llms.WithTemperature(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		options = append(options, llms.WithMaxTokens(opts.MaxTokens))
	}
	return options
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
