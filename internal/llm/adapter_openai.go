package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/provider"
)

// OpenAIAdapter implements Adapter using OpenAI's chat completions API.
type OpenAIAdapter struct {
	client *openai.Client
	config Config
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	return &OpenAIAdapter{
		client: openai.NewClient(cfg.APIKey),
		config: cfg,
	}
}

func (a *OpenAIAdapter) Analyze(ctx context.Context, transcript string) (string, error) {
	return analyzeViaChatAPI(ctx, a.client, a.config, provider.ProviderOpenAI, transcript)
}

// analyzeViaChatAPI is shared by every adapter speaking an
// OpenAI-compatible chat completions endpoint.
func analyzeViaChatAPI(ctx context.Context, client *openai.Client, cfg Config, vendor, transcript string) (string, error) {
	log := logging.WithComponent(vendor + "-llm")

	if transcript == "" {
		return "", provider.PermanentInput(fmt.Errorf("empty transcript"))
	}

	req := openai.ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(transcript)},
		},
		Temperature: 0.1, // low temperature for consistent formatting
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Warn().Dur("duration", duration).Err(err).Msg("chat completion failed")
		return "", classifyChatError(fmt.Errorf("%s chat completion: %w", vendor, err))
	}

	if len(resp.Choices) == 0 {
		return "", provider.Transient(fmt.Errorf("%s chat completion: no response choices", vendor))
	}

	log.Debug().Dur("duration", duration).Int("transcript_chars", len(transcript)).Msg("analysis complete")
	return resp.Choices[0].Message.Content, nil
}

func classifyChatError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return provider.FromHTTPStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return provider.FromHTTPStatus(reqErr.HTTPStatusCode, err)
	}
	return provider.Transient(err)
}
