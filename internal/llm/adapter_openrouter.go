package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/nelsonlabs/morningreport/internal/provider"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterAdapter implements Adapter through the OpenRouter gateway,
// which exposes an OpenAI-compatible API over many hosted models.
type OpenRouterAdapter struct {
	client *openai.Client
	config Config
}

func NewOpenRouterAdapter(cfg Config) *OpenRouterAdapter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = openRouterBaseURL
	return &OpenRouterAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

func (a *OpenRouterAdapter) Analyze(ctx context.Context, transcript string) (string, error) {
	return analyzeViaChatAPI(ctx, a.client, a.config, provider.ProviderOpenRouter, transcript)
}
