package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/nelsonlabs/morningreport/internal/provider"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter implements Adapter using Groq's OpenAI-compatible API.
type GroqAdapter struct {
	client *openai.Client
	config Config
}

func NewGroqAdapter(cfg Config) *GroqAdapter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = groqBaseURL
	return &GroqAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

func (a *GroqAdapter) Analyze(ctx context.Context, transcript string) (string, error) {
	return analyzeViaChatAPI(ctx, a.client, a.config, provider.ProviderGroq, transcript)
}
