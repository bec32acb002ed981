package transcriber

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/nelsonlabs/morningreport/internal/analysis"
	"github.com/nelsonlabs/morningreport/internal/provider"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter implements BatchAdapter for Groq's Whisper API, which is
// OpenAI-compatible apart from its base URL.
type GroqAdapter struct {
	client *openai.Client
	config Config
}

func NewGroqAdapter(config Config) *GroqAdapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = groqBaseURL
	return &GroqAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (a *GroqAdapter) Transcribe(ctx context.Context, audio []byte) (analysis.TranscriptionResult, error) {
	return transcribeViaOpenAIAPI(ctx, a.client, a.config, provider.ProviderGroq, audio)
}
