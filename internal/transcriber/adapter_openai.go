package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/nelsonlabs/morningreport/internal/analysis"
	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/provider"
)

// OpenAIAdapter implements BatchAdapter for the OpenAI Whisper API.
type OpenAIAdapter struct {
	client *openai.Client
	config Config
}

func NewOpenAIAdapter(config Config) *OpenAIAdapter {
	return &OpenAIAdapter{
		client: openai.NewClient(config.APIKey),
		config: config,
	}
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, audio []byte) (analysis.TranscriptionResult, error) {
	return transcribeViaOpenAIAPI(ctx, a.client, a.config, provider.ProviderOpenAI, audio)
}

// transcribeViaOpenAIAPI is shared by every adapter that talks an
// OpenAI-compatible transcription endpoint.
func transcribeViaOpenAIAPI(ctx context.Context, client *openai.Client, cfg Config, vendor string, audio []byte) (analysis.TranscriptionResult, error) {
	log := logging.WithComponent(vendor + "-transcription")

	if len(audio) == 0 {
		return analysis.TranscriptionResult{}, provider.PermanentInput(fmt.Errorf("empty audio payload"))
	}

	req := openai.AudioRequest{
		Model:    cfg.Model,
		Reader:   bytes.NewReader(asWAV(audio)),
		FilePath: "audio.wav",
		Language: cfg.Language,
	}

	start := time.Now()
	resp, err := client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Warn().Dur("duration", duration).Err(err).Msg("transcription call failed")
		return analysis.TranscriptionResult{}, classifyAPIError(fmt.Errorf("%s transcription: %w", vendor, err))
	}

	log.Debug().Dur("duration", duration).Int("audio_bytes", len(audio)).Msg("transcription complete")
	return analysis.TranscriptionResult{
		Text:     resp.Text,
		Language: resp.Language,
	}, nil
}
