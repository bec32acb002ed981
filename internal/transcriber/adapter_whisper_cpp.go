package transcriber

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nelsonlabs/morningreport/internal/analysis"
	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/provider"
)

// WhisperCppAdapter implements BatchAdapter through a local whisper.cpp
// install (the whisper-cli binary). No API key, no network.
type WhisperCppAdapter struct {
	modelPath string
	language  string
	threads   int
}

func NewWhisperCppAdapter(config Config) *WhisperCppAdapter {
	return &WhisperCppAdapter{
		modelPath: config.ModelPath,
		language:  config.Language,
		threads:   config.Threads,
	}
}

func (a *WhisperCppAdapter) Transcribe(ctx context.Context, audio []byte) (analysis.TranscriptionResult, error) {
	log := logging.WithComponent("whisper-cpp")

	if len(audio) == 0 {
		return analysis.TranscriptionResult{}, provider.PermanentInput(fmt.Errorf("empty audio payload"))
	}

	if _, err := os.Stat(a.modelPath); os.IsNotExist(err) {
		return analysis.TranscriptionResult{}, &provider.ConfigurationError{
			Provider: provider.ProviderWhisperCpp,
			Reason:   fmt.Sprintf("model file not found: %s", a.modelPath),
		}
	}

	whisperPath, err := exec.LookPath("whisper-cli")
	if err != nil {
		return analysis.TranscriptionResult{}, &provider.ConfigurationError{
			Provider: provider.ProviderWhisperCpp,
			Reason:   "whisper-cli not found: install whisper.cpp first",
		}
	}

	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("morningreport-%d.wav", time.Now().UnixNano()))
	if err := os.WriteFile(tmpFile, asWAV(audio), 0600); err != nil {
		return analysis.TranscriptionResult{}, provider.Transient(fmt.Errorf("write temp file: %w", err))
	}
	defer os.Remove(tmpFile)

	lang := a.language
	if lang == "" {
		lang = "auto"
	}

	args := []string{
		"-m", a.modelPath,
		"-l", lang,
		"-nt", // no timestamps
		"-np", // no progress
		"-f", tmpFile,
	}
	if a.threads > 0 {
		args = append(args, "-t", fmt.Sprintf("%d", a.threads))
	}

	start := time.Now()
	out, err := exec.CommandContext(ctx, whisperPath, args...).Output()
	duration := time.Since(start)

	if err != nil {
		log.Warn().Dur("duration", duration).Err(err).Msg("whisper-cli failed")
		return analysis.TranscriptionResult{}, provider.Transient(fmt.Errorf("whisper-cli: %w", err))
	}

	text := strings.TrimSpace(string(out))
	log.Debug().Dur("duration", duration).Int("audio_bytes", len(audio)).Msg("local transcription complete")
	return analysis.TranscriptionResult{Text: text, Language: a.language}, nil
}
