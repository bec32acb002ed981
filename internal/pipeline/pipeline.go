// Package pipeline composes the full case-analysis flow: transcribe
// audio through the fallback chain, analyze the transcript, normalize
// the vendor output, enrich with literature references, and persist
// the finished case.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nelsonlabs/morningreport/internal/analysis"
	"github.com/nelsonlabs/morningreport/internal/llm"
	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/orchestrator"
	"github.com/nelsonlabs/morningreport/internal/store"
	"github.com/nelsonlabs/morningreport/internal/transcriber"
)

// Enricher supplies literature references for analysis keywords.
// Implementations must be best-effort and never block the pipeline on
// failure.
type Enricher interface {
	Enrich(ctx context.Context, keywords []string) []analysis.Reference
}

// Result is the outcome of a full pipeline run.
type Result struct {
	CaseID                string                `json:"case_id,omitempty"`
	Transcript            string                `json:"transcript"`
	TranscriptionProvider string                `json:"transcription_provider,omitempty"`
	LLMProvider           string                `json:"llm_provider"`
	Analysis              analysis.CaseAnalysis `json:"analysis"`
}

// Pipeline wires the stages together. The enricher and case store are
// optional: a nil enricher skips references, a nil store skips
// persistence.
type Pipeline struct {
	transcribers *orchestrator.Chain[transcriber.BatchAdapter]
	llms         *orchestrator.Chain[llm.Adapter]
	enricher     Enricher
	cases        *store.CaseStore
	log          zerolog.Logger
}

// New assembles a pipeline from its stages.
func New(transcribers *orchestrator.Chain[transcriber.BatchAdapter], llms *orchestrator.Chain[llm.Adapter], enricher Enricher, cases *store.CaseStore) *Pipeline {
	return &Pipeline{
		transcribers: transcribers,
		llms:         llms,
		enricher:     enricher,
		cases:        cases,
		log:          logging.WithComponent("pipeline"),
	}
}

// Transcribe runs audio through the transcription chain and returns
// the result plus the name of the provider that produced it.
func (p *Pipeline) Transcribe(ctx context.Context, audio []byte) (analysis.TranscriptionResult, string, error) {
	if p.transcribers == nil {
		return analysis.TranscriptionResult{}, "", fmt.Errorf("no transcription chain configured")
	}
	return orchestrator.Execute(ctx, p.transcribers, func(ctx context.Context, t transcriber.BatchAdapter) (analysis.TranscriptionResult, error) {
		return t.Transcribe(ctx, audio)
	})
}

// AnalyzeTranscript runs a transcript through the LLM chain, normalizes
// the raw output, attaches references, and persists the case. The
// transcriptionProvider argument is recorded on the stored case; pass
// an empty string when the transcript did not come from this service.
func (p *Pipeline) AnalyzeTranscript(ctx context.Context, transcript, transcriptionProvider string) (Result, error) {
	if p.llms == nil {
		return Result{}, fmt.Errorf("no llm chain configured")
	}

	raw, providerName, err := orchestrator.Execute(ctx, p.llms, func(ctx context.Context, a llm.Adapter) (string, error) {
		return a.Analyze(ctx, transcript)
	})
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Transcript:            transcript,
		TranscriptionProvider: transcriptionProvider,
		LLMProvider:           providerName,
		Analysis:              analysis.Normalize(raw),
	}

	if p.enricher != nil {
		if refs := p.enricher.Enrich(ctx, result.Analysis.Keywords); len(refs) > 0 {
			result.Analysis.References = refs
		}
	}

	if err := p.persist(&result); err != nil {
		// The analysis itself succeeded; losing the library copy is
		// not worth failing the request over.
		p.log.Error().Err(err).Msg("failed to persist case")
	}
	return result, nil
}

// AnalyzeAudio is the full flow: transcription then analysis.
func (p *Pipeline) AnalyzeAudio(ctx context.Context, audio []byte) (Result, error) {
	tr, providerName, err := p.Transcribe(ctx, audio)
	if err != nil {
		return Result{}, err
	}
	return p.AnalyzeTranscript(ctx, tr.Text, providerName)
}

func (p *Pipeline) persist(result *Result) error {
	if p.cases == nil {
		return nil
	}
	stored, err := p.cases.Insert(store.Case{
		Transcript:            result.Transcript,
		TranscriptionProvider: result.TranscriptionProvider,
		LLMProvider:           result.LLMProvider,
		Analysis:              result.Analysis,
	})
	if err != nil {
		return err
	}
	result.CaseID = stored.ID
	return nil
}
