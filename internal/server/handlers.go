package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nelsonlabs/morningreport/internal/jobs"
	"github.com/nelsonlabs/morningreport/internal/orchestrator"
	"github.com/nelsonlabs/morningreport/internal/provider"
	"github.com/nelsonlabs/morningreport/internal/store"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readAudio accepts either a multipart upload under the "file" field
// or a raw request body, capped at the configured upload limit.
func (s *Server) readAudio(c *gin.Context) ([]byte, bool) {
	limit := s.cfg.Get().Server.MaxUploadBytes

	if file, err := c.FormFile("file"); err == nil {
		if file.Size > limit {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio file too large"})
			return nil, false
		}
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
			return nil, false
		}
		defer f.Close()
		audio, err := io.ReadAll(io.LimitReader(f, limit))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
			return nil, false
		}
		return audio, true
	}

	audio, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return nil, false
	}
	if int64(len(audio)) > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio too large"})
		return nil, false
	}
	if len(audio) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty audio"})
		return nil, false
	}
	return audio, true
}

// handleAnalyzeAudio accepts audio and returns a job id immediately;
// the transcription and analysis run in the background.
func (s *Server) handleAnalyzeAudio(c *gin.Context) {
	audio, ok := s.readAudio(c)
	if !ok {
		return
	}

	id := s.tracker.Submit(func(ctx context.Context) (any, error) {
		return s.pipe.AnalyzeAudio(ctx, audio)
	})
	c.JSON(http.StatusAccepted, gin.H{"job_id": id, "status": jobs.StatusPending})
}

// handleTranscribe is the synchronous transcription endpoint.
func (s *Server) handleTranscribe(c *gin.Context) {
	audio, ok := s.readAudio(c)
	if !ok {
		return
	}

	result, providerName, err := s.pipe.Transcribe(c.Request.Context(), audio)
	if err != nil {
		s.renderPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"text":     result.Text,
		"language": result.Language,
		"provider": providerName,
	})
}

type analyzeTranscriptRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// handleAnalyzeTranscript analyzes an existing transcript synchronously.
func (s *Server) handleAnalyzeTranscript(c *gin.Context) {
	var req analyzeTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transcript is required"})
		return
	}

	result, err := s.pipe.AnalyzeTranscript(c.Request.Context(), req.Transcript, "")
	if err != nil {
		s.renderPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetJob(c *gin.Context) {
	job, err := s.tracker.Get(c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) handleListCases(c *gin.Context) {
	if s.cases == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case library disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	summaries, err := s.cases.List(limit, offset)
	if err != nil {
		s.log.Error().Err(err).Msg("case list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "case list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": summaries})
}

func (s *Server) handleGetCase(c *gin.Context) {
	if s.cases == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case library disabled"})
		return
	}
	caseRecord, err := s.cases.GetByID(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("case lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "case lookup failed"})
		return
	}
	c.JSON(http.StatusOK, caseRecord)
}

// handleListProviders reports the configured chains and which
// providers have credentials available.
func (s *Server) handleListProviders(c *gin.Context) {
	cfg := s.cfg.Get()
	type providerStatus struct {
		Name       string `json:"name"`
		Configured bool   `json:"configured"`
	}
	status := func(names []string) []providerStatus {
		out := make([]providerStatus, 0, len(names))
		for _, name := range names {
			_, hasKey := cfg.Providers[name]
			p := provider.Get(name)
			configured := hasKey || (p != nil && !p.RequiresAPIKey())
			out = append(out, providerStatus{Name: name, Configured: configured})
		}
		return out
	}
	c.JSON(http.StatusOK, gin.H{
		"transcription": status(cfg.Transcription.Providers),
		"llm":           status(cfg.LLM.Providers),
		"realtime":      cfg.Realtime.Provider,
	})
}

// renderPipelineError maps the error taxonomy onto HTTP statuses:
// client mistakes are 4xx, provider trouble is 502/503.
func (s *Server) renderPipelineError(c *gin.Context, err error) {
	switch {
	case provider.IsPermanentInput(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case provider.IsConfiguration(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case orchestrator.IsExhausted(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		s.log.Error().Err(err).Msg("pipeline error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
