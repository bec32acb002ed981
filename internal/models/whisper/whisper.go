// Package whisper manages local whisper.cpp model files for the
// offline transcription provider: a registry of known ggml models, a
// downloader, and resolution from model id to installed file path.
package whisper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ModelInfo describes one ggml model from the whisper.cpp releases.
type ModelInfo struct {
	ID           string // identifier (e.g. "base.en")
	Filename     string // file name (e.g. "ggml-base.en.bin")
	SizeBytes    int64  // expected size, for progress reporting
	Multilingual bool
}

var models = []ModelInfo{
	{ID: "tiny.en", Filename: "ggml-tiny.en.bin", SizeBytes: 75_000_000},
	{ID: "base.en", Filename: "ggml-base.en.bin", SizeBytes: 142_000_000},
	{ID: "small.en", Filename: "ggml-small.en.bin", SizeBytes: 466_000_000},
	{ID: "tiny", Filename: "ggml-tiny.bin", SizeBytes: 75_000_000, Multilingual: true},
	{ID: "base", Filename: "ggml-base.bin", SizeBytes: 142_000_000, Multilingual: true},
	{ID: "small", Filename: "ggml-small.bin", SizeBytes: 466_000_000, Multilingual: true},
	{ID: "medium", Filename: "ggml-medium.bin", SizeBytes: 1_500_000_000, Multilingual: true},
	{ID: "large-v3", Filename: "ggml-large-v3.bin", SizeBytes: 3_000_000_000, Multilingual: true},
}

var modelByID = func() map[string]ModelInfo {
	m := make(map[string]ModelInfo, len(models))
	for _, model := range models {
		m[model.ID] = model
	}
	return m
}()

const downloadBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// ModelsDir returns the directory model files live in.
func ModelsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "morningreport", "models"), nil
}

// List returns every known model.
func List() []ModelInfo {
	result := make([]ModelInfo, len(models))
	copy(result, models)
	return result
}

// Get returns info for a model id, or nil when unknown.
func Get(id string) *ModelInfo {
	info, ok := modelByID[id]
	if !ok {
		return nil
	}
	return &info
}

// Path returns where the model file for id lives (installed or not).
func Path(id string) (string, error) {
	info, ok := modelByID[id]
	if !ok {
		return "", fmt.Errorf("unknown whisper model %q", id)
	}
	dir, err := ModelsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, info.Filename), nil
}

// IsInstalled reports whether the model file exists and is non-empty.
func IsInstalled(id string) bool {
	path, err := Path(id)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// Resolve turns a config model_path value into a file path. Values
// containing a path separator or a .bin suffix are treated as literal
// paths; anything else is looked up as a model id in the models dir.
func Resolve(idOrPath string) (string, error) {
	if idOrPath == "" {
		return "", fmt.Errorf("no whisper model configured")
	}
	if strings.ContainsRune(idOrPath, os.PathSeparator) || strings.HasSuffix(idOrPath, ".bin") {
		return idOrPath, nil
	}
	if !IsInstalled(idOrPath) {
		return "", fmt.Errorf("whisper model %q not installed: run `reportd models download %s`", idOrPath, idOrPath)
	}
	return Path(idOrPath)
}

// ProgressFunc receives download progress.
type ProgressFunc func(downloaded, total int64)

// Download fetches a model into the models dir. The file is written to
// a temp name and renamed on completion, so a partial download never
// looks installed.
func Download(ctx context.Context, id string, onProgress ProgressFunc) error {
	info := Get(id)
	if info == nil {
		return fmt.Errorf("unknown whisper model %q", id)
	}

	dir, err := ModelsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	destPath := filepath.Join(dir, info.Filename)
	tempPath := destPath + ".downloading"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tempPath)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadBaseURL+"/"+info.Filename, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: unexpected status %s", resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = info.SizeBytes
	}

	var downloaded int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write model file: %w", werr)
			}
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(downloaded, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read download: %w", err)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	return os.Rename(tempPath, destPath)
}

// Remove deletes an installed model.
func Remove(id string) error {
	if !IsInstalled(id) {
		return fmt.Errorf("whisper model %q not installed", id)
	}
	path, err := Path(id)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
