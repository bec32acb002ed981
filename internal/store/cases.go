package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nelsonlabs/morningreport/internal/analysis"
)

// ErrNotFound is returned when a case id does not exist.
var ErrNotFound = errors.New("case not found")

// Case is a persisted analyzed case.
type Case struct {
	ID                    string                `json:"id"`
	CreatedAt             time.Time             `json:"created_at"`
	Title                 string                `json:"title"`
	Transcript            string                `json:"transcript"`
	TranscriptionProvider string                `json:"transcription_provider"`
	LLMProvider           string                `json:"llm_provider"`
	Analysis              analysis.CaseAnalysis `json:"analysis"`
}

// CaseSummary is the list view of a case, without the full payload.
type CaseSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
}

// CaseStore handles case persistence.
type CaseStore struct {
	db *Database
}

// NewCaseStore creates a case store backed by db.
func NewCaseStore(db *Database) *CaseStore {
	return &CaseStore{db: db}
}

// Insert stores a case, assigning an id and timestamp when missing,
// and returns the stored record.
func (s *CaseStore) Insert(c Case) (Case, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Title == "" {
		c.Title = c.Analysis.Title
	}

	analysisJSON, err := json.Marshal(c.Analysis)
	if err != nil {
		return Case{}, fmt.Errorf("serialize analysis: %w", err)
	}

	_, err = s.db.DB().Exec(`
		INSERT INTO cases (id, created_at, title, transcript, transcription_provider, llm_provider, analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CreatedAt, c.Title, c.Transcript, c.TranscriptionProvider, c.LLMProvider, string(analysisJSON),
	)
	if err != nil {
		return Case{}, fmt.Errorf("insert case: %w", err)
	}
	return c, nil
}

// GetByID retrieves a single case.
func (s *CaseStore) GetByID(id string) (Case, error) {
	row := s.db.DB().QueryRow(`
		SELECT id, created_at, title, transcript, transcription_provider, llm_provider, analysis
		FROM cases WHERE id = ?`, id)

	var c Case
	var analysisJSON string
	err := row.Scan(&c.ID, &c.CreatedAt, &c.Title, &c.Transcript, &c.TranscriptionProvider, &c.LLMProvider, &analysisJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	if err != nil {
		return Case{}, fmt.Errorf("query case: %w", err)
	}
	if err := json.Unmarshal([]byte(analysisJSON), &c.Analysis); err != nil {
		return Case{}, fmt.Errorf("decode analysis: %w", err)
	}
	return c, nil
}

// List returns case summaries, newest first.
func (s *CaseStore) List(limit, offset int) ([]CaseSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.DB().Query(`
		SELECT id, created_at, title FROM cases
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	summaries := []CaseSummary{}
	for rows.Next() {
		var s CaseSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Title); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return summaries, nil
}

// Count returns the number of stored cases.
func (s *CaseStore) Count() (int64, error) {
	var n int64
	if err := s.db.DB().QueryRow(`SELECT COUNT(*) FROM cases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cases: %w", err)
	}
	return n, nil
}
