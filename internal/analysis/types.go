// Package analysis defines the canonical result shapes every provider's
// output is normalized into before leaving the AI layer.
package analysis

// TranscriptionResult is the canonical output of one completed
// transcription attempt, regardless of vendor.
type TranscriptionResult struct {
	Text       string  `json:"text"`
	Language   string  `json:"language,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// DifferentialDiagnosis is one entry of a ranked differential.
type DifferentialDiagnosis struct {
	Condition string `json:"condition"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Reference is a literature citation attached during enrichment.
type Reference struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// CaseAnalysis is the canonical clinical summary of one morning-report
// case. Downstream consumers depend only on this shape, never on a
// vendor's native response schema. After normalization every field is
// present; empty strings and empty lists are permitted, absence is not.
type CaseAnalysis struct {
	Title                 string                  `json:"title"`
	ChiefComplaint        string                  `json:"chief_complaint"`
	History               string                  `json:"history"`
	Vitals                string                  `json:"vitals"`
	DifferentialDiagnosis []DifferentialDiagnosis `json:"differential_diagnosis"`
	Keywords              []string                `json:"keywords"`
	NelsonContext         string                  `json:"nelson_context"`
	References            []Reference             `json:"references"`
}

// Empty returns a CaseAnalysis with all collection fields allocated, so a
// marshalled zero case still carries every canonical field.
func Empty() CaseAnalysis {
	return CaseAnalysis{
		DifferentialDiagnosis: []DifferentialDiagnosis{},
		Keywords:              []string{},
		References:            []Reference{},
	}
}
