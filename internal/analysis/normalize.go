package analysis

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/metrics"
)

// Alias tables per canonical field. Vendors (and the same vendor across
// prompt revisions) disagree on key naming; the first present alias wins.
var (
	titleAliases    = []string{"title", "case_title", "caseTitle"}
	chiefAliases    = []string{"chief_complaint", "chiefComplaint", "chief complaint", "presenting_complaint"}
	historyAliases  = []string{"history", "hpi", "history_of_present_illness", "historyOfPresentIllness"}
	vitalsAliases   = []string{"vitals", "vital_signs", "vitalSigns"}
	ddxAliases      = []string{"differential_diagnosis", "differentialDiagnosis", "differential_diagnoses", "differentialDiagnoses", "ddx"}
	keywordAliases  = []string{"keywords", "key_words", "tags"}
	nelsonAliases   = []string{"nelson_context", "nelsonContext"}
	conditionKeys   = []string{"condition", "disease", "diagnosis", "name"}
	reasoningKeys   = []string{"reasoning", "rationale", "justification"}
	summaryAliases  = []string{"summary", "case_summary", "caseSummary"}
	refTitleKeys    = []string{"title"}
	refURLKeys      = []string{"url", "link"}
	refSnippetKeys  = []string{"snippet", "summary", "abstract"}
	referenceLabels = []string{"references", "articles", "pubmed_articles", "pubmedArticles"}
)

// Normalize maps a vendor's raw analysis response into the canonical
// CaseAnalysis. It tolerates already-structured JSON objects, JSON encoded
// as a string (including fenced code blocks), and field-name variation
// between vendors. A field that fails to parse degrades to its zero value
// and is logged as a data-quality issue; it never fails the whole record.
func Normalize(raw string) CaseAnalysis {
	log := logging.WithComponent("normalize")
	out := Empty()

	obj, err := decodeObject(raw)
	if err != nil {
		metrics.Default.NormalizationWarnings.Inc()
		log.Warn().Err(err).Msg("analysis response is not a JSON object, returning empty case")
		return out
	}

	// Some vendors nest chief complaint / history / vitals under a summary
	// object. Merge it up before alias resolution; top-level keys win.
	if nested, ok := firstAlias(obj, summaryAliases); ok {
		if sub, ok := nested.(map[string]any); ok {
			for k, v := range sub {
				if _, exists := obj[k]; !exists {
					obj[k] = v
				}
			}
		}
	}

	out.Title = stringField(obj, titleAliases, "title", log)
	out.ChiefComplaint = stringField(obj, chiefAliases, "chief_complaint", log)
	out.History = stringField(obj, historyAliases, "history", log)
	out.Vitals = stringField(obj, vitalsAliases, "vitals", log)
	out.NelsonContext = stringField(obj, nelsonAliases, "nelson_context", log)

	if v, ok := firstAlias(obj, ddxAliases); ok {
		out.DifferentialDiagnosis = normalizeDiagnoses(v)
	}
	if v, ok := firstAlias(obj, keywordAliases); ok {
		out.Keywords = normalizeKeywords(v)
	}
	if v, ok := firstAlias(obj, referenceLabels); ok {
		out.References = normalizeReferences(v)
	}

	return out
}

// decodeObject parses raw into a JSON object, unwrapping fenced code
// blocks and one level of JSON-encoded-string indirection.
func decodeObject(raw string) (map[string]any, error) {
	s := stripFences(strings.TrimSpace(raw))

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		return obj, nil
	}

	// The whole payload may itself be a JSON string containing the object.
	var inner string
	if err := json.Unmarshal([]byte(s), &inner); err == nil {
		inner = stripFences(strings.TrimSpace(inner))
		if err := json.Unmarshal([]byte(inner), &obj); err == nil {
			return obj, nil
		}
	}

	return nil, errors.New("payload is neither a JSON object nor a JSON-encoded object string")
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func firstAlias(obj map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(obj map[string]any, aliases []string, canonical string, log zerolog.Logger) string {
	v, ok := firstAlias(obj, aliases)
	if !ok {
		return ""
	}
	s, ok := asString(v)
	if !ok {
		metrics.Default.NormalizationWarnings.Inc()
		log.Warn().Str("field", canonical).Msg("field failed to parse, degraded to empty")
		return ""
	}
	return strings.TrimSpace(s)
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64, bool:
		b, _ := json.Marshal(t)
		return string(b), true
	default:
		return "", false
	}
}

// normalizeDiagnoses accepts either bare condition-name strings or
// {condition/disease, reasoning/rationale} objects. Entries with no usable
// name are dropped, not defaulted.
func normalizeDiagnoses(v any) []DifferentialDiagnosis {
	items, ok := v.([]any)
	if !ok {
		return []DifferentialDiagnosis{}
	}
	out := make([]DifferentialDiagnosis, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			if name := strings.TrimSpace(t); name != "" {
				out = append(out, DifferentialDiagnosis{Condition: name})
			}
		case map[string]any:
			var dd DifferentialDiagnosis
			for _, key := range conditionKeys {
				if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
					dd.Condition = strings.TrimSpace(s)
					break
				}
			}
			if dd.Condition == "" {
				continue
			}
			for _, key := range reasoningKeys {
				if s, ok := t[key].(string); ok {
					dd.Reasoning = strings.TrimSpace(s)
					break
				}
			}
			out = append(out, dd)
		}
	}
	return out
}

// normalizeKeywords returns keywords deduplicated case-insensitively,
// first occurrence wins.
func normalizeKeywords(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, s)
	}
	return out
}

func normalizeReferences(v any) []Reference {
	items, ok := v.([]any)
	if !ok {
		return []Reference{}
	}
	out := make([]Reference, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var ref Reference
		for _, key := range refTitleKeys {
			if s, ok := obj[key].(string); ok {
				ref.Title = strings.TrimSpace(s)
				break
			}
		}
		for _, key := range refURLKeys {
			if s, ok := obj[key].(string); ok {
				ref.URL = strings.TrimSpace(s)
				break
			}
		}
		if ref.Title == "" && ref.URL == "" {
			continue
		}
		for _, key := range refSnippetKeys {
			if s, ok := obj[key].(string); ok {
				ref.Snippet = strings.TrimSpace(s)
				break
			}
		}
		out = append(out, ref)
	}
	return out
}
