package llm

// systemPrompt instructs the model to return the case analysis as strict
// JSON matching the canonical schema. Key names here are the primary
// aliases the normalizer resolves; models that drift to other spellings
// are still handled downstream.
const systemPrompt = `You are a pediatric expert assistant. Analyze the following morning report case transcript.
Return a valid JSON object with the following structure:
{
    "title": "string (a suitable title for the case)",
    "chief_complaint": "string",
    "history": "string",
    "vitals": "string",
    "differential_diagnosis": [{"condition": "string", "reasoning": "string"}, ...],
    "keywords": ["string", ...],
    "nelson_context": "string (summary of the condition from Nelson Textbook of Pediatrics context)"
}
Ensure the JSON is valid and strictly follows this schema.`

// BuildUserPrompt wraps the transcript for the user turn.
func BuildUserPrompt(transcript string) string {
	return transcript
}
