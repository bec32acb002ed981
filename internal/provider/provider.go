// Package provider holds the registry of known AI vendors and the shared
// error taxonomy adapters use to report failures.
package provider

// Provider describes a transcription/LLM vendor known to the system.
type Provider interface {
	Name() string
	RequiresAPIKey() bool
	SupportsTranscription() bool
	SupportsStreaming() bool
	SupportsLLM() bool
	DefaultTranscriptionModel() string
	DefaultLLMModel() string
}

// EndpointConfig holds HTTP/WebSocket endpoint configuration.
type EndpointConfig struct {
	BaseURL string // e.g. "https://api.groq.com/openai/v1" or "wss://api.deepgram.com"
	Path    string // e.g. "/v1/listen"
}

var registry = make(map[string]Provider)

func init() {
	Register(&OpenAIProvider{})
	Register(&GroqProvider{})
	Register(&OpenRouterProvider{})
	Register(&DeepgramProvider{})
	Register(&WhisperCppProvider{})
}

// Register adds a provider to the registry.
func Register(p Provider) {
	registry[p.Name()] = p
}

// Get returns a provider by name, or nil if not found.
func Get(name string) Provider {
	return registry[name]
}

// List returns all registered provider names.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// ListTranscription returns providers that support transcription.
func ListTranscription() []string {
	var names []string
	for name, p := range registry {
		if p.SupportsTranscription() {
			names = append(names, name)
		}
	}
	return names
}

// ListStreaming returns providers that support live streaming transcription.
func ListStreaming() []string {
	var names []string
	for name, p := range registry {
		if p.SupportsStreaming() {
			names = append(names, name)
		}
	}
	return names
}

// ListLLM returns providers that support LLM analysis.
func ListLLM() []string {
	var names []string
	for name, p := range registry {
		if p.SupportsLLM() {
			names = append(names, name)
		}
	}
	return names
}
