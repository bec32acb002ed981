package provider

// Provider name constants for config and registry.
const (
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderOpenRouter = "openrouter"
	ProviderDeepgram   = "deepgram"
	ProviderWhisperCpp = "whisper-cpp"
)

// Environment variable names for API keys.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvGroqKey       = "GROQ_API_KEY"
	EnvOpenRouterKey = "OPENROUTER_API_KEY"
	EnvDeepgramKey   = "DEEPGRAM_API_KEY"
)

// EnvVarForProvider returns the environment variable name for a provider's API key.
func EnvVarForProvider(name string) string {
	switch name {
	case ProviderOpenAI:
		return EnvOpenAIKey
	case ProviderGroq:
		return EnvGroqKey
	case ProviderOpenRouter:
		return EnvOpenRouterKey
	case ProviderDeepgram:
		return EnvDeepgramKey
	default:
		return ""
	}
}

// OpenAIProvider is the hosted OpenAI API (Whisper transcription + GPT analysis).
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string                      { return ProviderOpenAI }
func (p *OpenAIProvider) RequiresAPIKey() bool              { return true }
func (p *OpenAIProvider) SupportsTranscription() bool       { return true }
func (p *OpenAIProvider) SupportsStreaming() bool           { return false }
func (p *OpenAIProvider) SupportsLLM() bool                 { return true }
func (p *OpenAIProvider) DefaultTranscriptionModel() string { return "whisper-1" }
func (p *OpenAIProvider) DefaultLLMModel() string           { return "gpt-4o-mini" }

// GroqProvider is Groq's OpenAI-compatible API (Whisper transcription + Llama analysis).
type GroqProvider struct{}

func (p *GroqProvider) Name() string                      { return ProviderGroq }
func (p *GroqProvider) RequiresAPIKey() bool              { return true }
func (p *GroqProvider) SupportsTranscription() bool       { return true }
func (p *GroqProvider) SupportsStreaming() bool           { return false }
func (p *GroqProvider) SupportsLLM() bool                 { return true }
func (p *GroqProvider) DefaultTranscriptionModel() string { return "whisper-large-v3-turbo" }
func (p *GroqProvider) DefaultLLMModel() string           { return "llama-3.3-70b-versatile" }

// OpenRouterProvider is the OpenRouter gateway (LLM analysis only).
type OpenRouterProvider struct{}

func (p *OpenRouterProvider) Name() string                      { return ProviderOpenRouter }
func (p *OpenRouterProvider) RequiresAPIKey() bool              { return true }
func (p *OpenRouterProvider) SupportsTranscription() bool       { return false }
func (p *OpenRouterProvider) SupportsStreaming() bool           { return false }
func (p *OpenRouterProvider) SupportsLLM() bool                 { return true }
func (p *OpenRouterProvider) DefaultTranscriptionModel() string { return "" }
func (p *OpenRouterProvider) DefaultLLMModel() string           { return "qwen/qwen2.5-72b-instruct" }

// DeepgramProvider is Deepgram's streaming transcription API.
type DeepgramProvider struct{}

func (p *DeepgramProvider) Name() string                      { return ProviderDeepgram }
func (p *DeepgramProvider) RequiresAPIKey() bool              { return true }
func (p *DeepgramProvider) SupportsTranscription() bool       { return true }
func (p *DeepgramProvider) SupportsStreaming() bool           { return true }
func (p *DeepgramProvider) SupportsLLM() bool                 { return false }
func (p *DeepgramProvider) DefaultTranscriptionModel() string { return "nova-3" }
func (p *DeepgramProvider) DefaultLLMModel() string           { return "" }

// WhisperCppProvider is local whisper.cpp transcription (no API key, no network).
type WhisperCppProvider struct{}

func (p *WhisperCppProvider) Name() string                      { return ProviderWhisperCpp }
func (p *WhisperCppProvider) RequiresAPIKey() bool              { return false }
func (p *WhisperCppProvider) SupportsTranscription() bool       { return true }
func (p *WhisperCppProvider) SupportsStreaming() bool           { return false }
func (p *WhisperCppProvider) SupportsLLM() bool                 { return false }
func (p *WhisperCppProvider) DefaultTranscriptionModel() string { return "ggml-base.en.bin" }
func (p *WhisperCppProvider) DefaultLLMModel() string           { return "" }
