// Package language validates transcription language codes. The set is
// the intersection every configured speech provider accepts, derived
// from Whisper's supported languages.
package language

// Language is a supported transcription language.
type Language struct {
	Code string // ISO 639-1 code (e.g. "en", "es")
	Name string // English name
}

// Auto means the provider detects the language itself; it is what an
// empty config value resolves to.
var Auto = Language{Code: "", Name: "Auto-detect"}

var languages = []Language{
	{Code: "ar", Name: "Arabic"},
	{Code: "zh", Name: "Chinese"},
	{Code: "cs", Name: "Czech"},
	{Code: "da", Name: "Danish"},
	{Code: "nl", Name: "Dutch"},
	{Code: "en", Name: "English"},
	{Code: "fi", Name: "Finnish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "el", Name: "Greek"},
	{Code: "he", Name: "Hebrew"},
	{Code: "hi", Name: "Hindi"},
	{Code: "hu", Name: "Hungarian"},
	{Code: "id", Name: "Indonesian"},
	{Code: "it", Name: "Italian"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "no", Name: "Norwegian"},
	{Code: "pl", Name: "Polish"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ro", Name: "Romanian"},
	{Code: "ru", Name: "Russian"},
	{Code: "es", Name: "Spanish"},
	{Code: "sv", Name: "Swedish"},
	{Code: "th", Name: "Thai"},
	{Code: "tr", Name: "Turkish"},
	{Code: "uk", Name: "Ukrainian"},
	{Code: "vi", Name: "Vietnamese"},
}

var codeIndex = func() map[string]Language {
	m := make(map[string]Language, len(languages)+1)
	m[""] = Auto
	for _, lang := range languages {
		m[lang.Code] = lang
	}
	return m
}()

// FromCode returns the Language for the given code, or Auto when the
// code is unknown.
func FromCode(code string) Language {
	if lang, ok := codeIndex[code]; ok {
		return lang
	}
	return Auto
}

// IsValidCode reports whether the code is recognized. The empty string
// is valid and means auto-detect.
func IsValidCode(code string) bool {
	_, ok := codeIndex[code]
	return ok
}

// List returns all supported languages, excluding Auto.
func List() []Language {
	result := make([]Language, len(languages))
	copy(result, languages)
	return result
}

// Codes returns all supported language codes, excluding auto-detect.
func Codes() []string {
	codes := make([]string, len(languages))
	for i, lang := range languages {
		codes[i] = lang.Code
	}
	return codes
}

// deepgramLocales maps bare ISO codes to the locale-qualified tags
// Deepgram expects where they differ.
var deepgramLocales = map[string]string{
	"en": "en-US",
	"pt": "pt-BR",
	"zh": "zh-CN",
}

// ToProviderFormat converts a validated language code into the form a
// specific provider wants. OpenAI-compatible APIs take bare ISO codes
// and treat empty as auto-detect; whisper.cpp wants an explicit
// "auto"; Deepgram wants locale tags for some languages.
func ToProviderFormat(code, providerName string) string {
	switch providerName {
	case "whisper-cpp":
		if code == "" {
			return "auto"
		}
		return code
	case "deepgram":
		if locale, ok := deepgramLocales[code]; ok {
			return locale
		}
		return code
	default:
		return code
	}
}
