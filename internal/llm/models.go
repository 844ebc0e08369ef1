package llm

import "strings"

// Model IDs the app selects by default.
const (
	modelClaudeSonnet = "claude-sonnet-4-5-20250929"
	modelClaudeHaiku  = "claude-haiku-4-5-20251001"
	modelClaudeOpus   = "claude-opus-4-1-20250805"
	modelGPT4o        = "gpt-4o"
	modelGPT4oMini    = "gpt-4o-mini"
	modelGeminiFlash  = "gemini-2.5-flash"
	modelGeminiPro    = "gemini-2.5-pro"
	modelGeminiImage  = "gemini-2.5-flash-image"
	modelDallE3       = "dall-e-3"
)

// modelAliases maps the short names accepted in STUDYPLAN_*_MODEL to API
// model IDs. Names not listed are sent as given.
var modelAliases = map[string]string{
	"claude-sonnet": modelClaudeSonnet,
	"claude-haiku":  modelClaudeHaiku,
	"claude-opus":   modelClaudeOpus,
	"gemini-flash":  modelGeminiFlash,
	"gemini-pro":    modelGeminiPro,
	"gemini-image":  modelGeminiImage,
}

// resolveModel returns the API model ID for a configured name.
func resolveModel(name string) string {
	if id, ok := modelAliases[name]; ok {
		return id
	}
	return name
}

// upstreamModel strips an OpenRouter vendor prefix, so
// "google/gemini-2.5-flash" becomes "gemini-2.5-flash".
func upstreamModel(id string) string {
	if _, after, ok := strings.Cut(id, "/"); ok {
		return after
	}
	return id
}
