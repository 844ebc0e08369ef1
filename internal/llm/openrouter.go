package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible chat API.
// Model IDs carry a vendor prefix ("google/gemini-2.5-flash") and are sent
// as given.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting OpenRouter.
func NewOpenRouterProvider(cfg ProviderConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	if oc.BaseURL == "" {
		oc.BaseURL = defaultOpenRouterBaseURL
	}
	oc.HTTPClient = &http.Client{Transport: appHeaders{base: http.DefaultTransport}}

	inner := newOpenAIProvider(oc, ProviderConfig{})
	inner.model = cfg.Model
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// GenerateImage always reports ErrImageUnsupported; OpenRouter has no
// images endpoint.
func (p *OpenRouterProvider) GenerateImage(context.Context, ImageRequest) (*Image, error) {
	return nil, ErrImageUnsupported
}

// appHeaders adds the attribution headers OpenRouter shows on its
// dashboard.
type appHeaders struct {
	base http.RoundTripper
}

func (h appHeaders) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", "https://github.com/abhisek/studyplan")
	r.Header.Set("X-Title", "Exam Paglu")
	return h.base.RoundTrip(r)
}
