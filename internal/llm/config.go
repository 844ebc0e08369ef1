package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted in STUDYPLAN_LLM_PROVIDER.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// discoveryOrder is the order DiscoverConfig checks vendor key variables.
// Gemini comes first because it is the only default with both structured
// output and an image model.
var discoveryOrder = []struct {
	provider string
	keyEnv   string
}{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// Config selects and configures the generation provider.
type Config struct {
	// Provider is one of the Provider* names.
	Provider string

	Gemini     ProviderConfig
	OpenAI     ProviderConfig
	Anthropic  ProviderConfig
	OpenRouter ProviderConfig

	Retry RetryConfig

	// Timeout bounds one call including retries. Zero leaves the caller's
	// context as the only limit.
	Timeout time.Duration
}

// ProviderConfig holds the settings of one vendor.
type ProviderConfig struct {
	APIKey string

	// Model is an API model ID or one of the short aliases.
	Model string

	// ImageModel generates subject cover images. Empty turns cover images
	// off. Anthropic and OpenRouter ignore it.
	ImageModel string

	// BaseURL overrides the API endpoint (OpenAI-compatible vendors only).
	BaseURL string
}

// RetryConfig controls backoff for transient failures. MaxAttempts of 1
// makes a single attempt.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the defaults for every vendor.
//
// Generation is started by the user, who gets the failure back and can try
// again, so retries are off unless MaxAttempts is raised.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderGemini,
		Gemini:     ProviderConfig{Model: "gemini-pro", ImageModel: modelGeminiImage},
		OpenAI:     ProviderConfig{Model: modelGPT4oMini, ImageModel: modelDallE3},
		Anthropic:  ProviderConfig{Model: "claude-sonnet"},
		OpenRouter: ProviderConfig{Model: "google/" + modelGeminiFlash, BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
	}
}

// vendor returns the settings for a provider name, or nil for names that
// have none.
func (c *Config) vendor(name string) *ProviderConfig {
	switch name {
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

// ConfigFromEnv overlays STUDYPLAN_* variables on DefaultConfig. Each
// vendor reads STUDYPLAN_<VENDOR>_{API_KEY,MODEL,IMAGE_MODEL,BASE_URL};
// an IMAGE_MODEL set to the empty string turns cover images off.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("STUDYPLAN_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}

	for _, d := range discoveryOrder {
		v := cfg.vendor(d.provider)
		prefix := "STUDYPLAN_" + strings.ToUpper(d.provider) + "_"
		if s := os.Getenv(prefix + "API_KEY"); s != "" {
			v.APIKey = s
		}
		if s := os.Getenv(prefix + "MODEL"); s != "" {
			v.Model = s
		}
		if s, ok := os.LookupEnv(prefix + "IMAGE_MODEL"); ok {
			v.ImageModel = s
		}
		if s := os.Getenv(prefix + "BASE_URL"); s != "" {
			v.BaseURL = s
		}
	}

	if s := os.Getenv("STUDYPLAN_LLM_MAX_ATTEMPTS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}
	if s := os.Getenv("STUDYPLAN_LLM_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

// DiscoverConfig picks the first vendor whose standard key variable
// (GEMINI_API_KEY, OPENAI_API_KEY, ...) is set. It reports false when none
// is.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, d := range discoveryOrder {
		if key := os.Getenv(d.keyEnv); key != "" {
			cfg.Provider = d.provider
			cfg.vendor(d.provider).APIKey = key
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider exists and has a key.
func (c Config) Validate() error {
	if c.Provider != ProviderMock {
		v := c.vendor(c.Provider)
		if v == nil {
			return fmt.Errorf("unknown LLM provider %q", c.Provider)
		}
		if v.APIKey == "" {
			return fmt.Errorf("STUDYPLAN_%s_API_KEY is required for the %s provider",
				strings.ToUpper(c.Provider), c.Provider)
		}
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
