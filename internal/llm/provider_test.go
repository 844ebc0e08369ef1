package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestCheckOutput(t *testing.T) {
	req := Request{Schema: testSchema(), MaxTokens: 64}

	if err := checkOutput(Request{}, json.RawMessage(`plain text`), StopTruncated); err != nil {
		t.Fatalf("free text should pass unchecked, got %v", err)
	}

	err := checkOutput(req, json.RawMessage(`{"label":"Opt`), StopTruncated)
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) || maxTok.Limit != 64 {
		t.Fatalf("expected ErrMaxTokensExceeded at 64, got %v", err)
	}

	err = checkOutput(req, json.RawMessage(`{"label":"Optics"}`), StopComplete)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse for a missing day, got %v", err)
	}

	if err := checkOutput(req, json.RawMessage(`{"label":"Optics","day":3}`), StopComplete); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	first, err := mock.Generate(context.Background(), Request{Prompt: "first"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first.Content) != `{"a":1}` || first.Usage.Total() != 15 || first.Stop != StopComplete {
		t.Fatalf("unexpected first response: %+v", first)
	}

	second, err := mock.Generate(context.Background(), Request{Prompt: "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second.Content) != `{"b":2}` {
		t.Fatalf("unexpected second response: %s", second.Content)
	}

	if mock.CallCount() != 2 || mock.Calls[1].Prompt != "second" {
		t.Fatalf("calls not recorded: %+v", mock.Calls)
	}
}

func TestMockProvider_EmptyQueueIsUnavailable(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
}

func TestMockProvider_Images(t *testing.T) {
	mock := NewMockProvider()

	_, err := GenerateImage(context.Background(), mock, ImageRequest{Prompt: "cover"})
	if !errors.Is(err, ErrImageUnsupported) {
		t.Fatalf("expected ErrImageUnsupported with empty queue, got %v", err)
	}

	mock.AddImage(MockImage{Image: &Image{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}})
	img, err := GenerateImage(context.Background(), mock, ImageRequest{Prompt: "cover"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := img.DataURI(); got != "data:image/png;base64,iVBORw==" {
		t.Fatalf("unexpected data URI %q", got)
	}
	if mock.ImageCallCount() != 2 {
		t.Fatalf("expected 2 image calls, got %d", mock.ImageCallCount())
	}
}

func TestImage_DataURIDefaultsToPNG(t *testing.T) {
	img := &Image{Data: []byte{0xff, 0xd8}}
	if got := img.DataURI(); got != "data:image/png;base64,/9g=" {
		t.Fatalf("DataURI = %q", got)
	}
}

func TestMockProvider_BlockHonorsContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	mock.Block = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected unknown, got %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, PurposeQuiz)); p != PurposeQuiz {
		t.Fatalf("expected quiz, got %q", p)
	}
}

func TestTimeoutProvider_Deadline(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	mock.Block = make(chan struct{})

	p := WithTimeout(mock, 10*time.Millisecond)
	if _, err := p.Generate(context.Background(), Request{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if _, err := GenerateImage(context.Background(), p, ImageRequest{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded for image, got %v", err)
	}
}

func TestUnavailableProvider(t *testing.T) {
	p := UnavailableProvider{Reason: ErrNoProvider}
	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if !errors.Is(err, ErrNoProvider) {
		t.Error("expected the reason to be wrapped")
	}
	if _, err := GenerateImage(context.Background(), p, ImageRequest{Prompt: "x"}); !errors.Is(err, ErrImageUnsupported) {
		t.Errorf("image call = %v, want ErrImageUnsupported", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	once := RetryConfig{MaxAttempts: 1}
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic, Retry: once}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: ProviderConfig{APIKey: "sk"}, Retry: once}, false},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: ProviderConfig{APIKey: "sk"}, Retry: once}, false},
		{"key on the wrong vendor", Config{Provider: ProviderGemini, OpenAI: ProviderConfig{APIKey: "sk"}, Retry: once}, true},
		{"mock needs no key", Config{Provider: ProviderMock, Retry: once}, false},
		{"zero max attempts", Config{Provider: ProviderMock}, true},
		{"unknown provider", Config{Provider: "bard", Retry: once}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Retry.MaxAttempts != 1 {
		t.Fatalf("expected a single attempt by default, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Gemini.ImageModel != modelGeminiImage || cfg.OpenAI.ImageModel != modelDallE3 {
		t.Fatalf("unexpected image defaults: gemini=%q openai=%q", cfg.Gemini.ImageModel, cfg.OpenAI.ImageModel)
	}
	if cfg.Anthropic.ImageModel != "" {
		t.Fatalf("anthropic has no image model, got %q", cfg.Anthropic.ImageModel)
	}
	// Every default model has a price so the llm stats command can cost it.
	for _, m := range []string{cfg.Gemini.Model, cfg.OpenAI.Model, cfg.Anthropic.Model, cfg.OpenRouter.Model} {
		if LookupCost(m) == nil {
			t.Errorf("no pricing for default model %q", m)
		}
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("STUDYPLAN_LLM_PROVIDER", "OpenAI")
	t.Setenv("STUDYPLAN_OPENAI_API_KEY", "sk-env")
	t.Setenv("STUDYPLAN_OPENAI_IMAGE_MODEL", "")
	t.Setenv("STUDYPLAN_GEMINI_MODEL", "gemini-flash")
	t.Setenv("STUDYPLAN_OPENROUTER_BASE_URL", "https://proxy.example/v1")
	t.Setenv("STUDYPLAN_LLM_MAX_ATTEMPTS", "3")
	t.Setenv("STUDYPLAN_LLM_TIMEOUT", "45s")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("unexpected provider config: %q %+v", cfg.Provider, cfg.OpenAI)
	}
	if cfg.OpenAI.ImageModel != "" {
		t.Fatalf("expected image model cleared, got %q", cfg.OpenAI.ImageModel)
	}
	if cfg.Gemini.Model != "gemini-flash" {
		t.Fatalf("gemini model = %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.ImageModel != modelGeminiImage {
		t.Fatalf("unset image model should keep default, got %q", cfg.Gemini.ImageModel)
	}
	if cfg.OpenRouter.BaseURL != "https://proxy.example/v1" {
		t.Fatalf("openrouter base url = %q", cfg.OpenRouter.BaseURL)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Timeout != 45*time.Second {
		t.Fatalf("retry=%d timeout=%v", cfg.Retry.MaxAttempts, cfg.Timeout)
	}
}

func TestConfigFromEnv_IgnoresBadNumbers(t *testing.T) {
	t.Setenv("STUDYPLAN_LLM_MAX_ATTEMPTS", "zero")
	t.Setenv("STUDYPLAN_LLM_TIMEOUT", "-5s")

	cfg := ConfigFromEnv()
	if cfg.Retry.MaxAttempts != 1 || cfg.Timeout != 0 {
		t.Fatalf("retry=%d timeout=%v", cfg.Retry.MaxAttempts, cfg.Timeout)
	}
}

func TestDiscoverConfig_Order(t *testing.T) {
	for _, d := range discoveryOrder {
		t.Setenv(d.keyEnv, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected nothing discovered")
	}

	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected a provider")
	}
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "oa-key" {
		t.Fatalf("expected openai to win over openrouter, got %q", cfg.Provider)
	}
	if cfg.OpenRouter.APIKey != "" {
		t.Fatal("only the chosen vendor receives a key")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("discovered config should validate: %v", err)
	}
}
