package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider serves text through the Gemini API and, when an image
// model is configured, subject cover images too.
type GeminiProvider struct {
	client     *genai.Client
	model      string
	imageModel string
}

// NewGeminiProvider creates a provider for the Gemini Developer API.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{
		client:     client,
		model:      resolveModel(cfg.Model),
		imageModel: resolveModel(cfg.ImageModel),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	gc := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		gc.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.Instructions != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}
	if req.Schema != nil {
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = geminiSchema(req.Schema.Definition)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return nil, geminiError(err)
	}

	content := json.RawMessage(result.Text())
	stop := StopComplete
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		stop = StopTruncated
	}
	if err := checkOutput(req, content, stop); err != nil {
		return nil, err
	}

	resp := &Response{Content: content, Model: p.model, Stop: stop}
	if result.ModelVersion != "" {
		resp.Model = result.ModelVersion
	}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
		}
	}
	return resp, nil
}

// GenerateImage returns the first inline image of the first candidate.
func (p *GeminiProvider) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	if p.imageModel == "" {
		return nil, ErrImageUnsupported
	}

	gc := &genai.GenerateContentConfig{}
	if req.AspectRatio != "" {
		gc.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}
	result, err := p.client.Models.GenerateContent(ctx, p.imageModel, genai.Text(req.Prompt), gc)
	if err != nil {
		return nil, geminiError(err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, ErrEmptyImage
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &Image{
				MIMEType: part.InlineData.MIMEType,
				Data:     part.InlineData.Data,
				Model:    p.imageModel,
			}, nil
		}
	}
	return nil, ErrEmptyImage
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// geminiSchema translates the subset of JSON Schema the roadmap and quiz
// schemas use. Unknown types fall back to string.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeString}
	if t, ok := def["type"].(string); ok {
		if gt, ok := geminiTypes[t]; ok {
			s.Type = gt
		}
	}
	s.Description, _ = def["description"].(string)
	s.Required = stringList(def["required"])
	s.Enum = stringList(def["enum"])

	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if sub, ok := v.(map[string]any); ok {
				s.Properties[name] = geminiSchema(sub)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	if n, ok := def["minItems"].(int); ok {
		s.MinItems = genai.Ptr(int64(n))
	}
	if n, ok := def["maxItems"].(int); ok {
		s.MaxItems = genai.Ptr(int64(n))
	}
	return s
}

// stringList accepts the []any and []string spellings used in schema maps.
func stringList(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		var out []string
		for _, e := range vs {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// geminiError classifies failures. The SDK returns APIError by value.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyHTTP(apiErr.Code, nil, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
