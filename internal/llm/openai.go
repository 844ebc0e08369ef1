package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates text through Chat Completions and cover images
// through the images endpoint. OpenRouter reuses it with another base URL.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	imageModel string
}

// NewOpenAIProvider creates a provider for the OpenAI API or any
// compatible endpoint named by cfg.BaseURL.
func NewOpenAIProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return newOpenAIProvider(oc, cfg), nil
}

func newOpenAIProvider(oc openai.ClientConfig, cfg ProviderConfig) *OpenAIProvider {
	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(oc),
		model:      resolveModel(cfg.Model),
		imageModel: cfg.ImageModel,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            openAIMessages(req),
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("response had no choices")}
	}

	choice := resp.Choices[0]
	content := json.RawMessage(choice.Message.Content)
	stop := StopComplete
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopTruncated
	}
	if err := checkOutput(req, content, stop); err != nil {
		return nil, err
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Model: resp.Model,
		Stop:  stop,
	}, nil
}

// GenerateImage requests one base64 PNG from the images endpoint.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	if p.imageModel == "" {
		return nil, ErrImageUnsupported
	}

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          p.imageModel,
		N:              1,
		Size:           openAIImageSize(req.AspectRatio),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, openAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("decode image payload: %w", err)}
	}
	return &Image{MIMEType: "image/png", Data: data, Model: p.imageModel}, nil
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

// openAIImageSize picks the dall-e-3 size closest to the aspect ratio.
func openAIImageSize(aspect string) string {
	switch aspect {
	case "16:9", "3:2", "4:3":
		return openai.CreateImageSize1792x1024
	case "9:16", "2:3", "3:4":
		return openai.CreateImageSize1024x1792
	}
	return openai.CreateImageSize1024x1024
}

func openAIMessages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if req.Instructions != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	return append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
}

// openAIError classifies API failures. APIError carries a decoded error
// body; RequestError covers responses that had none.
func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyHTTP(apiErr.HTTPStatusCode, nil, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyHTTP(reqErr.HTTPStatusCode, nil, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
