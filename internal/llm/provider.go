package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured content from a single prompt.
type Provider interface {
	// Generate runs req and returns its output. When req.Schema is set the
	// provider asks for JSON through its native structured-output mode and
	// the returned Content has already been validated against the schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID names the text model requests are sent to.
	ModelID() string
}

// Request is one generation call. Roadmaps and quizzes are produced in a
// single turn, so there is no conversation history.
type Request struct {
	// Instructions is the system prompt.
	Instructions string

	// Prompt is the user turn.
	Prompt string

	// Schema constrains the output to JSON of this shape. Nil means free
	// text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is a kebab-case identifier, e.g. "study-roadmap". OpenAI requires
	// it and the validator uses it as part of its cache key.
	Name string

	// Description is sent along with the schema where the API accepts one.
	Description string

	// Definition is the schema itself as decoded JSON.
	Definition map[string]any
}

// StopReason says why the model stopped producing output.
type StopReason string

const (
	StopComplete  StopReason = "end"
	StopTruncated StopReason = "max_tokens"
)

// Response is the output of a Generate call.
type Response struct {
	// Content is the schema-valid JSON document, or the raw text when the
	// request had no schema.
	Content json.RawMessage

	Usage Usage

	// Model is the model that served the request as reported by the API.
	Model string

	Stop StopReason
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// checkOutput applies the checks every provider shares once the API call
// has returned: a schema-bound response must be complete and must match
// the schema.
func checkOutput(req Request, content json.RawMessage, stop StopReason) error {
	if req.Schema == nil {
		return nil
	}
	if stop == StopTruncated {
		return &ErrMaxTokensExceeded{Limit: req.MaxTokens, Content: content}
	}
	return validateResponse(req.Schema, content)
}
