package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one scripted Generate result. Err wins over Content.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockImage is one scripted GenerateImage result.
type MockImage struct {
	Image *Image
	Err   error
}

// MockProvider replays scripted results in order and keeps every request
// it saw. An empty text script fails with ErrProviderUnavailable; an empty
// image script behaves like a vendor without an image model.
//
// Screens and the gateway tests drive it; STUDYPLAN_LLM_PROVIDER=mock
// selects it at runtime.
type MockProvider struct {
	mu         sync.Mutex
	script     []MockResponse
	images     []MockImage
	Calls      []Request
	ImageCalls []ImageRequest

	// Block, when non-nil, parks every call until it is closed or the
	// context ends, so tests can observe a generation in flight.
	Block chan struct{}
}

// NewMockProvider returns a provider that will answer with responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{script: responses}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := m.enter(ctx, func() { m.Calls = append(m.Calls, req) }); err != nil {
		return nil, err
	}

	m.mu.Lock()
	next, ok := shift(&m.script)
	m.mu.Unlock()

	switch {
	case !ok:
		return nil, &ErrProviderUnavailable{Err: errors.New("mock response queue is empty")}
	case next.Err != nil:
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", Stop: StopComplete}, nil
}

func (m *MockProvider) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	if err := m.enter(ctx, func() { m.ImageCalls = append(m.ImageCalls, req) }); err != nil {
		return nil, err
	}

	m.mu.Lock()
	next, ok := shift(&m.images)
	m.mu.Unlock()

	if !ok {
		return nil, ErrImageUnsupported
	}
	return next.Image, next.Err
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends to the text script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, resp)
	m.mu.Unlock()
}

// AddImage appends to the image script.
func (m *MockProvider) AddImage(img MockImage) {
	m.mu.Lock()
	m.images = append(m.images, img)
	m.mu.Unlock()
}

// CallCount reports how many Generate calls were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	n := len(m.Calls)
	m.mu.Unlock()
	return n
}

// ImageCallCount reports how many GenerateImage calls were made.
func (m *MockProvider) ImageCallCount() int {
	m.mu.Lock()
	n := len(m.ImageCalls)
	m.mu.Unlock()
	return n
}

// enter records the call under the lock, then waits on Block if set.
func (m *MockProvider) enter(ctx context.Context, record func()) error {
	m.mu.Lock()
	record()
	block := m.Block
	m.mu.Unlock()

	if block == nil {
		return nil
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func shift[T any](q *[]T) (T, bool) {
	var zero T
	if len(*q) == 0 {
		return zero, false
	}
	head := (*q)[0]
	*q = (*q)[1:]
	return head, true
}
