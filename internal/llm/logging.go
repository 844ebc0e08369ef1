package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyplan/internal/store"
)

// LoggingProvider records every call in the event log so the llm command
// can show history, token use and cost.
type LoggingProvider struct {
	inner     Provider
	vendor    string
	eventRepo store.EventRepo
}

// WithLogging wraps p so each call is appended to repo under the vendor
// name.
func WithLogging(p Provider, vendor string, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, vendor: vendor, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := l.event(ctx, start, err)
	ev.RequestBody = serializeRequest(req)
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.ResponseBody = string(resp.Content)
	}
	l.record(ctx, ev)
	return resp, err
}

// GenerateImage records cover image calls. A provider without an image
// model sends nothing, so nothing is recorded.
func (l *LoggingProvider) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	start := time.Now()
	img, err := GenerateImage(ctx, l.inner, req)
	if errors.Is(err, ErrImageUnsupported) {
		return nil, err
	}

	ev := l.event(ctx, start, err)
	ev.RequestBody = fmt.Sprintf("[image %s]\n%s\n", req.AspectRatio, req.Prompt)
	if img != nil {
		if img.Model != "" {
			ev.Model = img.Model
		}
		ev.ResponseBody = fmt.Sprintf("%s, %d bytes", img.MIMEType, len(img.Data))
	}
	l.record(ctx, ev)
	return img, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) event(ctx context.Context, start time.Time, err error) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:  l.vendor,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	return ev
}

// record stores the event. A failed write is logged and never fails the
// call.
func (l *LoggingProvider) record(ctx context.Context, ev store.LLMRequestEventData) {
	if err := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), ev); err != nil {
		zap.L().Warn("failed to record LLM call",
			zap.String("purpose", ev.Purpose),
			zap.Error(err))
	}
}

// serializeRequest renders req the way the llm view command prints it.
func serializeRequest(req Request) string {
	var b strings.Builder
	if req.Instructions != "" {
		fmt.Fprintf(&b, "[instructions]\n%s\n\n", req.Instructions)
	}
	fmt.Fprintf(&b, "[prompt]\n%s\n", req.Prompt)
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "\n[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
