// Package gateway turns LLM provider calls into roadmaps, cover images and
// quizzes. Every failure is reported as an *apperr.GenerationError, and each
// operation admits a single in-flight call.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/llm"
	"github.com/abhisek/studyplan/internal/roadmap"
)

// Operation names used for GenerationError.Op and the in-flight guard.
const (
	OpRoadmap = "roadmap"
	OpImage   = "image"
	OpQuiz    = "quiz"
)

// Roadmap is a generated study plan before it becomes a Subject.
type Roadmap struct {
	Title   string              `json:"title"`
	Summary string              `json:"summary"`
	Tasks   []roadmap.StudyTask `json:"tasks"`
}

// Gateway is the AI generation boundary used by the planner and the quiz
// engine.
type Gateway interface {
	// GenerateRoadmap builds a day-by-day plan for syllabus ending at
	// examDate. referenceText may be empty.
	GenerateRoadmap(ctx context.Context, syllabus string, examDate time.Time, referenceText string) (*Roadmap, error)

	// GenerateImage returns a cover image as a data URI. ok is false when no
	// image is available, which is not an error.
	GenerateImage(ctx context.Context, subjectTitle string) (dataURI string, ok bool)

	// GenerateQuiz returns a fixed-size question set for topic.
	GenerateQuiz(ctx context.Context, topic, referenceText string) ([]roadmap.Question, error)
}

// Config controls generation limits.
type Config struct {
	// QuizSize is the number of questions per quiz.
	QuizSize int

	// RoadmapMaxTokens is the token budget for a roadmap response.
	RoadmapMaxTokens int

	// QuizMaxTokens is the token budget for a quiz response.
	QuizMaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// ImageAspectRatio is passed to image-capable providers.
	ImageAspectRatio string

	// Now supplies today's date for the roadmap prompt.
	Now func() time.Time
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{
		QuizSize:         roadmap.QuizSize,
		RoadmapMaxTokens: 8192,
		QuizMaxTokens:    2048,
		Temperature:      0.7,
		ImageAspectRatio: "1:1",
		Now:              time.Now,
	}
}

// LLMGateway implements Gateway on top of an llm.Provider.
type LLMGateway struct {
	provider llm.Provider
	config   Config
	flights  flightGuard
}

var _ Gateway = (*LLMGateway)(nil)

// New creates an LLMGateway. Zero-valued config fields take their
// DefaultConfig values.
func New(provider llm.Provider, cfg Config) *LLMGateway {
	def := DefaultConfig()
	if cfg.QuizSize <= 0 {
		cfg.QuizSize = def.QuizSize
	}
	if cfg.RoadmapMaxTokens <= 0 {
		cfg.RoadmapMaxTokens = def.RoadmapMaxTokens
	}
	if cfg.QuizMaxTokens <= 0 {
		cfg.QuizMaxTokens = def.QuizMaxTokens
	}
	if cfg.ImageAspectRatio == "" {
		cfg.ImageAspectRatio = def.ImageAspectRatio
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	return &LLMGateway{provider: provider, config: cfg}
}

// Busy reports whether a call for op is in flight.
func (g *LLMGateway) Busy(op string) bool {
	return g.flights.busy(op)
}

// GenerateRoadmap implements Gateway.
func (g *LLMGateway) GenerateRoadmap(ctx context.Context, syllabus string, examDate time.Time, referenceText string) (*Roadmap, error) {
	release, err := g.flights.acquire(OpRoadmap)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx = llm.WithPurpose(ctx, llm.PurposeRoadmap)
	req := llm.Request{
		Instructions: roadmapSystemPrompt,
		Prompt:       buildRoadmapMessage(syllabus, examDate, g.config.Now(), referenceText),
		Schema:       RoadmapSchema,
		MaxTokens:    g.config.RoadmapMaxTokens,
		Temperature:  g.config.Temperature,
	}

	var out Roadmap
	if err := g.generate(ctx, req, &out); err != nil {
		return nil, &apperr.GenerationError{Op: OpRoadmap, Err: err}
	}
	if err := checkRoadmap(&out); err != nil {
		return nil, &apperr.GenerationError{Op: OpRoadmap, Err: err}
	}
	return &out, nil
}

// GenerateQuiz implements Gateway.
func (g *LLMGateway) GenerateQuiz(ctx context.Context, topic, referenceText string) ([]roadmap.Question, error) {
	release, err := g.flights.acquire(OpQuiz)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx = llm.WithPurpose(ctx, llm.PurposeQuiz)
	req := llm.Request{
		Instructions: quizSystemPrompt,
		Prompt:       buildQuizMessage(topic, referenceText, g.config.QuizSize),
		Schema:       QuizSchema,
		MaxTokens:    g.config.QuizMaxTokens,
		Temperature:  g.config.Temperature,
	}

	var out struct {
		Questions []roadmap.Question `json:"questions"`
	}
	if err := g.generate(ctx, req, &out); err != nil {
		return nil, &apperr.GenerationError{Op: OpQuiz, Err: err}
	}
	questions, err := checkQuiz(out.Questions, g.config.QuizSize)
	if err != nil {
		return nil, &apperr.GenerationError{Op: OpQuiz, Err: err}
	}
	return questions, nil
}

// GenerateImage implements Gateway. Failures are logged and reported as
// absence.
func (g *LLMGateway) GenerateImage(ctx context.Context, subjectTitle string) (string, bool) {
	log := zap.L().With(zap.String("op", OpImage), zap.String("subject", subjectTitle))

	release, err := g.flights.acquire(OpImage)
	if err != nil {
		log.Warn("cover image skipped", zap.Error(err))
		return "", false
	}
	defer release()

	ctx = llm.WithPurpose(ctx, llm.PurposeImage)
	img, err := llm.GenerateImage(ctx, g.provider, llm.ImageRequest{
		Prompt:      buildImagePrompt(subjectTitle),
		AspectRatio: g.config.ImageAspectRatio,
	})
	switch {
	case errors.Is(err, llm.ErrImageUnsupported):
		log.Debug("provider has no image capability", zap.String("model", g.provider.ModelID()))
		return "", false
	case err != nil:
		log.Warn("cover image generation failed", zap.Error(err))
		return "", false
	case img == nil || len(img.Data) == 0:
		log.Warn("cover image generation returned no data")
		return "", false
	}
	return img.DataURI(), true
}

// generate runs req and decodes the validated response into out.
func (g *LLMGateway) generate(ctx context.Context, req llm.Request, out any) error {
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("LLM generation failed: %w", err)
	}
	if err := llm.ValidateJSON(req.Schema, resp.Content); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return nil
}
