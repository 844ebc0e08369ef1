package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/llm"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testGateway(mock *llm.MockProvider) *LLMGateway {
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return fixedNow }
	return New(mock, cfg)
}

func roadmapJSON() json.RawMessage {
	return json.RawMessage(`{
		"title": " Cell Biology ",
		"summary": "Two weeks from organelles to mitosis.",
		"tasks": [
			{"id": "day1-1", "day": 1, "label": "Organelles", "description": "Learn the parts of a cell."},
			{"id": "day2-1", "day": 2, "label": "Membranes", "description": "Diffusion and osmosis."}
		]
	}`)
}

func quizJSON(n int) json.RawMessage {
	type q struct {
		ID            int      `json:"id"`
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correctAnswer"`
	}
	var out struct {
		Questions []q `json:"questions"`
	}
	for i := range n {
		out.Questions = append(out.Questions, q{
			ID:            7,
			Question:      "Which organelle makes ATP?",
			Options:       []string{"Nucleus", "Mitochondrion", "Ribosome", "Golgi"},
			CorrectAnswer: i % 4,
		})
	}
	b, _ := json.Marshal(out)
	return b
}

func TestGenerateRoadmap(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: roadmapJSON()})
	g := testGateway(mock)

	exam := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	r, err := g.GenerateRoadmap(context.Background(), "Cells, membranes, mitosis", exam, "Q1. Define osmosis.")
	require.NoError(t, err)

	assert.Equal(t, "Cell Biology", r.Title)
	require.Len(t, r.Tasks, 2)
	assert.Equal(t, "Membranes", r.Tasks[1].Label)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, RoadmapSchema, req.Schema)
	msg := req.Prompt
	assert.Contains(t, msg, "Cells, membranes, mitosis")
	assert.Contains(t, msg, "EXAM DATE: 2026-03-14")
	assert.Contains(t, msg, "TODAY'S DATE: 2026-03-01")
	assert.Contains(t, msg, "Q1. Define osmosis.")
}

func TestGenerateRoadmap_NoReference(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: roadmapJSON()})
	g := testGateway(mock)

	_, err := g.GenerateRoadmap(context.Background(), "Cells", fixedNow.AddDate(0, 0, 7), "")
	require.NoError(t, err)
	assert.NotContains(t, mock.Calls[0].Prompt, "SAMPLE PAPER")
}

func TestGenerateRoadmap_Failures(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}}},
		{"malformed json", llm.MockResponse{Content: json.RawMessage(`{"title":`)}},
		{"schema mismatch", llm.MockResponse{Content: json.RawMessage(`{"title":"x","summary":"y"}`)}},
		{"no tasks", llm.MockResponse{Content: json.RawMessage(`{"title":"x","summary":"y","tasks":[]}`)}},
		{"blank title", llm.MockResponse{Content: json.RawMessage(`{"title":"  ","summary":"y","tasks":[{"id":"a","day":1,"label":"l","description":"d"}]}`)}},
		{"day zero", llm.MockResponse{Content: json.RawMessage(`{"title":"x","summary":"y","tasks":[{"id":"a","day":0,"label":"l","description":"d"}]}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGateway(llm.NewMockProvider(tt.resp))
			r, err := g.GenerateRoadmap(context.Background(), "Cells", fixedNow, "")
			require.Error(t, err)
			assert.Nil(t, r)

			var gen *apperr.GenerationError
			require.True(t, errors.As(err, &gen), "expected GenerationError, got %T", err)
			assert.Equal(t, OpRoadmap, gen.Op)
		})
	}
}

func TestGenerateQuiz(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: quizJSON(6)})
	g := testGateway(mock)

	qs, err := g.GenerateQuiz(context.Background(), "Mitochondria", "Context: Day 3")
	require.NoError(t, err)
	require.Len(t, qs, 5)
	for i, q := range qs {
		assert.Equal(t, i+1, q.ID, "questions are renumbered from 1")
		assert.Len(t, q.Options, 4)
	}

	msg := mock.Calls[0].Prompt
	assert.True(t, strings.HasPrefix(msg, `Create a quiz with 5 multiple-choice questions about "Mitochondria".`))
	assert.Contains(t, msg, "REFERENCE MATERIAL:\nContext: Day 3")
}

func TestGenerateQuiz_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few", string(quizJSON(3))},
		{"one option", `{"questions":[` + strings.Repeat(`{"id":1,"question":"q","options":["a"],"correctAnswer":0},`, 4) + `{"id":1,"question":"q","options":["a"],"correctAnswer":0}]}`},
		{"answer out of range", `{"questions":[` + strings.Repeat(`{"id":1,"question":"q","options":["a","b"],"correctAnswer":2},`, 4) + `{"id":1,"question":"q","options":["a","b"],"correctAnswer":2}]}`},
		{"root array", `[{"id":1,"question":"q","options":["a","b"],"correctAnswer":0}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGateway(llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.content)}))
			_, err := g.GenerateQuiz(context.Background(), "Cells", "")
			require.Error(t, err)
			assert.True(t, apperr.IsGeneration(err))
		})
	}
}

func TestGenerateImage(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddImage(llm.MockImage{Image: &llm.Image{MIMEType: "image/png", Data: []byte("png")}})
	g := testGateway(mock)

	uri, ok := g.GenerateImage(context.Background(), "Cell Biology")
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,cG5n", uri)

	require.Len(t, mock.ImageCalls, 1)
	assert.Contains(t, mock.ImageCalls[0].Prompt, `"Cell Biology"`)
	assert.Equal(t, "1:1", mock.ImageCalls[0].AspectRatio)
}

func TestGenerateImage_AbsenceIsNotAnError(t *testing.T) {
	tests := []struct {
		name string
		img  *llm.MockImage
	}{
		{"unsupported", nil},
		{"provider failure", &llm.MockImage{Err: errors.New("quota")}},
		{"empty data", &llm.MockImage{Image: &llm.Image{MIMEType: "image/png"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			if tt.img != nil {
				mock.AddImage(*tt.img)
			}
			uri, ok := testGateway(mock).GenerateImage(context.Background(), "History")
			assert.False(t, ok)
			assert.Empty(t, uri)
		})
	}
}

func TestSingleFlight_RejectsOverlap(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: quizJSON(5)})
	mock.Block = make(chan struct{})
	g := testGateway(mock)

	done := make(chan error, 1)
	go func() {
		_, err := g.GenerateQuiz(context.Background(), "Cells", "")
		done <- err
	}()

	require.Eventually(t, func() bool { return g.Busy(OpQuiz) }, time.Second, time.Millisecond)

	_, err := g.GenerateQuiz(context.Background(), "Cells", "")
	require.ErrorIs(t, err, ErrInFlight)
	var genErr *apperr.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, OpQuiz, genErr.Op)
	assert.Equal(t, "Couldn't generate the quiz. Please try again.", apperr.UserMessage(err))

	// Other operations are not blocked by an in-flight quiz.
	assert.False(t, g.Busy(OpRoadmap))

	close(mock.Block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, mock.CallCount(), "the rejected call never reached the provider")
	assert.False(t, g.Busy(OpQuiz))

	// Once released, the operation can run again.
	mock.AddResponse(llm.MockResponse{Content: quizJSON(5)})
	_, err = g.GenerateQuiz(context.Background(), "Cells", "")
	assert.NoError(t, err)
}

func TestSingleFlight_ReleasedOnFailure(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: errors.New("boom")},
		llm.MockResponse{Content: roadmapJSON()},
	)
	g := testGateway(mock)

	_, err := g.GenerateRoadmap(context.Background(), "Cells", fixedNow, "")
	require.Error(t, err)
	assert.False(t, g.Busy(OpRoadmap))

	_, err = g.GenerateRoadmap(context.Background(), "Cells", fixedNow, "")
	assert.NoError(t, err)
}

func TestFlightGuard_ReleaseIdempotent(t *testing.T) {
	var fg flightGuard
	release, err := fg.acquire("x")
	require.NoError(t, err)
	release()
	release()

	again, err := fg.acquire("x")
	require.NoError(t, err)
	_, err = fg.acquire("x")
	assert.ErrorIs(t, err, ErrInFlight)
	again()
}
