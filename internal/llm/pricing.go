package llm

import "github.com/abhisek/studyplan/internal/store"

// ModelCost is the list price of a model in USD. Text models are billed
// per million tokens, image models per generated image.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
	PerImage      float64
}

// Cost estimates the spend recorded in u. Only successful calls produce
// an image, so PerImage is charged on u.Succeeded.
func (c ModelCost) Cost(u store.LLMUsage) float64 {
	return float64(u.InputTokens)*c.InputPerMTok/1e6 +
		float64(u.OutputTokens)*c.OutputPerMTok/1e6 +
		float64(u.Succeeded)*c.PerImage
}

// LookupCost returns the price of a model, accepting configuration aliases
// and OpenRouter "vendor/model" IDs. It returns nil for unknown models.
func LookupCost(modelID string) *ModelCost {
	for _, id := range []string{resolveModel(modelID), upstreamModel(modelID)} {
		if c, ok := modelCosts[id]; ok {
			return &c
		}
	}
	return nil
}

// modelCosts covers the models reachable from DefaultConfig and the
// aliases in modelAliases. Prices as of 2026-02.
var modelCosts = map[string]ModelCost{
	modelClaudeSonnet: {InputPerMTok: 3, OutputPerMTok: 15},
	modelClaudeHaiku:  {InputPerMTok: 1, OutputPerMTok: 5},
	modelClaudeOpus:   {InputPerMTok: 15, OutputPerMTok: 75},

	modelGPT4o:     {InputPerMTok: 2.5, OutputPerMTok: 10},
	modelGPT4oMini: {InputPerMTok: 0.15, OutputPerMTok: 0.6},

	modelGeminiFlash: {InputPerMTok: 0.3, OutputPerMTok: 2.5},
	modelGeminiPro:   {InputPerMTok: 1.25, OutputPerMTok: 10},

	// 1024x1024 standard quality.
	modelDallE3: {PerImage: 0.04},
	// 1290 output tokens per image at $30 per million.
	modelGeminiImage: {InputPerMTok: 0.3, PerImage: 0.039},
}
