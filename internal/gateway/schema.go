package gateway

import "github.com/abhisek/studyplan/internal/llm"

// RoadmapSchema defines the JSON schema for roadmap generation responses.
var RoadmapSchema = &llm.Schema{
	Name:        "study-roadmap",
	Description: "A day-by-day study roadmap leading up to an exam",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short name of the subject being studied",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "Two or three sentence overview of the plan",
			},
			"tasks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Identifier unique within this roadmap, e.g. day1-1",
						},
						"day": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"description": "1-based study day this task is scheduled on",
						},
						"label": map[string]any{
							"type":        "string",
							"description": "Topic or activity name, a few words",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "What to study and how, one or two sentences",
						},
					},
					"required":             []any{"id", "day", "label", "description"},
					"additionalProperties": false,
				},
				"description": "Tasks ordered by day, at least one per day until the exam",
			},
		},
		"required":             []any{"title", "summary", "tasks"},
		"additionalProperties": false,
	},
}

// QuizSchema defines the JSON schema for quiz generation responses.
// The question list is wrapped in an object because structured output
// modes require an object at the root.
var QuizSchema = &llm.Schema{
	Name:        "study-quiz",
	Description: "A set of multiple-choice questions on one topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "integer",
							"description": "1-based question number",
						},
						"question": map[string]any{
							"type":        "string",
							"description": "The question text",
						},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"description": "Answer options, usually four",
						},
						"correctAnswer": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"description": "0-indexed index of the correct option",
						},
					},
					"required":             []any{"id", "question", "options", "correctAnswer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
