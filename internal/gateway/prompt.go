package gateway

import (
	"fmt"
	"strings"
	"time"
)

const roadmapSystemPrompt = `You are an expert academic advisor who builds realistic study schedules.

Rules:
- Organize the schedule by days, starting with day 1 (today) and ending on or before the exam date.
- Provide a short summary of the plan.
- Return a list of specific tasks/topics for each day until the exam date.
- Ensure the tasks are actionable and realistic.
- Give every task an id that is unique within the roadmap, e.g. "day3-2" for the second task on day 3.`

const quizSystemPrompt = `You write multiple-choice quizzes for students preparing for exams.

Rules:
- Every question has exactly one correct option.
- correctAnswer is the 0-indexed position of the correct option.
- Number questions from 1.
- Ensure the questions are challenging and relevant.`

// buildRoadmapMessage constructs the user message for roadmap generation.
func buildRoadmapMessage(syllabus string, examDate, today time.Time, reference string) string {
	var b strings.Builder

	b.WriteString("Create a structured, day-by-day study roadmap for the following syllabus.\n\n")
	b.WriteString("SYLLABUS:\n")
	b.WriteString(strings.TrimSpace(syllabus))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "EXAM DATE: %s\n", examDate.Format(time.DateOnly))
	fmt.Fprintf(&b, "TODAY'S DATE: %s\n", today.Format(time.DateOnly))

	if ref := strings.TrimSpace(reference); ref != "" {
		b.WriteString("\nI have also provided a SAMPLE PAPER/PAST QUESTIONS for reference. ")
		b.WriteString("Analyze the style, difficulty, and recurring topics in these questions to prioritize the roadmap accordingly:\n")
		b.WriteString(ref)
		b.WriteString("\n")
	}

	return b.String()
}

// buildQuizMessage constructs the user message for quiz generation.
func buildQuizMessage(topic, reference string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a quiz with %d multiple-choice questions about %q.\n", count, strings.TrimSpace(topic))

	if ref := strings.TrimSpace(reference); ref != "" {
		b.WriteString("\nUse the following reference material (past papers/notes) to influence the difficulty and style of the questions:\n\n")
		b.WriteString("REFERENCE MATERIAL:\n")
		b.WriteString(ref)
		b.WriteString("\n")
	}

	return b.String()
}

// buildImagePrompt describes the cover illustration for a subject.
func buildImagePrompt(subjectTitle string) string {
	return fmt.Sprintf("A clean, professional, and artistic 3D illustration or icon representing the academic subject: %q. "+
		"Minimalist style, vibrant colors, educational theme, high quality.", strings.TrimSpace(subjectTitle))
}
