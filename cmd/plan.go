package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyplan/internal/planner"
	"github.com/abhisek/studyplan/internal/roadmap"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a study roadmap from a syllabus",
	Example: `  studyplan plan --syllabus-file physics.txt --exam-date 2030-06-01
  studyplan plan --syllabus "Kinematics, dynamics" --exam-date 2030-06-01 --reference-file paper.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := planInputFromFlags(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		fmt.Fprintln(cmd.ErrOrStderr(), "Generating roadmap...")
		sub, err := e.planner(e.gateway(ctx)).CreatePlan(ctx, in)
		if err != nil {
			return err
		}

		printSubject(cmd.OutOrStdout(), sub, roadmap.NewCompletedSet(), nil)
		return nil
	},
}

// planInputFromFlags reads syllabus text and files into a PlanInput.
func planInputFromFlags(cmd *cobra.Command) (planner.PlanInput, error) {
	text, _ := cmd.Flags().GetString("syllabus")
	sylFile, _ := cmd.Flags().GetString("syllabus-file")
	refFile, _ := cmd.Flags().GetString("reference-file")
	date, _ := cmd.Flags().GetString("exam-date")

	parts := []string{strings.TrimSpace(text)}
	if sylFile != "" {
		s, err := planner.ReadInputFile(sylFile)
		if err != nil {
			return planner.PlanInput{}, err
		}
		parts = append(parts, s)
	}

	var ref string
	if refFile != "" {
		s, err := planner.ReadInputFile(refFile)
		if err != nil {
			return planner.PlanInput{}, err
		}
		ref = s
	}

	return planner.PlanInput{
		Syllabus:      strings.TrimSpace(strings.Join(parts, "\n\n")),
		ExamDate:      date,
		ReferenceText: ref,
	}, nil
}

// printSubject writes a subject's roadmap with completion marks and the
// latest quiz result per task.
func printSubject(w io.Writer, sub roadmap.Subject, done roadmap.CompletedSet, results map[string]roadmap.QuizResult) {
	fmt.Fprintf(w, "%s  (%s)\n", sub.Title, sub.ID)
	if sub.Summary != "" {
		fmt.Fprintln(w, sub.Summary)
	}
	fmt.Fprintf(w, "Progress: %d%%\n\n", roadmap.ComputeProgress(sub, done))

	for _, t := range sub.Tasks {
		mark := " "
		if done.Has(t.ID) {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] Day %-3d %-12s %s", mark, t.Day, t.ID, t.Label)
		if res, ok := results[t.ID]; ok {
			line += fmt.Sprintf("   quiz %d/%d (%d%%)", res.Score, res.Total, res.Percentage)
		}
		fmt.Fprintln(w, line)
	}
}

func init() {
	planCmd.Flags().String("syllabus", "", "Syllabus text")
	planCmd.Flags().String("syllabus-file", "", "Plain-text syllabus file")
	planCmd.Flags().String("exam-date", "", "Exam date (YYYY-MM-DD)")
	planCmd.Flags().String("reference-file", "", "Optional sample paper or notes")
}
