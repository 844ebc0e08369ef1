package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Inspect quiz results",
}

var quizResultsCmd = &cobra.Command{
	Use:   "results [subject-id]",
	Short: "List the latest quiz result per task",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		all, err := e.repo.GetQuizResults(ctx)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if _, err := e.repo.GetSubject(ctx, args[0]); err != nil {
				return err
			}
		}

		w := cmd.OutOrStdout()
		subjectIDs := make([]string, 0, len(all))
		for id := range all {
			if len(args) == 0 || id == args[0] {
				subjectIDs = append(subjectIDs, id)
			}
		}
		slices.Sort(subjectIDs)
		if len(subjectIDs) == 0 {
			fmt.Fprintln(w, "No quiz results yet.")
			return nil
		}

		fmt.Fprintf(w, "%-40s  %-14s  %5s  %4s  %-6s  %s\n", "Subject", "Task", "Score", "%", "Passed", "Attempted")
		fmt.Fprintln(w, strings.Repeat("─", 96))
		for _, sid := range subjectIDs {
			byTask := all[sid]
			taskIDs := make([]string, 0, len(byTask))
			for tid := range byTask {
				taskIDs = append(taskIDs, tid)
			}
			slices.Sort(taskIDs)
			for _, tid := range taskIDs {
				r := byTask[tid]
				passed := "no"
				if r.Passed {
					passed = "yes"
				}
				fmt.Fprintf(w, "%-40s  %-14s  %2d/%-2d  %4d  %-6s  %s\n",
					sid, truncate(tid, 14), r.Score, r.Total, r.Percentage, passed,
					r.AttemptedAt.Local().Format("2006-01-02 15:04"))
			}
		}
		return nil
	},
}

func init() {
	quizCmd.AddCommand(quizResultsCmd)
}
