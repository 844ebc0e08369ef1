package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var subjectsCmd = &cobra.Command{
	Use:     "subjects",
	Aliases: []string{"subject"},
	Short:   "List, show and delete subjects",
}

var subjectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subjects with their progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		rows, err := e.progress.Overview(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(w, "No subjects yet. Create one with `studyplan plan`.")
			return nil
		}

		fmt.Fprintf(w, "%-40s  %-32s  %5s  %8s\n", "ID", "Title", "Tasks", "Progress")
		fmt.Fprintln(w, strings.Repeat("─", 92))
		for _, r := range rows {
			fmt.Fprintf(w, "%-40s  %-32s  %5d  %7d%%\n",
				r.Subject.ID, truncate(r.Subject.Title, 32), len(r.Subject.Tasks), r.Percent)
		}
		return nil
	},
}

var subjectsShowCmd = &cobra.Command{
	Use:   "show <subject-id>",
	Short: "Show a subject's roadmap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		d, err := e.progress.Subject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSubject(cmd.OutOrStdout(), d.Subject, d.Completed, d.Results)
		return nil
	},
}

var subjectsDeleteCmd = &cobra.Command{
	Use:   "delete <subject-id>",
	Short: "Delete a subject with its progress and quiz results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to delete %s without --yes", args[0])
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.progress.DeleteSubject(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <subject-id> <task-id>",
	Short: "Mark a task done, or undo it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		done, err := e.progress.ToggleTask(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		pct, err := e.progress.Progress(ctx, args[0])
		if err != nil {
			return err
		}

		state := "not done"
		if done {
			state = "done"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is %s. Progress: %d%%\n", args[1], state, pct)
		return nil
	},
}

func init() {
	subjectsDeleteCmd.Flags().BoolP("yes", "y", false, "Confirm deletion")

	subjectsCmd.AddCommand(subjectsListCmd)
	subjectsCmd.AddCommand(subjectsShowCmd)
	subjectsCmd.AddCommand(subjectsDeleteCmd)
}
