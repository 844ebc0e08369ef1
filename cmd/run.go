package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyplan/internal/app"
	"github.com/abhisek/studyplan/internal/gateway"
	"github.com/abhisek/studyplan/internal/quiz"
	"github.com/abhisek/studyplan/internal/screens"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	gw := e.gateway(ctx)

	policy := quiz.LockFirstAnswer
	if reselect, _ := cmd.Flags().GetBool("allow-reselect"); reselect {
		policy = quiz.AllowReselect
	}

	return app.Run(ctx, app.Options{
		Services: &screens.Services{
			Auth:     e.auth,
			Planner:  e.planner(gw),
			Progress: e.progress,
			Quiz:     gw,
			Results:  e.repo,
			Policy:   policy,
		},
		Busy: func() bool {
			return gw.Busy(gateway.OpRoadmap) || gw.Busy(gateway.OpQuiz) || gw.Busy(gateway.OpImage)
		},
	})
}

func init() {
	rootCmd.Flags().Bool("allow-reselect", false, "Let quiz answers be changed before submitting")
}
