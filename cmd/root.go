package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyplan/internal/logging"
	"github.com/abhisek/studyplan/internal/store"
)

// annotationPublic marks commands that run without logging in.
const annotationPublic = "public"

var public = map[string]string{annotationPublic: "true"}

// errNotLoggedIn is returned by gated commands before login.
var errNotLoggedIn = errors.New("not logged in: run `studyplan login` first")

var rootCmd = &cobra.Command{
	Use:   "studyplan",
	Short: "AI study planner for exams",
	Long: "Exam Paglu: turn a syllabus and an exam date into a day-by-day study roadmap,\n" +
		"tick off tasks as you go and quiz yourself on any topic.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logDone != nil {
			logDone()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// logDone flushes and restores the global logger.
var logDone func()

// Execute runs the root command and reports errors on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYPLAN_DB env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Also write logs to stderr")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging installs the global zap logger. The TUI owns the terminal,
// so --verbose only adds a console core for subcommands.
func setupLogging(cmd *cobra.Command) error {
	cfg := logging.ConfigFromEnv()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && cmd.HasParent() {
		cfg.Verbose = true
		cfg.Console = os.Stderr
	}
	done, err := logging.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	logDone = done
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then STUDYPLAN_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// isPublic reports whether cmd or one of its parents skips the login gate.
// The root command is public because the TUI shows its own login screen.
func isPublic(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationPublic] == "true" {
			return true
		}
	}
	return !cmd.HasParent()
}
