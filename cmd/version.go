package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyplan/internal/store"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the current version",
	Annotations: public,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "studyplan %s (schema %s)\n", version, store.SchemaVersion)
	},
}
