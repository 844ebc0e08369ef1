package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyplan/internal/store"
)

var exportCmd = &cobra.Command{
	Use:         "export",
	Short:       "Export all data as JSON",
	Annotations: public,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		doc, err := e.store.Export(cmd.Context())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		out, _ := cmd.Flags().GetString("out")
		var w io.Writer = cmd.OutOrStdout()
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		if err := store.WriteDocument(w, doc); err != nil {
			return err
		}
		if out != "" && out != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d subjects to %s\n", len(doc.Subjects), out)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all data with a previous export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("import replaces all current data; pass --yes to confirm")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		doc, err := store.ReadDocument(f)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.Import(cmd.Context(), doc); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d subjects.\n", len(doc.Subjects))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Write to file instead of stdout")
	importCmd.Flags().BoolP("yes", "y", false, "Confirm replacing current data")
}
