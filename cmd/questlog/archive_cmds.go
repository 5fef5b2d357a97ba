package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/questlog/internal/export"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|->",
		Short: "Write the quests you can see to a YAML archive",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			a := export.Build(e.db)
			var w io.Writer = cmd.OutOrStdout()
			if args[0] != "-" {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("creating archive %s: %w", args[0], err)
				}
				defer f.Close()
				w = f
			}
			if err := export.Write(w, a); err != nil {
				return err
			}
			if args[0] != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d quests\n", len(a.Quests))
			}
			return nil
		}),
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load quests from a YAML archive, replacing quests with the same id",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening archive %s: %w", args[0], err)
			}
			defer f.Close()

			a, err := export.Read(f)
			if err != nil {
				return err
			}
			n, err := export.Import(cmd.Context(), e.db, a)
			if n > 0 {
				e.broadcaster.RefreshAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d quests\n", n)
			return nil
		}),
	}
}
