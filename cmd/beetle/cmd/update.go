package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/output"
)

func newUpdateCmd() *cobra.Command {
	var indexName string
	var reindex bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an index with the target's current state",
		Long: `Apply the target folder's changes to the index.

Only files added, modified, or removed since the last update are
processed. With --reindex the index is wiped first and the whole tree is
indexed from scratch.

Examples:
  beetle update -i my-project
  beetle update -i my-project --reindex`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.cleanup()

			if reindex {
				if err := e.catalog.Reset(indexName); err != nil {
					return err
				}
			}

			stats, err := e.catalog.Update(cmd.Context(), indexName)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			out.Success("Updated index %q", indexName)
			out.Printf("  scanned: %d  added: %d  modified: %d  removed: %d  skipped: %d",
				stats.Scanned, stats.Added, stats.Modified, stats.Removed, stats.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&indexName, "index", "i", "", "Name of the index to update")
	cmd.Flags().BoolVar(&reindex, "reindex", false, "Wipe the index and rebuild from scratch")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}
