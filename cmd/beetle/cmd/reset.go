package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/output"
)

func newResetCmd() *cobra.Command {
	var indexName string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe an index's contents, keeping its target binding",
		Long: `Reset empties the index while preserving its metadata. The next
'beetle update' reindexes the whole target tree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.cleanup()

			if err := e.catalog.Reset(indexName); err != nil {
				return err
			}

			output.New(cmd.OutOrStdout()).Success("Reset index %q", indexName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&indexName, "index", "i", "", "Name of the index to reset")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}
