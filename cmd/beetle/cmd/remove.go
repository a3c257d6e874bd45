package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/output"
)

func newRemoveCmd() *cobra.Command {
	var indexName string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an index from the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.cleanup()

			if err := e.catalog.Remove(indexName); err != nil {
				return err
			}

			output.New(cmd.OutOrStdout()).Success("Removed index %q", indexName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&indexName, "index", "i", "", "Name of the index to remove")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}
