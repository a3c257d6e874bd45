package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/output"
)

func newNewCmd() *cobra.Command {
	var indexName string
	var path string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new index for a folder",
		Long: `Create a new, empty index bound to a target folder.

The index stays empty until the first 'beetle update' run.

Examples:
  beetle new -i my-project -p /path/to/repo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.cleanup()

			if err := e.catalog.Create(indexName, path); err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			out.Success("Created index %q for %s", indexName, path)
			out.Printf("Run 'beetle update -i %s' to index the folder.", indexName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&indexName, "index", "i", "", "Name of the index to create")
	cmd.Flags().StringVarP(&path, "path", "p", "", "Path to the folder to be indexed")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
