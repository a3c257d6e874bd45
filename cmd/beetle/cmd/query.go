package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/output"
)

func newQueryCmd() *cobra.Command {
	var indexName string
	var search string
	var format string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search within an existing index",
		Long: `Run a ranked full-text query against an index.

The query language supports bare terms, "exact phrases", wildcard*,
+required / -excluded terms, and field scoping (path:, content:,
extension:).

Examples:
  beetle query -i my-project -q "main function"
  beetle query -i my-project -q '"int main"'
  beetle query -i my-project -q "handler +extension:go" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtChoice, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.cleanup()

			results, err := e.catalog.Search(cmd.Context(), indexName, search)
			if err != nil {
				return err
			}

			return output.New(cmd.OutOrStdout()).SearchResults(fmtChoice, search, results)
		},
	}

	cmd.Flags().StringVarP(&indexName, "index", "i", "", "Name of the index to query")
	cmd.Flags().StringVarP(&search, "query", "q", "", "Search query string")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}
