package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/output"
	"github.com/HenryZhang-ZHY/beetle/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var indexName string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep an index current as its target changes",
		Long: `Watch the index's target folder and run an incremental update
after each burst of file changes settles. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.cleanup()

			// Catch up before watching so the first event burst diffs
			// against fresh state.
			if _, err := e.catalog.Update(cmd.Context(), indexName); err != nil {
				return err
			}

			output.New(cmd.OutOrStdout()).Printf("Watching index %q, press Ctrl-C to stop.", indexName)
			w := watcher.New(e.catalog, indexName, e.cfg.Watch.DebounceWindow())
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&indexName, "index", "i", "", "Name of the index to keep current")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}
