package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/output"
)

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Display all available indexes",
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

			metas, err := e.catalog.List()
			if err != nil {
				return err
			}

			return output.New(cmd.OutOrStdout()).IndexList(fmtChoice, metas)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}
