package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/output"
	"github.com/HenryZhang-ZHY/beetle/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output.New(cmd.OutOrStdout()).Printf("%s", version.String())
		},
	}
}
