package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HenryZhang-ZHY/beetle/internal/output"
	"github.com/HenryZhang-ZHY/beetle/internal/server"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the beetle HTTP API",
		Long: `Start an HTTP server exposing the catalog: listing, creating,
updating, and searching indexes.

The server shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.cleanup()

			addr := listen
			if addr == "" {
				addr = e.cfg.Server.Listen
			}

			output.New(cmd.OutOrStdout()).Printf("Serving beetle API on http://%s", addr)
			return server.New(e.catalog, addr).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from config)")

	return cmd
}
