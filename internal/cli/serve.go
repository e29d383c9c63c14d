package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/savingsjars/backend/internal/server"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "Listen port (overrides server.port)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Server.Port = port
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Start(ctx, cfg)
	},
}
