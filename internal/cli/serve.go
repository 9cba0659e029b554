package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"salesdoc/internal/config"
	"salesdoc/pkg/server"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			load := app.LoadConfig
			if load == nil {
				load = config.Load
			}
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Port = port
			}

			c, err := server.NewContainer(cfg, app.Options...)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(app.Out, "Listening on http://%s\n", cfg.Address())
			return c.Run(ctx)
		},
	}
	cmd.Flags().StringP("port", "p", "", "Port to listen on (default from PORT)")
	return cmd
}
