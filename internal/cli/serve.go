package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactions endpoint and run the notification sweep",
		Long: `Serve POST /interactions for intake and delete buttons, and GET /health.

The notification sweep and the audit prune run on their configured
schedules until the process receives SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = wire.Config().Listen
			}
			server, err := wire.InteractionsServer()
			if err != nil {
				return err
			}
			sched, err := wire.Scheduler()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			return server.ListenAndServe(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")
	return cmd
}
