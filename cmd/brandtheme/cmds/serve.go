package cmds

import (
	"brandtheme/internal/api"
	"brandtheme/internal/codes"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the theme HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			adapter, settings, err := openStore(ctx)
			if err != nil {
				return err
			}
			resolver, err := codes.FromSettings(settings)
			if err != nil {
				return err
			}
			if port == 0 {
				port = settings.Port
			}

			log.WithFields(log.Fields{
				"static_base":   settings.StaticBaseURL,
				"api_base":      settings.APIBaseURL,
				"code_resolver": settings.CodeResolver,
				"cache":         settings.EnableCache,
			}).Info("starting brandtheme")

			stop, done := api.RunServerInterruptible(port, api.NewHandler(settings, adapter, resolver))
			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				log.Info("shutting down")
				close(stop)
				return <-done
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default $PORT or 8000)")
	return cmd
}
