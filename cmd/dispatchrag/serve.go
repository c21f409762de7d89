package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/dispatchrag/internal/app"
	"github.com/matiasleandrokruk/dispatchrag/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP API: POST /generate, GET /health, GET /predictions
(when DATABASE_PATH is set) and the MCP endpoint at /mcp.

The corpus is indexed before the listener opens; a corpus or index
failure aborts startup. SIGINT/SIGTERM drain in-flight requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, logger)
			if err != nil {
				logger.Error("startup failed", zap.Error(err))
				return err
			}
			a.Start(ctx)

			srvCfg := server.DefaultConfig()
			srvCfg.Host, srvCfg.Port = cfg.Host, cfg.Port
			srv := server.NewServer(a.Handler, srvCfg, logger)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(ctx) }()

			var serveErr error
			select {
			case serveErr = <-errCh:
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
				serveErr = srv.Shutdown(shutdownCtx)
				cancel()
				if err := <-errCh; err != nil && serveErr == nil {
					serveErr = err
				}
			}
			return errors.Join(serveErr, a.Close())
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides PORT)")
	return cmd
}
