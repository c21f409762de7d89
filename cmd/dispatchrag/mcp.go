package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/dispatchrag/internal/app"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Long: `Serve retrieve_context, predict_continuation and classify_severity
to an MCP client over stdio. The same tools are available over HTTP at
/mcp when running "serve".

Logs go to stderr; set LOG_FORMAT=console for readable output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			a.Start(ctx)
			runErr := a.MCP.Run(ctx)
			if closeErr := a.Close(); runErr == nil {
				runErr = closeErr
			}
			return runErr
		},
	}
}
