package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/server"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, logger, err := load(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on port %s", cfg.AppPort)
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		if shutdownErr := app.Shutdown(cfg.ShutdownTimeout); shutdownErr != nil {
			logger.WithError(shutdownErr).Error("Error during shutdown")
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	if err := app.Shutdown(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	logger.Info("Server gracefully stopped")
	return nil
}
