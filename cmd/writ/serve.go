package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/writ/internal/cli"
	httpAdapter "github.com/aretw0/writ/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the wizards as a JSON API with sessions kept in the configured
store, plus Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, logger, cfg, err := openResources(cmd)
		if err != nil {
			return err
		}
		defer res.Close()

		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		if cfg.BundlesDir != "" {
			if events, err := res.Engine.Watch(sc); err != nil {
				logger.Warn("bundle hot reload disabled", "err", err)
			} else {
				go func() {
					for id := range events {
						logger.Info("bundle changed, cache cleared", "bundle", id)
					}
				}()
			}
		}

		srv := &http.Server{
			Addr: cfg.Addr,
			Handler: httpAdapter.NewHandler(res.Engine, res.Sessions,
				httpAdapter.WithLogger(logger),
				httpAdapter.WithMetrics(res.Metrics),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("http server listening", "addr", srv.Addr, "store", cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sc.Done():
			logger.Info("shutting down", "signal", sc.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			logger.Info("http server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides WRIT_ADDR)")
}
