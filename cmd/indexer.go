package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/indexer"
	"github.com/assetkit/assetindexer/indexer/api"
	"github.com/assetkit/assetindexer/log"
	"github.com/assetkit/assetindexer/metrics"
)

const shutdownTimeout = 10 * time.Second

func indexerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexer",
		Short: "Run the event indexer and its status API",
		Long: `
Run the event indexer.

Events are consumed from the configured source (SOURCE_TYPE=kafka or file),
applied to the database one transaction at a time and acknowledged after
commit. The status API and the metrics server run alongside.

You can configure database, source, logging and server options via environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			logger := log.NewLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := openRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			source, err := openSource(cfg.GetSourceConfig(), logger)
			if err != nil {
				return err
			}
			defer source.Close() //nolint:errcheck

			idx := indexer.New(cfg.GetIndexerConfig(), logger, rt.store, source)
			server := api.New(cfg, logger, idx, rt.store)
			metricsServer := metrics.NewServer(cfg, logger)
			metrics.StartDBStatsUpdater(rt.db, logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return idx.Run(gctx)
			})
			g.Go(server.Start)
			g.Go(metricsServer.Start)
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(); err != nil {
					logger.Error("graceful shutdown failed", slog.Any("error", err))
				}
				return metricsServer.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	return cmd
}
