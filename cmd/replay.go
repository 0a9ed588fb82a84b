package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/indexer"
	"github.com/assetkit/assetindexer/log"
	"github.com/assetkit/assetindexer/mq"
)

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <events-file>",
		Short: "Apply a newline-delimited JSON event file and exit",
		Long: `
Apply every event of a newline-delimited JSON file to the database, then exit.

Events at or behind the stored cursor are skipped, so the same file can be
replayed safely. The environment must still hold a valid source
configuration, SOURCE_TYPE=file with EVENTS_FILE set to the same file is enough.`,
		Args: cobra.ExactArgs(1),
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

			source, err := mq.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer source.Close() //nolint:errcheck

			idx := indexer.New(cfg.GetIndexerConfig(), logger, rt.store, source)
			if err := idx.Run(ctx); err != nil {
				return err
			}

			status := idx.Status()
			cmd.Printf("cursor %s at %s, %d events processed\n", status.Cursor, status.Position, status.EventsProcessed)
			return nil
		},
	}

	return cmd
}
