package cmd

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/log"
	"github.com/assetkit/assetindexer/mq"
	"github.com/assetkit/assetindexer/types"
)

const publishBatchSize = 500

func publishCmd() *cobra.Command {
	var replicationFactor int

	cmd := &cobra.Command{
		Use:   "publish <events-file>",
		Short: "Publish a newline-delimited JSON event file to the event topic",
		Long: `
Publish every event of a newline-delimited JSON file to KAFKA_TOPIC, creating
the topic with a single partition when it does not exist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			logger := log.NewLogger(cfg)
			sourceCfg := *cfg.GetSourceConfig()
			if len(sourceCfg.Brokers) == 0 || sourceCfg.Topic == "" {
				return types.NewValidationError("KAFKA_BROKERS", "brokers and topic are required to publish")
			}

			ctx := cmd.Context()
			if err := mq.EnsureTopic(ctx, sourceCfg, replicationFactor); err != nil {
				return err
			}

			source, err := mq.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer source.Close() //nolint:errcheck

			producer := mq.NewProducer(sourceCfg, cfg.GetCursorName())
			defer producer.Close() //nolint:errcheck

			published := 0
			batch := make([]types.Event, 0, publishBatchSize)
			flush := func() error {
				if len(batch) == 0 {
					return nil
				}
				if err := producer.Publish(ctx, batch...); err != nil {
					return err
				}
				published += len(batch)
				batch = batch[:0]
				return nil
			}

			for {
				msg, err := source.Fetch(ctx)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				batch = append(batch, msg.Event)
				if len(batch) == publishBatchSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
			if err := flush(); err != nil {
				return err
			}

			logger.Info("published events", slog.Int("count", published), slog.String("topic", sourceCfg.Topic))
			return nil
		},
	}

	cmd.Flags().IntVar(&replicationFactor, "replication-factor", 1, "replication factor of a newly created topic")
	return cmd
}
