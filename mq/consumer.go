package mq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/metrics"
)

// Consumer reads events from a Kafka topic as a member of a consumer group.
// Offsets are committed explicitly per message, so delivery is at least once.
type Consumer struct {
	reader    *kafka.Reader
	fromBlock uint64
	logger    *slog.Logger
}

// NewConsumer subscribes to the configured topic. cfg.Start selects where a
// new group begins:
//   - "first": the oldest retained message.
//   - "last": only messages produced after the group is created.
//   - "block:<number>": the oldest retained message, discarding events below
//     the given block on the client side.
func NewConsumer(cfg config.SourceConfig, logger *slog.Logger) (*Consumer, error) {
	fromLast, fromBlock, err := config.ParseStart(cfg.Start)
	if err != nil {
		return nil, err
	}
	startOffset := kafka.FirstOffset
	if fromLast {
		startOffset = kafka.LastOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: startOffset,
		// commit synchronously on ack
		CommitInterval: 0,
	})

	logger = logger.With("module", "consumer")
	logger.Info("subscribed to topic",
		slog.String("topic", cfg.Topic),
		slog.String("group", cfg.GroupID),
		slog.String("start", cfg.Start))

	return &Consumer{reader: reader, fromBlock: fromBlock, logger: logger}, nil
}

func (c *Consumer) Fetch(ctx context.Context) (Message, error) {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return Message{}, fmt.Errorf("failed to fetch message: %w", err)
		}

		ev, err := decodeEvent(m.Value)
		if err != nil {
			// a malformed message never decodes; commit it so it is not redelivered forever
			c.logger.Error("dropping malformed message",
				slog.Int("partition", m.Partition),
				slog.Int64("offset", m.Offset),
				slog.Any("error", err))
			metrics.Indexer().EventsSkippedTotal.WithLabelValues("malformed").Inc()
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				return Message{}, fmt.Errorf("failed to commit malformed message: %w", err)
			}
			continue
		}

		if ev.BlockNumber < c.fromBlock {
			metrics.Indexer().EventsSkippedTotal.WithLabelValues("before_start").Inc()
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				return Message{}, fmt.Errorf("failed to commit skipped message: %w", err)
			}
			continue
		}

		return Message{
			Event: ev,
			ack: func(ctx context.Context) error {
				return c.reader.CommitMessages(ctx, m)
			},
		}, nil
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
