package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/types"
)

// Producer publishes decoded events. Every message carries the same key, so
// all events land on one partition and keep their order.
type Producer struct {
	writer *kafka.Writer
	key    []byte
}

func NewProducer(cfg config.SourceConfig, key string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 20 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
		},
		key: []byte(key),
	}
}

// EnsureTopic creates the topic with a single partition if it does not exist.
func EnsureTopic(ctx context.Context, cfg config.SourceConfig, replicationFactor int) error {
	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to kafka: %w", err)
	}
	defer conn.Close()

	if partitions, err := conn.ReadPartitions(cfg.Topic); err == nil && len(partitions) > 0 {
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to connect to controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     1,
		ReplicationFactor: replicationFactor,
	})
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", cfg.Topic, err)
	}
	return nil
}

func (p *Producer) Publish(ctx context.Context, events ...types.Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", ev.ID(), err)
		}
		msgs = append(msgs, kafka.Message{Key: p.key, Value: data})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish events: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
