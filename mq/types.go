// Package mq delivers decoded events to the indexer and publishes them to the
// event topic.
package mq

import (
	"context"
	"encoding/json"

	"github.com/assetkit/assetindexer/types"
)

// Message is one delivered event. Ack must be called only after the event is
// durably applied; unacked messages are delivered again.
type Message struct {
	Event types.Event
	ack   func(ctx context.Context) error
}

// NewMessage wraps ev with an ack callback; a nil ack is a no-op.
func NewMessage(ev types.Event, ack func(ctx context.Context) error) Message {
	return Message{Event: ev, ack: ack}
}

func (m Message) Ack(ctx context.Context) error {
	if m.ack == nil {
		return nil
	}
	return m.ack(ctx)
}

// Source yields events in the order they were emitted.
type Source interface {
	// Fetch blocks until the next event is available. It returns io.EOF when
	// a finite source is exhausted.
	Fetch(ctx context.Context) (Message, error)
	Close() error
}

func decodeEvent(data []byte) (types.Event, error) {
	var ev types.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, types.NewDecodeError("event", err)
	}
	if err := ev.Validate(); err != nil {
		return ev, err
	}
	return ev, nil
}
