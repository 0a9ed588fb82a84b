// Package dispatcher routes decoded events to their handler inside the unit
// of work of the caller.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/assetkit/assetindexer/indexer/activity"
	"github.com/assetkit/assetindexer/indexer/handler"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

type Outcome int

const (
	// Unrouted events have no handler and leave the store untouched.
	Unrouted Outcome = iota
	// Applied events ran their handler.
	Applied
	// Replayed events were applied before and were skipped.
	Replayed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Replayed:
		return "replay"
	default:
		return "unrouted"
	}
}

type Dispatcher struct {
	logger   *slog.Logger
	decimals *handler.DecimalsResolver
}

func New(logger *slog.Logger, decimals *handler.DecimalsResolver) *Dispatcher {
	return &Dispatcher{
		logger:   logger.With("module", "dispatcher"),
		decimals: decimals,
	}
}

// Dispatch applies ev to s. s is expected to be a transaction: on error the
// caller must discard every write made here.
func (d *Dispatcher) Dispatch(ctx context.Context, s store.Store, ev types.Event) (Outcome, error) {
	if err := ev.Validate(); err != nil {
		return Unrouted, err
	}

	fn, ok := routes[Route{Source: ev.Source, Name: ev.Name}]
	if !ok {
		d.logger.Debug("no handler for event",
			slog.String("source", ev.Source),
			slog.String("event", ev.Name),
			slog.String("id", ev.ID()))
		return Unrouted, nil
	}

	_, created, err := activity.CreateActivityLogEntry(ctx, s, ev)
	if err != nil {
		return Unrouted, fmt.Errorf("activity log entry %s: %w", ev.ID(), err)
	}
	if !created {
		d.logger.Debug("event already applied",
			slog.String("event", ev.Name),
			slog.String("id", ev.ID()))
		return Replayed, nil
	}

	hc := &handler.Context{
		Event:    ev,
		Store:    s,
		Logger:   d.logger.With("event", ev.Name, "id", ev.ID()),
		Decimals: d.decimals,
	}
	if err := fn(ctx, hc); err != nil {
		return Unrouted, fmt.Errorf("%s.%s at %s: %w", ev.Source, ev.Name, ev.Position(), err)
	}

	if err := activity.TrackEventStats(ctx, s, ev); err != nil {
		return Unrouted, err
	}
	return Applied, nil
}
