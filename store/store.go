// Package store is the persistence boundary of the indexing engine. Handlers only
// ever see the Store interface, injected per call, so the same code runs against
// postgres, sqlite or the in-memory fake.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/assetkit/assetindexer/types"
)

var ErrNotFound = errors.New("entity not found")

// Entity is a record keyed by a deterministic string id.
type Entity interface {
	TableName() string
	EntityID() string
}

// StatsFilter selects event stats rows. Zero fields match everything.
type StatsFilter struct {
	Account   string
	EventName string
	From      time.Time
	To        time.Time
}

func (f StatsFilter) match(row types.EventStatsData) bool {
	if f.Account != "" && row.Account != f.Account {
		return false
	}
	if f.EventName != "" && row.EventName != f.EventName {
		return false
	}
	if !f.From.IsZero() && row.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !row.Timestamp.Before(f.To) {
		return false
	}
	return true
}

type Store interface {
	// Get loads the entity with the given id into dst, or returns ErrNotFound.
	Get(ctx context.Context, dst Entity, id string) error
	// Put inserts or fully replaces the entity.
	Put(ctx context.Context, e Entity) error
	// Delete removes the entity. Deleting an absent entity is not an error.
	Delete(ctx context.Context, e Entity) error
	// Append adds a stats row and assigns its ID.
	Append(ctx context.Context, row *types.EventStatsData) error

	Balances(ctx context.Context, asset string) ([]types.AssetBalance, error)
	ActivityEvents(ctx context.Context, asset string) ([]types.AssetActivityEvent, error)
	AssetIDs(ctx context.Context) ([]string, error)
	EventStats(ctx context.Context, filter StatsFilter) ([]types.EventStatsData, error)

	// Transaction runs fn as one unit of work. Any error or panic from fn discards
	// every write made through tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// batchWriter is implemented by stores that upsert many rows of one table per
// round trip.
type batchWriter interface {
	putBatch(ctx context.Context, table string, rows any) error
}

// PutAll upserts every row, batched when s supports it.
func PutAll[T any, PT interface {
	*T
	Entity
}](ctx context.Context, s Store, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if bw, ok := s.(batchWriter); ok {
		return bw.putBatch(ctx, PT(&rows[0]).TableName(), &rows)
	}
	for i := range rows {
		if err := s.Put(ctx, PT(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}
