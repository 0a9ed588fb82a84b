// Package activity writes the immutable activity log and the append-only event
// stats time series.
package activity

import (
	"context"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

// Sender is the account an event is attributed to: the transaction sender, or
// the emitter when the sender is unknown.
func Sender(ev types.Event) common.Address {
	if ev.TxFrom != (common.Address{}) {
		return ev.TxFrom
	}
	return ev.Emitter
}

// CreateActivityLogEntry upserts the log entry of ev. The sender's
// activityEventsCount only grows when the entry is created, so created == false
// identifies an event that was applied before.
func CreateActivityLogEntry(ctx context.Context, s store.Store, ev types.Event) (*types.ActivityLogEntry, bool, error) {
	id := ev.ID()
	sender := Sender(ev)
	entry, created, err := repository.FetchOrCreate(ctx, s, id, func(e *types.ActivityLogEntry) {
		e.ID = id
		e.Source = ev.Source
		e.EventName = ev.Name
		e.Emitter = types.AddressID(ev.Emitter)
		e.Sender = types.AddressID(sender)
		e.TxHash = ev.TxHash.Hex()
		e.BlockNumber = ev.BlockNumber
		e.LogIndex = ev.LogIndex
		e.Timestamp = ev.Time()
	})
	if err != nil || !created {
		return entry, created, err
	}

	acc, err := repository.FetchAccount(ctx, s, sender)
	if err != nil {
		return nil, false, err
	}
	acc.ActivityEventsCount.Inc()
	acc.LastActivity = ev.Time()
	if err := s.Put(ctx, acc); err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// AssetActivityEvent records the asset scoped view of ev, keyed like its log entry.
func AssetActivityEvent(ctx context.Context, s store.Store, ev types.Event, asset, from, to common.Address, amount types.Amount) (*types.AssetActivityEvent, error) {
	id := ev.ID()
	e, _, err := repository.FetchOrCreate(ctx, s, id, func(e *types.AssetActivityEvent) {
		e.ID = id
		e.Asset = types.AddressID(asset)
		e.EventName = ev.Name
		e.Sender = types.AddressID(Sender(ev))
		e.From = types.AddressID(from)
		e.To = types.AddressID(to)
		e.Amount = amount
		e.TxHash = ev.TxHash.Hex()
		e.Timestamp = ev.Time()
	})
	return e, err
}

// TrackEventStats appends one stats row for ev, attributed to its emitter.
func TrackEventStats(ctx context.Context, s store.Store, ev types.Event) error {
	return s.Append(ctx, &types.EventStatsData{
		Account:   types.AddressID(ev.Emitter),
		EventName: ev.Name,
		Timestamp: ev.Time(),
	})
}

type Bucket struct {
	Account   string    `json:"account"`
	EventName string    `json:"eventName"`
	Start     time.Time `json:"start"`
	Count     int64     `json:"count"`
}

// BucketEventStats counts rows per account, event name and interval aligned
// bucket. Buckets are ordered by start, account and event name.
func BucketEventStats(rows []types.EventStatsData, interval time.Duration) []Bucket {
	if interval <= 0 {
		interval = time.Hour
	}

	type key struct {
		account   string
		eventName string
		start     int64
	}
	counts := make(map[key]int64)
	for _, row := range rows {
		k := key{
			account:   row.Account,
			eventName: row.EventName,
			start:     row.Timestamp.UTC().Truncate(interval).Unix(),
		}
		counts[k]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, Bucket{
			Account:   k.account,
			EventName: k.eventName,
			Start:     time.Unix(k.start, 0).UTC(),
			Count:     n,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Account != b.Account {
			return a.Account < b.Account
		}
		return a.EventName < b.EventName
	})
	return buckets
}
