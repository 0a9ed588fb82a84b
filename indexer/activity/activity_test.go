package activity

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

var (
	emitter = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	sender  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

func testEvent(logIndex uint32) types.Event {
	return types.Event{
		Source:      types.SourceAsset,
		Name:        "MintCompleted",
		Emitter:     emitter,
		BlockNumber: 10,
		Timestamp:   1700000000,
		TxHash:      common.HexToHash("0x01"),
		LogIndex:    logIndex,
		TxFrom:      sender,
	}
}

func TestCreateActivityLogEntryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	ev := testEvent(3)

	entry, created, err := CreateActivityLogEntry(ctx, s, ev)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ev.ID(), entry.ID)
	assert.Equal(t, types.AddressID(sender), entry.Sender)
	snapshot := s.Dump()

	again, created, err := CreateActivityLogEntry(ctx, s, ev)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, entry.ID, again.ID)
	assert.Equal(t, snapshot, s.Dump())

	acc, err := repository.FetchAccount(ctx, s, sender)
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.ActivityEventsCount.Int64())
	assert.True(t, ev.Time().Equal(acc.LastActivity))

	// another log index of the same transaction is a different entry
	_, created, err = CreateActivityLogEntry(ctx, s, testEvent(4))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, s.Len(types.ActivityLogEntry{}.TableName()))
}

func TestSenderFallsBackToEmitter(t *testing.T) {
	ev := testEvent(0)
	ev.TxFrom = common.Address{}
	assert.Equal(t, emitter, Sender(ev))
}

func TestTrackEventStatsAppends(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	ev := testEvent(0)

	require.NoError(t, TrackEventStats(ctx, s, ev))
	require.NoError(t, TrackEventStats(ctx, s, ev))

	rows, err := s.EventStats(ctx, store.StatsFilter{Account: types.AddressID(emitter)})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
}

func TestBucketEventStats(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []types.EventStatsData{
		{Account: "0xa", EventName: "Mint", Timestamp: base.Add(5 * time.Minute)},
		{Account: "0xa", EventName: "Mint", Timestamp: base.Add(55 * time.Minute)},
		{Account: "0xa", EventName: "Burn", Timestamp: base.Add(10 * time.Minute)},
		{Account: "0xa", EventName: "Mint", Timestamp: base.Add(61 * time.Minute)},
		{Account: "0xb", EventName: "Mint", Timestamp: base.Add(2 * time.Minute)},
	}

	hourly := BucketEventStats(rows, time.Hour)
	require.Len(t, hourly, 4)
	assert.Equal(t, Bucket{Account: "0xa", EventName: "Burn", Start: base, Count: 1}, hourly[0])
	assert.Equal(t, Bucket{Account: "0xa", EventName: "Mint", Start: base, Count: 2}, hourly[1])
	assert.Equal(t, Bucket{Account: "0xb", EventName: "Mint", Start: base, Count: 1}, hourly[2])
	assert.Equal(t, Bucket{Account: "0xa", EventName: "Mint", Start: base.Add(time.Hour), Count: 1}, hourly[3])

	daily := BucketEventStats(rows, 24*time.Hour)
	require.Len(t, daily, 3)
	assert.Equal(t, int64(3), daily[1].Count)
}
