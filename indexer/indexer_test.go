package indexer

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/counter"
	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/mq"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

var (
	assetAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob       = common.HexToAddress("0x00000000000000000000000000000000000000b0")

	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// sliceSource delivers a fixed list of events and records acks.
type sliceSource struct {
	mu     sync.Mutex
	events []types.Event
	acked  []string
}

func (s *sliceSource) Fetch(ctx context.Context) (mq.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return mq.Message{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return mq.NewMessage(ev, func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.acked = append(s.acked, ev.ID())
		return nil
	}), nil
}

func (s *sliceSource) Close() error { return nil }

func (s *sliceSource) ackedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acked...)
}

func testConfig() *config.IndexerConfig {
	return &config.IndexerConfig{
		CursorName:        "test",
		MaxRetries:        2,
		DefaultDecimals:   6,
		DecimalsCacheSize: 16,
	}
}

func event(t *testing.T, name string, block uint64, logIndex uint32, tx string, params map[string]any) types.Event {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return types.Event{
		Source:      types.SourceAsset,
		Name:        name,
		Emitter:     assetAddr,
		BlockNumber: block,
		Timestamp:   1700000000 + int64(block),
		TxHash:      common.HexToHash(tx),
		LogIndex:    logIndex,
		TxFrom:      alice,
		Params:      raw,
	}
}

func TestRunAppliesEventsInOrder(t *testing.T) {
	s := store.NewMemStore()
	mint := event(t, "MintCompleted", 1, 0, "0x01", map[string]any{"to": alice, "amount": "5000000"})
	transfer := event(t, "TransferCompleted", 2, 0, "0x02", map[string]any{"from": alice, "to": bob, "value": "2000000"})
	src := &sliceSource{events: []types.Event{mint, transfer, mint}}

	idx := New(testConfig(), discard, s, src)
	require.NoError(t, idx.Run(context.Background()))

	// the redelivered mint is behind the cursor and only acked
	assert.Equal(t, []string{mint.ID(), transfer.ID(), mint.ID()}, src.ackedIDs())

	status := idx.Status()
	assert.True(t, status.Started)
	assert.Equal(t, types.Position{BlockNumber: 2, LogIndex: 0}, status.Position)
	assert.Equal(t, int64(2), status.EventsProcessed)

	ctx := context.Background()
	a, err := repository.Load[types.AssetBalance](ctx, s, types.BalanceID(assetAddr, alice))
	require.NoError(t, err)
	assert.Equal(t, "3", a.Balance.Value.String())
	b, err := repository.Load[types.AssetBalance](ctx, s, types.BalanceID(assetAddr, bob))
	require.NoError(t, err)
	assert.Equal(t, "2", b.Balance.Value.String())
}

func TestRunResumesFromStoredCursor(t *testing.T) {
	s := store.NewMemStore()
	mint := event(t, "MintCompleted", 1, 0, "0x01", map[string]any{"to": alice, "amount": "1"})
	require.NoError(t, New(testConfig(), discard, s, &sliceSource{events: []types.Event{mint}}).Run(context.Background()))
	once := s.Dump()

	idx := New(testConfig(), discard, s, &sliceSource{events: []types.Event{mint}})
	require.NoError(t, idx.Run(context.Background()))
	assert.Equal(t, once, s.Dump())
	assert.Equal(t, int64(1), idx.Status().EventsProcessed)
}

func TestReorgStopsIndexer(t *testing.T) {
	s := store.NewMemStore()
	first := event(t, "MintCompleted", 3, 1, "0x0a", map[string]any{"to": alice, "amount": "1"})
	other := event(t, "MintCompleted", 3, 1, "0x0b", map[string]any{"to": alice, "amount": "1"})
	src := &sliceSource{events: []types.Event{first, other}}

	err := New(testConfig(), discard, s, src).Run(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsErrorType(err, types.ErrTypeReorg))
	assert.Equal(t, []string{first.ID()}, src.ackedIDs())
}

func TestInvariantErrorIsNotAcked(t *testing.T) {
	s := store.NewMemStore()
	transfer := event(t, "TransferCompleted", 1, 0, "0x01", map[string]any{"from": alice, "to": bob, "value": "1"})
	src := &sliceSource{events: []types.Event{transfer}}
	before := s.Dump()

	err := New(testConfig(), discard, s, src).Run(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsErrorType(err, types.ErrTypeInvariant))
	assert.Empty(t, src.ackedIDs())
	assert.Equal(t, before, s.Dump())
}

func TestUnroutedEventAdvancesCursor(t *testing.T) {
	s := store.NewMemStore()
	ev := event(t, "OwnershipTransferred", 4, 2, "0x04", map[string]any{})

	idx := New(testConfig(), discard, s, &sliceSource{events: []types.Event{ev}})
	require.NoError(t, idx.Run(context.Background()))

	status := idx.Status()
	assert.Equal(t, types.Position{BlockNumber: 4, LogIndex: 2}, status.Position)
	assert.Equal(t, int64(0), status.EventsProcessed)
	assert.Equal(t, 0, s.Len(types.ActivityLogEntry{}.TableName()))
}

// flakyStore fails the first failures transactions with a retryable error.
type flakyStore struct {
	*store.MemStore
	failures int
	calls    int
}

func (f *flakyStore) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	f.calls++
	if f.calls <= f.failures {
		return types.NewDatabaseError("begin", driver.ErrBadConn)
	}
	return f.MemStore.Transaction(ctx, fn)
}

func TestApplyRetriesTransientFailures(t *testing.T) {
	s := &flakyStore{MemStore: store.NewMemStore(), failures: 1}
	idx := New(testConfig(), discard, s, &sliceSource{})

	mint := event(t, "MintCompleted", 1, 0, "0x01", map[string]any{"to": alice, "amount": "1"})
	require.NoError(t, idx.Apply(context.Background(), mint))
	assert.Equal(t, 2, s.calls)
	assert.Equal(t, int64(1), idx.Status().EventsProcessed)
}

func TestApplyGivesUpAfterMaxRetries(t *testing.T) {
	s := &flakyStore{MemStore: store.NewMemStore(), failures: 10}
	cfg := testConfig()
	cfg.MaxRetries = 0
	idx := New(cfg, discard, s, &sliceSource{})

	mint := event(t, "MintCompleted", 1, 0, "0x01", map[string]any{"to": alice, "amount": "1"})
	err := idx.Apply(context.Background(), mint)
	require.Error(t, err)
	assert.True(t, store.IsRetryable(err))
	assert.Equal(t, 1, s.calls)
}

func TestReconcileFixesDrift(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()
	idx := New(testConfig(), discard, s, &sliceSource{})
	mint := event(t, "MintCompleted", 1, 0, "0x01", map[string]any{"to": alice, "amount": "1"})
	require.NoError(t, idx.Apply(ctx, mint))

	asset, err := repository.Load[types.Asset](ctx, s, types.AddressID(assetAddr))
	require.NoError(t, err)
	asset.HoldersCount = counter.Counter(7)
	require.NoError(t, s.Put(ctx, asset))

	results := idx.Reconcile(ctx)
	require.Len(t, results, 1)
	assert.True(t, results[0].Adjusted)
	assert.Equal(t, int64(7), results[0].Stored)
	assert.Equal(t, int64(1), results[0].Actual)

	asset, err = repository.Load[types.Asset](ctx, s, types.AddressID(assetAddr))
	require.NoError(t, err)
	assert.Equal(t, int64(1), asset.HoldersCount.Int64())

	// unknown assets are logged and skipped
	assert.Empty(t, idx.Reconcile(ctx, "0x00000000000000000000000000000000000000ff"))
}

func TestRequestReconcileQueueBound(t *testing.T) {
	idx := New(testConfig(), discard, store.NewMemStore(), &sliceSource{})
	for range types.ReconcileQueueSize {
		assert.True(t, idx.RequestReconcile("0x01"))
	}
	assert.False(t, idx.RequestReconcile("0x01"))
}
