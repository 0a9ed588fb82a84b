package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/assetkit/assetindexer/indexer"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

const assetAddr = "0x00000000000000000000000000000000000000AA"

type fakeEngine struct {
	status    indexer.Status
	accept    bool
	requested []string
}

func (e *fakeEngine) Status() indexer.Status { return e.status }

func (e *fakeEngine) RequestReconcile(assets ...string) bool {
	if !e.accept {
		return false
	}
	e.requested = append(e.requested, assets...)
	return true
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}

func setup(t *testing.T) (*fiber.App, *fakeEngine, *store.MemStore) {
	t.Helper()
	engine := &fakeEngine{accept: true}
	s := store.NewMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := fiber.New()
	New(engine, s, logger, time.Minute).Register(app)
	return app, engine, s
}

func do(t *testing.T, app *fiber.App, method, target string, dst any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
	defer closeBody(resp)
	require.NoError(t, err)
	if dst != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp.StatusCode
}

func putAsset(t *testing.T, s store.Store, holders int64, balances ...string) string {
	t.Helper()
	ctx := context.Background()
	id := "0x00000000000000000000000000000000000000aa"
	a := &types.Asset{ID: id, Decimals: 0}
	a.HoldersCount.Add(holders)
	require.NoError(t, s.Put(ctx, a))
	for i, account := range balances {
		b := &types.AssetBalance{ID: account, Asset: id, Account: account}
		b.Balance.Exact = types.NewNumeric(decimal.NewFromInt(int64(i + 1)))
		require.NoError(t, s.Put(ctx, b))
	}
	return id
}

func TestGetStatus(t *testing.T) {
	app, engine, _ := setup(t)
	engine.status = indexer.Status{
		Cursor:          "default",
		Position:        types.Position{BlockNumber: 10, LogIndex: 2},
		Started:         true,
		EventsProcessed: 42,
	}

	var body indexer.Status
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/status", &body))
	require.Equal(t, "default", body.Cursor)
	require.Equal(t, uint64(10), body.Position.BlockNumber)
	require.Equal(t, int64(42), body.EventsProcessed)
}

func TestGetHolders(t *testing.T) {
	t.Run("reports drift", func(t *testing.T) {
		app, _, s := setup(t)
		id := putAsset(t, s, 3, "a", "b")

		var body HoldersResponse
		require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/assets/"+assetAddr+"/holders", &body))
		require.Equal(t, id, body.Asset)
		require.Equal(t, int64(3), body.Stored)
		require.Equal(t, int64(2), body.Recomputed)
		require.False(t, body.InSync)
	})

	t.Run("unknown asset", func(t *testing.T) {
		app, _, _ := setup(t)
		require.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/assets/"+assetAddr+"/holders", nil))
	})

	t.Run("invalid address", func(t *testing.T) {
		app, _, _ := setup(t)
		require.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/assets/nope/holders", nil))
	})

	t.Run("cached until reconcile is requested", func(t *testing.T) {
		app, _, s := setup(t)
		putAsset(t, s, 1, "a")

		var body HoldersResponse
		do(t, app, http.MethodGet, "/assets/"+assetAddr+"/holders", &body)
		require.True(t, body.InSync)

		putAsset(t, s, 5, "a")
		do(t, app, http.MethodGet, "/assets/"+assetAddr+"/holders", &body)
		require.Equal(t, int64(1), body.Stored)

		require.Equal(t, http.StatusAccepted, do(t, app, http.MethodPost, "/assets/"+assetAddr+"/reconcile", nil))
		do(t, app, http.MethodGet, "/assets/"+assetAddr+"/holders", &body)
		require.Equal(t, int64(5), body.Stored)
	})
}

func TestPostReconcile(t *testing.T) {
	app, engine, _ := setup(t)

	var body ReconcileResponse
	require.Equal(t, http.StatusAccepted, do(t, app, http.MethodPost, "/assets/"+assetAddr+"/reconcile", &body))
	require.True(t, body.Queued)
	require.Equal(t, []string{"0x00000000000000000000000000000000000000aa"}, engine.requested)

	engine.accept = false
	require.Equal(t, http.StatusServiceUnavailable, do(t, app, http.MethodPost, "/assets/"+assetAddr+"/reconcile", nil))
}

func TestGetStats(t *testing.T) {
	app, _, s := setup(t)
	ctx := context.Background()
	id := "0x00000000000000000000000000000000000000aa"
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, row := range []types.EventStatsData{
		{Account: id, EventName: "TransferCompleted", Timestamp: base.Add(5 * time.Minute)},
		{Account: id, EventName: "TransferCompleted", Timestamp: base.Add(50 * time.Minute)},
		{Account: id, EventName: "TransferCompleted", Timestamp: base.Add(2 * time.Hour)},
		{Account: id, EventName: "MintCompleted", Timestamp: base.Add(time.Minute)},
		{Account: "0xother", EventName: "TransferCompleted", Timestamp: base},
	} {
		row := row
		require.NoError(t, s.Append(ctx, &row))
	}

	var hourly StatsResponse
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/assets/"+assetAddr+"/stats?event=TransferCompleted", &hourly))
	require.Equal(t, "1h", hourly.Interval)
	require.Len(t, hourly.Buckets, 2)
	require.Equal(t, int64(2), hourly.Buckets[0].Count)
	require.Equal(t, base, hourly.Buckets[0].Start)

	var daily StatsResponse
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/assets/"+assetAddr+"/stats?interval=1d", &daily))
	require.Len(t, daily.Buckets, 2)
	require.Equal(t, "MintCompleted", daily.Buckets[0].EventName)
	require.Equal(t, int64(3), daily.Buckets[1].Count)

	require.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/assets/"+assetAddr+"/stats?interval=1w", nil))
	require.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/assets/"+assetAddr+"/stats?from=yesterday", nil))
}
