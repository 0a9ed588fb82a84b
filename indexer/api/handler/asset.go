package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/assetkit/assetindexer/indexer/activity"
	"github.com/assetkit/assetindexer/indexer/holders"
	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

// GetHolders handles GET /assets/:asset/holders
// It reports the incrementally maintained holder count next to one recomputed
// from balances. Responses are cached per asset.
func (h *Handler) GetHolders(c *fiber.Ctx) error {
	asset, err := getAssetParam(c)
	if err != nil {
		return err
	}

	if res, ok := h.holders.Get(asset); ok {
		return c.JSON(res)
	}

	ctx := c.UserContext()
	a, err := repository.Load[types.Asset](ctx, h.store, asset)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "asset not found: "+asset)
	}
	if err != nil {
		return err
	}

	recomputed, err := holders.Count(ctx, h.store, asset)
	if err != nil {
		return err
	}

	res := HoldersResponse{
		Asset:         asset,
		Stored:        a.HoldersCount.Int64(),
		Recomputed:    recomputed,
		InSync:        a.HoldersCount.Int64() == recomputed,
		BalancesCount: a.BalancesCount.Int64(),
		TotalSupply:   a.TotalSupply,
	}
	h.holders.Set(asset, res)
	return c.JSON(res)
}

// PostReconcile handles POST /assets/:asset/reconcile
// The request is queued for the indexer's writer and answered before it runs.
func (h *Handler) PostReconcile(c *fiber.Ctx) error {
	asset, err := getAssetParam(c)
	if err != nil {
		return err
	}

	if !h.engine.RequestReconcile(asset) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "reconcile queue is full")
	}
	h.holders.Invalidate(asset)
	h.logger.Info("reconcile requested", slog.String("asset", asset))

	return c.Status(fiber.StatusAccepted).JSON(ReconcileResponse{Asset: asset, Queued: true})
}

// GetStats handles GET /assets/:asset/stats
// Query: interval (1h or 1d), event, from and to as unix seconds.
func (h *Handler) GetStats(c *fiber.Ctx) error {
	asset, err := getAssetParam(c)
	if err != nil {
		return err
	}
	name, interval, err := getIntervalQuery(c)
	if err != nil {
		return err
	}
	from, err := getTimeQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := getTimeQuery(c, "to")
	if err != nil {
		return err
	}

	rows, err := h.store.EventStats(c.UserContext(), store.StatsFilter{
		Account:   asset,
		EventName: c.Query("event"),
		From:      from,
		To:        to,
	})
	if err != nil {
		return err
	}

	return c.JSON(StatsResponse{
		Asset:    asset,
		Interval: name,
		Buckets:  activity.BucketEventStats(rows, interval),
	})
}
