package indexer

import (
	"context"
	"log/slog"

	"github.com/assetkit/assetindexer/indexer/holders"
	"github.com/assetkit/assetindexer/metrics"
	"github.com/assetkit/assetindexer/sentry_integration"
	"github.com/assetkit/assetindexer/store"
)

// Reconcile recomputes the holder count of assets, or of every known asset when
// none are given. Failures are logged and do not stop the indexer, since the
// next reconciliation repairs the same drift.
func (i *Indexer) Reconcile(ctx context.Context, assets ...string) []holders.Reconciliation {
	transaction, ctx := sentry_integration.StartSentryTransaction(ctx, "reconcile", "recompute holder counts")
	defer transaction.Finish()

	if len(assets) == 0 {
		all, err := i.store.AssetIDs(ctx)
		if err != nil {
			i.logger.Error("failed to list assets", slog.Any("error", err))
			metrics.Indexer().ProcessingErrors.WithLabelValues("reconcile", errorType(err)).Inc()
			return nil
		}
		assets = all
	}

	results := make([]holders.Reconciliation, 0, len(assets))
	for _, asset := range assets {
		span, ctx := sentry_integration.StartSentrySpan(ctx, "reconcileAsset", asset)
		var res holders.Reconciliation
		err := i.withRetry(ctx, func() error {
			return i.store.Transaction(ctx, func(tx store.Store) error {
				var err error
				res, err = holders.Reconcile(ctx, tx, i.logger, asset)
				return err
			})
		})
		span.Finish()
		if err != nil {
			i.logger.Error("failed to reconcile holders", slog.String("asset", asset), slog.Any("error", err))
			metrics.Indexer().ProcessingErrors.WithLabelValues("reconcile", errorType(err)).Inc()
			continue
		}
		results = append(results, res)
	}
	return results
}
