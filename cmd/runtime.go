package cmd

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/metrics"
	"github.com/assetkit/assetindexer/mq"
	"github.com/assetkit/assetindexer/orm"
	"github.com/assetkit/assetindexer/sentry_integration"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

// runtime holds what every store backed command opens.
type runtime struct {
	db     *orm.Database
	store  store.Store
	logger *slog.Logger
}

func openRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*runtime, error) {
	// the database metrics plugin registers collectors, which carry the cursor label
	metrics.Init(cfg.GetCursorName())

	if err := sentry_integration.Init(cfg.GetSentryConfig(), config.Version); err != nil {
		logger.Warn("sentry disabled", slog.Any("error", err))
	}

	db, err := orm.OpenDB(cfg.GetDBConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &runtime{
		db:     db,
		store:  store.NewGormStore(db.DB, store.WithBatchSize(db.GetBatchSize())),
		logger: logger,
	}, nil
}

func (r *runtime) Close() {
	sentry_integration.Flush()
	if err := r.db.Close(); err != nil {
		r.logger.Error("failed to close database", slog.Any("error", err))
	}
}

func openSource(cfg *config.SourceConfig, logger *slog.Logger) (mq.Source, error) {
	switch cfg.Type {
	case config.SourceKafka:
		return mq.NewConsumer(*cfg, logger)
	case config.SourceFile:
		return mq.OpenFile(cfg.EventsFile)
	default:
		return nil, types.NewInvalidValueError("SOURCE_TYPE", cfg.Type, "must be kafka or file")
	}
}

// normalizeAssets lowercases hex asset addresses and drops anything else.
func normalizeAssets(args []string) []string {
	assets := make([]string, 0, len(args))
	for _, arg := range args {
		if !common.IsHexAddress(arg) {
			continue
		}
		assets = append(assets, types.AddressID(common.HexToAddress(arg)))
	}
	return assets
}
