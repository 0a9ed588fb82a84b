// Package indexer runs the single writer that applies delivered events to the
// derived store, one unit of work per event.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/indexer/dispatcher"
	"github.com/assetkit/assetindexer/indexer/handler"
	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/metrics"
	"github.com/assetkit/assetindexer/mq"
	"github.com/assetkit/assetindexer/sentry_integration"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

// Status is a snapshot of the processing cursor.
type Status struct {
	Cursor          string         `json:"cursor"`
	Position        types.Position `json:"position"`
	TxHash          string         `json:"txHash"`
	Started         bool           `json:"started"`
	EventsProcessed int64          `json:"eventsProcessed"`
	LastEventAt     time.Time      `json:"lastEventAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type Indexer struct {
	logger            *slog.Logger
	store             store.Store
	source            mq.Source
	dispatcher        *dispatcher.Dispatcher
	cursorName        string
	maxRetries        int
	reconcileInterval time.Duration

	events    chan mq.Message
	reconcile chan []string
	status    atomic.Pointer[Status]
}

func New(cfg *config.IndexerConfig, logger *slog.Logger, s store.Store, source mq.Source) *Indexer {
	decimals := handler.NewDecimalsResolver(cfg.DefaultDecimals, cfg.AssetDecimals, cfg.DecimalsCacheSize)
	i := &Indexer{
		logger:            logger.With("module", "indexer"),
		store:             s,
		source:            source,
		dispatcher:        dispatcher.New(logger, decimals),
		cursorName:        cfg.CursorName,
		maxRetries:        cfg.GetMaxRetries(),
		reconcileInterval: cfg.GetReconcileInterval(),
		events:            make(chan mq.Message, types.EventBufferSize),
		reconcile:         make(chan []string, types.ReconcileQueueSize),
	}
	i.status.Store(&Status{Cursor: cfg.CursorName})
	return i
}

// Status returns the last committed cursor.
func (i *Indexer) Status() Status {
	return *i.status.Load()
}

// RequestReconcile queues a holder reconciliation of assets, or of every asset
// when none are given. It reports false when the queue is full.
func (i *Indexer) RequestReconcile(assets ...string) bool {
	select {
	case i.reconcile <- assets:
		return true
	default:
		return false
	}
}

// Run applies events until ctx is done, the source is exhausted or an event
// cannot be applied.
func (i *Indexer) Run(ctx context.Context) error {
	if err := i.loadStatus(ctx); err != nil {
		return err
	}
	metrics.SetComponentHealth("indexer", true)
	defer metrics.SetComponentHealth("indexer", false)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return i.fetch(ctx)
	})
	g.Go(func() error {
		return i.process(ctx)
	})
	return g.Wait()
}

func (i *Indexer) loadStatus(ctx context.Context) error {
	cursor, err := repository.Load[types.ProcessingCursor](ctx, i.store, i.cursorName)
	if errors.Is(err, store.ErrNotFound) {
		i.logger.Info("no cursor stored, starting from the first event", slog.String("cursor", i.cursorName))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cursor %s: %w", i.cursorName, err)
	}
	i.publishStatus(cursor)
	i.logger.Info("resuming from cursor",
		slog.String("cursor", i.cursorName),
		slog.String("position", i.Status().Position.String()))
	return nil
}

func (i *Indexer) publishStatus(cursor *types.ProcessingCursor) {
	i.status.Store(&Status{
		Cursor:          cursor.ID,
		Position:        types.Position{BlockNumber: cursor.BlockNumber, LogIndex: cursor.LogIndex},
		TxHash:          cursor.TxHash,
		Started:         cursor.Applied,
		EventsProcessed: cursor.EventsProcessed.Int64(),
		LastEventAt:     cursor.UpdatedAt,
		UpdatedAt:       time.Now().UTC(),
	})
	metrics.Indexer().CurrentBlockNumber.Set(float64(cursor.BlockNumber))
}

// fetch only reads from the source; all writes happen in process.
func (i *Indexer) fetch(ctx context.Context) error {
	defer metrics.RecoverFromPanic("source")
	defer close(i.events)
	for {
		msg, err := i.source.Fetch(ctx)
		switch {
		case errors.Is(err, io.EOF):
			i.logger.Info("event source exhausted")
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			i.logger.Error("failed to fetch event", slog.Any("error", err))
			metrics.Indexer().ProcessingErrors.WithLabelValues("fetch", errorType(err)).Inc()
			metrics.TrackError("indexer", "fetch", err)
			return err
		}

		select {
		case i.events <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

func (i *Indexer) process(ctx context.Context) error {
	var tick <-chan time.Time
	if i.reconcileInterval > 0 {
		ticker := time.NewTicker(i.reconcileInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-i.events:
			if !ok {
				return nil
			}
			if err := i.handle(ctx, msg); err != nil {
				return err
			}
		case assets := <-i.reconcile:
			i.Reconcile(ctx, assets...)
		case <-tick:
			i.Reconcile(ctx)
		}
	}
}

func (i *Indexer) handle(ctx context.Context, msg mq.Message) error {
	ev := msg.Event
	if err := i.Apply(ctx, ev); err != nil {
		i.logger.Error("failed to apply event",
			slog.String("event", ev.Name),
			slog.String("id", ev.ID()),
			slog.String("position", ev.Position().String()),
			slog.Any("error", err))
		metrics.Indexer().ProcessingErrors.WithLabelValues("apply", errorType(err)).Inc()
		metrics.TrackError("indexer", "apply", err)
		sentry_integration.CaptureCurrentHubException(err, sentry.LevelFatal)
		return err
	}

	// a lost ack only causes a redelivery, which the cursor skips
	if err := msg.Ack(ctx); err != nil && ctx.Err() == nil {
		i.logger.Warn("failed to ack event", slog.String("id", ev.ID()), slog.Any("error", err))
		metrics.Indexer().ProcessingErrors.WithLabelValues("ack", errorType(err)).Inc()
	}
	return nil
}

type applyResult struct {
	outcome dispatcher.Outcome
	behind  bool
	cursor  *types.ProcessingCursor
}

// Apply runs ev through the dispatcher in its own unit of work and advances
// the cursor in the same unit. Transient store failures are retried.
func (i *Indexer) Apply(ctx context.Context, ev types.Event) error {
	defer func() {
		if r := recover(); r != nil {
			metrics.TrackPanic("indexer")
			sentry_integration.CapturePanic(r)
			panic(r) // re-panic
		}
	}()

	span, ctx := sentry_integration.StartSentrySpan(ctx, "applyEvent", ev.Source+"."+ev.Name+" at "+ev.Position().String())
	defer span.Finish()

	start := time.Now()
	var res applyResult
	err := i.withRetry(ctx, func() error {
		return i.store.Transaction(ctx, func(tx store.Store) error {
			var err error
			res, err = i.applyInTx(ctx, tx, ev)
			return err
		})
	})
	if err != nil {
		return err
	}

	indexerMetrics := metrics.Indexer()
	switch {
	case res.behind:
		indexerMetrics.EventsSkippedTotal.WithLabelValues("behind_cursor").Inc()
		return nil
	case res.outcome == dispatcher.Applied:
		indexerMetrics.EventsProcessedTotal.WithLabelValues(ev.Source, ev.Name).Inc()
		indexerMetrics.HandlerDuration.WithLabelValues(ev.Name).Observe(time.Since(start).Seconds())
	default:
		indexerMetrics.EventsSkippedTotal.WithLabelValues(res.outcome.String()).Inc()
	}
	i.publishStatus(res.cursor)
	return nil
}

func (i *Indexer) applyInTx(ctx context.Context, tx store.Store, ev types.Event) (applyResult, error) {
	cursor, _, err := repository.FetchOrCreate(ctx, tx, i.cursorName, func(c *types.ProcessingCursor) {
		c.ID = i.cursorName
	})
	if err != nil {
		return applyResult{}, err
	}

	pos := ev.Position()
	if cursor.Applied {
		applied := types.Position{BlockNumber: cursor.BlockNumber, LogIndex: cursor.LogIndex}
		switch cmp := pos.Compare(applied); {
		case cmp < 0:
			return applyResult{behind: true}, nil
		case cmp == 0 && cursor.TxHash != ev.TxHash.Hex():
			return applyResult{}, types.NewReorgError(pos.String(), cursor.TxHash, ev.TxHash.Hex())
		case cmp == 0:
			return applyResult{behind: true}, nil
		}
	}

	outcome, err := i.dispatcher.Dispatch(ctx, tx, ev)
	if err != nil {
		return applyResult{}, err
	}

	cursor.BlockNumber = ev.BlockNumber
	cursor.LogIndex = ev.LogIndex
	cursor.TxHash = ev.TxHash.Hex()
	cursor.Applied = true
	cursor.UpdatedAt = ev.Time()
	if outcome == dispatcher.Applied {
		cursor.EventsProcessed.Inc()
	}
	if err := tx.Put(ctx, cursor); err != nil {
		return applyResult{}, err
	}
	return applyResult{outcome: outcome, cursor: cursor}, nil
}

// withRetry runs fn until it succeeds, fails permanently or maxRetries
// retries are used up.
func (i *Indexer) withRetry(ctx context.Context, fn func() error) error {
	backoff := types.InitialRetryBackoff
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !store.IsRetryable(err) || attempt >= i.maxRetries {
			return err
		}

		i.logger.Warn("transient store failure, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
			slog.Any("error", err))
		metrics.Indexer().RetriesTotal.Inc()

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = min(backoff*2, types.MaxRetryBackoff)
	}
}

func errorType(err error) string {
	return metrics.ErrorType(err)
}
