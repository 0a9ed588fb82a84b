package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HandlerLatencyBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}
)

// IndexerMetrics groups event processing metrics
type IndexerMetrics struct {
	EventsProcessedTotal *prometheus.CounterVec
	EventsSkippedTotal   *prometheus.CounterVec
	HandlerDuration      *prometheus.HistogramVec
	CurrentBlockNumber   prometheus.Gauge

	RetriesTotal     prometheus.Counter
	ProcessingErrors *prometheus.CounterVec

	HolderDriftTotal     prometheus.Counter
	ReconciliationsTotal prometheus.Counter
	UnknownEnumCodes     *prometheus.CounterVec
}

func NewIndexerMetrics() *IndexerMetrics {
	return &IndexerMetrics{
		EventsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "assetindexer_events_processed_total",
				Help:        "Total number of events applied to the store",
				ConstLabels: constLabels(),
			},
			[]string{"source", "event"},
		),
		EventsSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "assetindexer_events_skipped_total",
				Help:        "Total number of delivered events that were not applied",
				ConstLabels: constLabels(),
			},
			[]string{"reason"}, // unrouted, replay, behind_cursor, malformed, before_start
		),
		HandlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "assetindexer_handler_duration_seconds",
				Help:        "Time spent applying one event, including the store transaction",
				Buckets:     HandlerLatencyBuckets,
				ConstLabels: constLabels(),
			},
			[]string{"event"},
		),
		CurrentBlockNumber: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "assetindexer_current_block_number",
				Help:        "Block number of the last applied event",
				ConstLabels: constLabels(),
			},
		),
		RetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "assetindexer_retries_total",
				Help:        "Total number of retried units of work after transient store failures",
				ConstLabels: constLabels(),
			},
		),
		ProcessingErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "assetindexer_processing_errors_total",
				Help:        "Total number of processing errors",
				ConstLabels: constLabels(),
			},
			[]string{"stage", "error_type"}, // stage: fetch, apply, ack, reconcile
		),
		HolderDriftTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "assetindexer_holder_drift_corrections_total",
				Help:        "Total number of holder counts corrected by reconciliation",
				ConstLabels: constLabels(),
			},
		),
		ReconciliationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "assetindexer_reconciliations_total",
				Help:        "Total number of asset holder reconciliations",
				ConstLabels: constLabels(),
			},
		),
		UnknownEnumCodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "assetindexer_unknown_enum_codes_total",
				Help:        "Total number of on-chain codes decoded to unknown",
				ConstLabels: constLabels(),
			},
			[]string{"enum"},
		),
	}
}

func (i *IndexerMetrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(
		i.EventsProcessedTotal,
		i.EventsSkippedTotal,
		i.HandlerDuration,
		i.CurrentBlockNumber,
		i.RetriesTotal,
		i.ProcessingErrors,
		i.HolderDriftTotal,
		i.ReconciliationsTotal,
		i.UnknownEnumCodes,
	)
}
