package metrics

import "github.com/prometheus/client_golang/prometheus"

// ErrorMetrics tracks failures per component: "indexer", "source", "api".
type ErrorMetrics struct {
	Panics          *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	LastError       *prometheus.GaugeVec
	ComponentHealth *prometheus.GaugeVec
}

func NewErrorMetrics() *ErrorMetrics {
	return &ErrorMetrics{
		Panics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "assetindexer_panics_total",
				Help:        "Recovered panics by component",
				ConstLabels: constLabels(),
			},
			[]string{"component"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "assetindexer_errors_total",
				Help:        "Errors by component, stage and error type",
				ConstLabels: constLabels(),
			},
			[]string{"component", "stage", "error_type"},
		),
		LastError: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "assetindexer_last_error_timestamp_seconds",
				Help:        "Unix time of the last error of a component",
				ConstLabels: constLabels(),
			},
			[]string{"component"},
		),
		ComponentHealth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "assetindexer_component_health",
				Help:        "1 while the component runs, 0 once it stopped or panicked",
				ConstLabels: constLabels(),
			},
			[]string{"component"},
		),
	}
}

func (e *ErrorMetrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(e.Panics, e.Errors, e.LastError, e.ComponentHealth)
}
