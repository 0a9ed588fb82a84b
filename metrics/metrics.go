package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/assetkit/assetindexer/config"
)

// DBStatsProvider interface for getting database statistics
type DBStatsProvider interface {
	GetDBStats() (*sql.DBStats, error)
}

// Metrics contains all metric groups
type Metrics struct {
	HTTP     *HTTPMetrics
	Database *DatabaseMetrics
	Indexer  *IndexerMetrics
	Error    *ErrorMetrics
}

var (
	registry *prometheus.Registry
	metrics  *Metrics

	dbStatsUpdater *DBStatsUpdater

	initOnce sync.Once

	// Cursor name used as the const label of every metric
	cursorName string
)

func constLabels() prometheus.Labels {
	if cursorName == "" {
		return nil
	}
	return prometheus.Labels{"cursor": cursorName}
}

// MetricsServer represents the Prometheus metrics HTTP server
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
	cfg    *config.MetricsConfig
}

// Init creates the registry and registers all metric groups. Only the first call
// has an effect.
func Init(cursor string) {
	initOnce.Do(func() {
		cursorName = cursor
		registry = prometheus.NewRegistry()

		metrics = &Metrics{
			HTTP:     NewHTTPMetrics(),
			Database: NewDatabaseMetrics(),
			Indexer:  NewIndexerMetrics(),
			Error:    NewErrorMetrics(),
		}

		metrics.HTTP.Register(registry)
		metrics.Database.Register(registry)
		metrics.Indexer.Register(registry)
		metrics.Error.Register(registry)

		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

func NewServer(cfg *config.Config, logger *slog.Logger) *MetricsServer {
	metricsConfig := cfg.GetMetricsConfig()

	Init(cfg.GetCursorName())

	mux := http.NewServeMux()
	mux.Handle(metricsConfig.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	server := &http.Server{
		Addr:              ":" + metricsConfig.Port,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return &MetricsServer{
		server: server,
		logger: logger.With("component", "metrics"),
		cfg:    metricsConfig,
	}
}

func (m *MetricsServer) Start() error {
	if !m.cfg.Enabled {
		m.logger.Info("metrics server disabled")
		return nil
	}

	m.logger.Info("starting metrics server",
		slog.String("addr", m.server.Addr),
		slog.String("path", m.cfg.Path))

	if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.logger.Info("shutting down metrics server")
	StopDBStatsUpdater()
	return m.server.Shutdown(ctx)
}

// GetMetrics returns the global metrics instance, initializing it without a
// cursor label when Init has not been called yet.
func GetMetrics() *Metrics {
	Init("")
	return metrics
}

// Registry returns the registry all metric groups are registered with.
func Registry() *prometheus.Registry {
	Init("")
	return registry
}

func StartDBStatsUpdater(provider DBStatsProvider, logger *slog.Logger) {
	if dbStatsUpdater != nil {
		return
	}

	dbStatsUpdater = NewDBStatsUpdater(provider, logger, GetMetrics().Database)
	dbStatsUpdater.Start()
}

func StopDBStatsUpdater() {
	if dbStatsUpdater != nil {
		dbStatsUpdater.Stop()
		dbStatsUpdater = nil
	}
}

// Indexer returns the event processing group of the global metrics.
func Indexer() *IndexerMetrics {
	return GetMetrics().Indexer
}
