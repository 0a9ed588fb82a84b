package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	dbconfig "github.com/assetkit/assetindexer/orm/config"
	"github.com/assetkit/assetindexer/types"
)

var (
	Version    = "dev"
	CommitHash = "unknown"

	// Singleton instance
	configInstance *Config
	configOnce     sync.Once
)

// Default configuration constants
const (
	// Port settings
	DefaultAPIPort     = "8080"
	DefaultMetricsPort = "9090"
	MinPortNumber      = 1
	MaxPortNumber      = 65535

	// Database settings
	DefaultDBDriver    = dbconfig.DriverPostgres
	DefaultDBMaxConns  = 0 // 0 means unlimited (GORM default)
	DefaultDBIdleConns = 2 // GORM default
	DefaultDBBatchSize = 100

	// Source settings
	DefaultSourceType = SourceKafka
	DefaultKafkaStart = "first"
	DefaultCursorName = "default"

	// Indexer settings
	DefaultDecimals          = 18
	DefaultDecimalsCacheSize = 4096
	DefaultMaxRetries        = 5
	DefaultReconcileInterval = 0

	// Cache settings
	DefaultCacheTTL = 30 * time.Second

	// Metrics settings
	DefaultMetricsPath = "/metrics"

	// Default environment
	DefaultEnvironment = "local"
)

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
	Port    string `json:"port"`
}

// SentryConfig contains configuration for Sentry integration
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	SampleRate       float64 `json:"sample_rate"`        // Error event sample rate
	TracesSampleRate float64 `json:"traces_sample_rate"` // Traces sample rate
	Environment      string  `json:"environment"`
}

func SetBuildInfo(v, commit string) {
	Version = v
	CommitHash = commit
}

type Config struct {
	listenPort    string
	dbConfig      *dbconfig.Config
	sourceConfig  *SourceConfig
	indexerConfig *IndexerConfig
	logLevel      string
	logFormat     string
	cacheTTL      time.Duration // for api only
	metricsConfig *MetricsConfig
	sentryConfig  *SentryConfig
}

func setDefaults() {
	viper.SetDefault("PORT", DefaultAPIPort)
	viper.SetDefault("DB_DRIVER", DefaultDBDriver)
	viper.SetDefault("DB_AUTO_MIGRATE", false)
	viper.SetDefault("DB_BATCH_SIZE", DefaultDBBatchSize)
	viper.SetDefault("DB_MAX_CONNS", DefaultDBMaxConns)
	viper.SetDefault("DB_IDLE_CONNS", DefaultDBIdleConns)
	viper.SetDefault("DB_MIGRATION_DIR", "")
	viper.SetDefault("SOURCE_TYPE", DefaultSourceType)
	viper.SetDefault("KAFKA_START", DefaultKafkaStart)
	viper.SetDefault("CURSOR_NAME", DefaultCursorName)
	viper.SetDefault("DEFAULT_DECIMALS", DefaultDecimals)
	viper.SetDefault("DECIMALS_CACHE_SIZE", DefaultDecimalsCacheSize)
	viper.SetDefault("MAX_RETRIES", DefaultMaxRetries)
	viper.SetDefault("RECONCILE_INTERVAL", DefaultReconcileInterval)
	viper.SetDefault("LOG_LEVEL", "warn")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("CACHE_TTL", DefaultCacheTTL)
	viper.SetDefault("METRICS_ENABLED", false)
	viper.SetDefault("METRICS_PATH", DefaultMetricsPath)
	viper.SetDefault("METRICS_PORT", DefaultMetricsPort)
	viper.SetDefault("ENVIRONMENT", DefaultEnvironment)

	// Sentry defaults
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("SENTRY_SAMPLE_RATE", 1.0)
	viper.SetDefault("SENTRY_TRACES_SAMPLE_RATE", 0.01)

	// DB_DSN, KAFKA_BROKERS, KAFKA_TOPIC, KAFKA_GROUP_ID and EVENTS_FILE have no defaults
}

func GetConfig() (*Config, error) {
	var err error

	configOnce.Do(func() {
		configInstance, err = loadConfig()
	})

	return configInstance, err
}

func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// just log without panic, local testing purpose only
		fmt.Fprintln(os.Stderr, "No .env file found")
	}
	viper.AutomaticEnv()
	setDefaults()

	dc := &dbconfig.Config{
		Driver:       viper.GetString("DB_DRIVER"),
		DSN:          viper.GetString("DB_DSN"),
		AutoMigrate:  viper.GetBool("DB_AUTO_MIGRATE"),
		MaxConns:     viper.GetInt("DB_MAX_CONNS"),
		IdleConns:    viper.GetInt("DB_IDLE_CONNS"),
		BatchSize:    viper.GetInt("DB_BATCH_SIZE"),
		MigrationDir: viper.GetString("DB_MIGRATION_DIR"),
	}

	sc := &SourceConfig{
		Type:       viper.GetString("SOURCE_TYPE"),
		Brokers:    splitList(viper.GetString("KAFKA_BROKERS")),
		Topic:      viper.GetString("KAFKA_TOPIC"),
		GroupID:    viper.GetString("KAFKA_GROUP_ID"),
		Start:      viper.GetString("KAFKA_START"),
		EventsFile: viper.GetString("EVENTS_FILE"),
	}

	defaultDecimals := viper.GetInt("DEFAULT_DECIMALS")
	if defaultDecimals < 0 || defaultDecimals > 255 {
		return nil, types.NewInvalidValueError("DEFAULT_DECIMALS", strconv.Itoa(defaultDecimals), "must be between 0 and 255")
	}
	assetDecimals, err := parseAssetDecimals(viper.GetString("ASSET_DECIMALS"))
	if err != nil {
		return nil, err
	}

	ic := &IndexerConfig{
		CursorName:        viper.GetString("CURSOR_NAME"),
		MaxRetries:        viper.GetInt("MAX_RETRIES"),
		ReconcileInterval: viper.GetDuration("RECONCILE_INTERVAL"),
		DefaultDecimals:   uint8(defaultDecimals),
		AssetDecimals:     assetDecimals,
		DecimalsCacheSize: viper.GetInt("DECIMALS_CACHE_SIZE"),
	}

	config := &Config{
		listenPort:    viper.GetString("PORT"),
		dbConfig:      dc,
		sourceConfig:  sc,
		indexerConfig: ic,
		logLevel:      viper.GetString("LOG_LEVEL"),
		logFormat:     viper.GetString("LOG_FORMAT"),
		cacheTTL:      viper.GetDuration("CACHE_TTL"),
		metricsConfig: &MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
			Path:    viper.GetString("METRICS_PATH"),
			Port:    viper.GetString("METRICS_PORT"),
		},
		sentryConfig: &SentryConfig{
			DSN:              viper.GetString("SENTRY_DSN"),
			SampleRate:       viper.GetFloat64("SENTRY_SAMPLE_RATE"),
			TracesSampleRate: viper.GetFloat64("SENTRY_TRACES_SAMPLE_RATE"),
			Environment:      viper.GetString("ENVIRONMENT"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c Config) GetListenPort() string {
	return c.listenPort
}

// SetDBConfig assigns the DB config for testing purposes.
func (c *Config) SetDBConfig(dbCfg *dbconfig.Config) {
	c.dbConfig = dbCfg
}

func (c Config) GetDBConfig() *dbconfig.Config {
	return c.dbConfig
}

// SetSourceConfig assigns the source config for testing purposes.
func (c *Config) SetSourceConfig(sourceCfg *SourceConfig) {
	c.sourceConfig = sourceCfg
}

func (c Config) GetSourceConfig() *SourceConfig {
	return c.sourceConfig
}

// SetIndexerConfig assigns the indexer config for testing purposes.
func (c *Config) SetIndexerConfig(indexerCfg *IndexerConfig) {
	c.indexerConfig = indexerCfg
}

func (c Config) GetIndexerConfig() *IndexerConfig {
	return c.indexerConfig
}

func (c Config) GetCursorName() string {
	if c.indexerConfig == nil {
		return DefaultCursorName
	}
	return c.indexerConfig.CursorName
}

func (c Config) GetDBBatchSize() int {
	return c.dbConfig.BatchSize
}

func (c Config) GetCacheTTL() time.Duration {
	return c.cacheTTL
}

func (c Config) GetSentryConfig() *SentryConfig {
	if c.sentryConfig == nil || c.sentryConfig.DSN == "" {
		return nil
	}
	return c.sentryConfig
}

func (c Config) GetLogLevel() slog.Level {
	switch c.logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func (c Config) GetMetricsConfig() *MetricsConfig {
	return c.metricsConfig
}

func (c Config) GetLogFormat() string {
	if c.logFormat == "json" {
		return "json"
	}
	return "plain"
}

func (c Config) Validate() error {
	if err := c.validatePort(); err != nil {
		return err
	}
	if err := c.validateLogSettings(); err != nil {
		return err
	}
	if err := c.validateNumericSettings(); err != nil {
		return err
	}
	if err := c.validateMetricsConfig(); err != nil {
		return err
	}
	if err := c.validateSubConfigs(); err != nil {
		return err
	}
	return nil
}

// validatePort validates the listen port configuration
func (c Config) validatePort() error {
	if len(c.listenPort) == 0 {
		return types.NewValidationError("PORT", "required field is missing")
	}
	if port, err := strconv.Atoi(c.listenPort); err != nil || port < MinPortNumber || port > MaxPortNumber {
		return types.NewValidationError("PORT", fmt.Sprintf("must be a valid port number (%d-%d)", MinPortNumber, MaxPortNumber))
	}
	return nil
}

// validateLogSettings validates log format and level configuration
func (c Config) validateLogSettings() error {
	switch c.logFormat {
	case "json", "plain":
	default:
		return types.NewValidationError("LOG_FORMAT", fmt.Sprintf("invalid value '%s', must be 'json' or 'plain'", c.logFormat))
	}

	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return types.NewValidationError("LOG_LEVEL", fmt.Sprintf("invalid value '%s', must be one of: debug, info, warn, error", c.logLevel))
	}
	return nil
}

func (c Config) validateNumericSettings() error {
	if c.cacheTTL < 0 {
		return types.NewValidationError("CACHE_TTL", "must be non-negative")
	}
	if c.sentryConfig != nil {
		if c.sentryConfig.SampleRate < 0 || c.sentryConfig.SampleRate > 1 {
			return types.NewValidationError("SENTRY_SAMPLE_RATE", "must be between 0 and 1")
		}
		if c.sentryConfig.TracesSampleRate < 0 || c.sentryConfig.TracesSampleRate > 1 {
			return types.NewValidationError("SENTRY_TRACES_SAMPLE_RATE", "must be between 0 and 1")
		}
	}
	return nil
}

// validateMetricsConfig validates metrics configuration
func (c Config) validateMetricsConfig() error {
	if c.metricsConfig != nil && c.metricsConfig.Enabled {
		if err := c.validateMetricsPort(); err != nil {
			return err
		}
		if err := c.validateMetricsPath(); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) validateMetricsPort() error {
	if port, err := strconv.Atoi(c.metricsConfig.Port); err != nil || port < MinPortNumber || port > MaxPortNumber {
		return types.NewValidationError("METRICS_PORT", fmt.Sprintf("must be a valid port number (%d-%d)", MinPortNumber, MaxPortNumber))
	}
	if c.metricsConfig.Port == c.listenPort {
		return types.NewValidationError("METRICS_PORT", fmt.Sprintf("metrics port %s conflicts with API port", c.metricsConfig.Port))
	}
	return nil
}

func (c Config) validateMetricsPath() error {
	if c.metricsConfig.Path == "" || c.metricsConfig.Path[0] != '/' {
		return types.NewValidationError("METRICS_PATH", "must start with '/'")
	}
	return nil
}

// validateSubConfigs validates nested configuration objects
func (c Config) validateSubConfigs() error {
	if err := c.dbConfig.Validate(); err != nil {
		return types.NewConfigError("invalid database config", err)
	}
	if err := c.sourceConfig.Validate(); err != nil {
		return err
	}
	if err := c.indexerConfig.Validate(); err != nil {
		return err
	}
	return nil
}
