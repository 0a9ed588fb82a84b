package log

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog"

	"github.com/assetkit/assetindexer/config"
)

// NewLogger writes to stderr. Every record carries the cursor name so that
// several indexers can share one sink.
func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stderr, cfg.GetLogFormat(), cfg.GetLogLevel()).
		With(slog.String("cursor", cfg.GetCursorName()), slog.String("version", config.Version))
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w)
	return slog.New(slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler())
}
