// Package api serves the indexer's read-only status endpoints and accepts
// reconcile requests.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/indexer/api/handler"
	"github.com/assetkit/assetindexer/metrics"
	"github.com/assetkit/assetindexer/store"
)

type Api struct {
	app    *fiber.App
	cfg    *config.Config
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger, engine handler.Engine, s store.Store) *Api {
	logger = logger.With("module", "api")
	app := fiber.New(fiber.Config{
		AppName:               "Asset Indexer API",
		DisableStartupMessage: true,
		ErrorHandler:          createErrorHandler(logger),
	})

	app.Use(metricsMiddleware)
	app.Get("/health", health)
	handler.New(engine, s, logger, cfg.GetCacheTTL()).Register(app)

	return &Api{
		app:    app,
		cfg:    cfg,
		logger: logger,
	}
}

// createErrorHandler creates the error handler function for the fiber app
func createErrorHandler(logger *slog.Logger) func(c *fiber.Ctx, err error) error {
	return func(c *fiber.Ctx, err error) error {
		errString := err.Error()
		if !strings.HasPrefix(errString, "Cannot GET") {
			logger.Error(errString, "path", c.Path(), "method", c.Method())
		}

		code := fiber.StatusInternalServerError
		e := &fiber.Error{}
		if errors.As(err, &e) {
			code = e.Code
		}

		if code >= fiber.StatusInternalServerError {
			return c.Status(code).SendString("Internal Server Error")
		}
		return c.Status(code).SendString(errString)
	}
}

func metricsMiddleware(c *fiber.Ctx) error {
	httpMetrics := metrics.GetMetrics().HTTP
	httpMetrics.RequestsInFlight.Inc()
	defer httpMetrics.RequestsInFlight.Dec()

	start := time.Now()
	err := c.Next()
	if err != nil {
		// run the error handler so the recorded status is the one sent
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	pattern := metrics.GetHandlerPattern(c.Path())
	httpMetrics.RequestDuration.WithLabelValues(c.Method(), pattern).Observe(time.Since(start).Seconds())
	httpMetrics.RequestsTotal.WithLabelValues(c.Method(), pattern, metrics.GetStatusClass(c.Response().StatusCode())).Inc()
	return nil
}

// health handles GET /health
func health(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// Test serves req without a listener.
func (a *Api) Test(req *http.Request) (*http.Response, error) {
	return a.app.Test(req, -1)
}

func (a *Api) Start() error {
	listenAddr := ":" + a.cfg.GetListenPort()
	a.logger.Info("starting API server", slog.String("addr", listenAddr))
	return a.app.Listen(listenAddr)
}

func (a *Api) Shutdown() error {
	return a.app.Shutdown()
}
