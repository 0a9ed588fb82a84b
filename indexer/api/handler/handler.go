package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/assetkit/assetindexer/cache"
	"github.com/assetkit/assetindexer/indexer"
	"github.com/assetkit/assetindexer/store"
)

const holdersCacheSize = 1024

// Engine is the part of the indexer the API reads from and signals.
type Engine interface {
	Status() indexer.Status
	RequestReconcile(assets ...string) bool
}

type Handler struct {
	engine  Engine
	store   store.Store
	logger  *slog.Logger
	holders *cache.TTLCache[string, HoldersResponse]
}

func New(engine Engine, s store.Store, logger *slog.Logger, cacheTTL time.Duration) *Handler {
	return &Handler{
		engine:  engine,
		store:   s,
		logger:  logger,
		holders: cache.NewTTL[string, HoldersResponse](holdersCacheSize, cacheTTL),
	}
}

func (h *Handler) Register(router fiber.Router) {
	router.Get("/status", cache.Middleware(250*time.Millisecond), h.GetStatus)

	assets := router.Group("/assets/:asset")
	assets.Get("/holders", h.GetHolders)
	assets.Post("/reconcile", h.PostReconcile)
	assets.Get("/stats", h.GetStats)
}
