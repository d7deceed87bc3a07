package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/example/catalog-aggregator/internal/api/middleware"
	"github.com/example/catalog-aggregator/internal/cache"
	"github.com/labstack/echo/v4"
)

// AdminHandlers exposes cache statistics and manual eviction.
type AdminHandlers struct {
	registry *cache.Registry
	log      *slog.Logger
}

func NewAdminHandlers(registry *cache.Registry, log *slog.Logger) *AdminHandlers {
	return &AdminHandlers{registry: registry, log: log.With("component", "admin")}
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *AdminHandlers) CacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.Stats())
}

func (h *AdminHandlers) ClearCache(c echo.Context) error {
	name := c.Param("name")
	if !h.registry.Clear(name) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("cache %q not found", name))
	}
	h.log.Info("cache cleared", "cache", name, "by", subject(c))
	return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("cache %q cleared", name)})
}

func (h *AdminHandlers) ClearAllCaches(c echo.Context) error {
	h.registry.ClearAll()
	h.log.Info("all caches cleared", "by", subject(c))
	return c.JSON(http.StatusOK, messageResponse{Message: "all caches cleared"})
}

func subject(c echo.Context) string {
	if claims, ok := middleware.GetClaims(c); ok {
		return claims.Subject
	}
	return ""
}
