package api

import (
	"log/slog"

	"github.com/example/catalog-aggregator/internal/api/middleware"
	"github.com/example/catalog-aggregator/internal/auth"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func NewRouter(handlers *Handlers, admin *AdminHandlers, jwtService *auth.JWTService, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))

	v1 := e.Group("/api/v1")

	// Products
	v1.GET("/products", handlers.ListProducts)
	v1.GET("/products/filter", handlers.FilterProducts)
	v1.GET("/products/search", handlers.SearchProducts)
	v1.POST("/products/batch", handlers.GetProductsBatch)
	v1.GET("/products/category/:categoryId", handlers.ProductsByCategory)
	v1.GET("/products/brand/:brandId", handlers.ProductsByBrand)
	v1.GET("/products/price-range", handlers.ProductsByPriceRange)
	v1.GET("/products/top-selling", handlers.TopSelling)
	v1.GET("/products/top-rated", handlers.TopRated)
	v1.GET("/products/new-arrivals", handlers.NewArrivals)
	v1.GET("/products/:id", handlers.GetProduct)
	v1.GET("/products/:id/reviews", handlers.ReviewsByProduct)

	// Reviews
	v1.GET("/users/:userId/reviews", handlers.ReviewsByUser)

	// Catalog
	v1.GET("/brands/:id", handlers.GetBrand)
	v1.GET("/categories/:id", handlers.GetCategory)

	// Admin
	adm := v1.Group("/admin", middleware.AuthJWT(jwtService), middleware.RequireRole(auth.RoleAdmin))
	adm.GET("/caches", admin.CacheStats)
	adm.DELETE("/caches", admin.ClearAllCaches)
	adm.DELETE("/caches/:name", admin.ClearCache)

	return e
}
