package api

import (
	"context"
	"net/http"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/example/catalog-aggregator/internal/infrastructure/store"
	"github.com/example/catalog-aggregator/internal/query"
	"github.com/labstack/echo/v4"
)

type Handlers struct {
	queries *query.Handler
}

func NewHandlers(queries *query.Handler) *Handlers {
	return &Handlers{queries: queries}
}

// ============================================
// Products
// ============================================

func (h *Handlers) ListProducts(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return toHTTPError(err)
	}
	page, err := h.queries.ListProducts(c.Request().Context(), p, c.QueryParam("sortBy"), c.QueryParam("direction"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handlers) FilterProducts(c echo.Context) error {
	return h.filtered(c, h.queries.FilterProducts)
}

func (h *Handlers) SearchProducts(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return toHTTPError(err)
	}
	page, err := h.queries.SearchProducts(c.Request().Context(), c.QueryParam("q"), p, c.QueryParam("sortBy"), c.QueryParam("direction"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handlers) GetProduct(c echo.Context) error {
	detail, err := h.queries.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

type batchRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handlers) GetProductsBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	items, err := h.queries.GetProductsByIDs(c.Request().Context(), req.IDs)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handlers) ProductsByCategory(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return toHTTPError(err)
	}
	page, err := h.queries.ProductsByCategory(c.Request().Context(), c.Param("categoryId"), p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handlers) ProductsByBrand(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return toHTTPError(err)
	}
	page, err := h.queries.ProductsByBrand(c.Request().Context(), c.Param("brandId"), p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handlers) ProductsByPriceRange(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return toHTTPError(err)
	}
	minPrice, err := decimalParam(c, "minPrice")
	if err != nil {
		return toHTTPError(err)
	}
	maxPrice, err := decimalParam(c, "maxPrice")
	if err != nil {
		return toHTTPError(err)
	}
	if minPrice == nil || maxPrice == nil {
		return toHTTPError(&product.ValidationError{Field: "price", Reason: "minPrice and maxPrice are required"})
	}

	page, err := h.queries.ProductsByPriceRange(c.Request().Context(), *minPrice, *maxPrice, p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handlers) TopSelling(c echo.Context) error {
	return h.filtered(c, h.queries.TopSelling)
}

func (h *Handlers) TopRated(c echo.Context) error {
	return h.filtered(c, h.queries.TopRated)
}

func (h *Handlers) NewArrivals(c echo.Context) error {
	return h.filtered(c, h.queries.NewArrivals)
}

type filteredQuery func(ctx context.Context, f product.Filter, p product.PageRequest) (query.SummaryPage, error)

func (h *Handlers) filtered(c echo.Context, run filteredQuery) error {
	p, err := pageRequest(c)
	if err != nil {
		return toHTTPError(err)
	}
	f, err := filterFromQuery(c)
	if err != nil {
		return toHTTPError(err)
	}
	page, err := run(c.Request().Context(), f, p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// ============================================
// Reviews
// ============================================

func (h *Handlers) ReviewsByProduct(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return toHTTPError(err)
	}
	page, err := h.queries.ReviewsByProduct(c.Request().Context(), c.Param("id"), store.ReviewSort(c.QueryParam("sortBy")), p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handlers) ReviewsByUser(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return toHTTPError(err)
	}
	page, err := h.queries.ReviewsByUser(c.Request().Context(), c.Param("userId"), p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// ============================================
// Brands / categories
// ============================================

func (h *Handlers) GetBrand(c echo.Context) error {
	b, err := h.queries.GetBrand(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handlers) GetCategory(c echo.Context) error {
	cat, err := h.queries.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, cat)
}
