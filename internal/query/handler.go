package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/example/catalog-aggregator/internal/cache"
	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/example/catalog-aggregator/internal/infrastructure/store"
	"github.com/example/catalog-aggregator/internal/readmodel"
	"github.com/shopspring/decimal"
)

const maxBatchIDs = 100

// Enricher merges live inventory into read models. It must not fail the read.
type Enricher interface {
	EnrichDetail(ctx context.Context, d *readmodel.ProductDetail)
	EnrichSummaries(ctx context.Context, items []readmodel.ProductSummary)
}

// Handler runs the read path: cache lookup, then fetch, load relations and
// assemble on a miss, then inventory enrichment on every response.
type Handler struct {
	products store.ProductStore
	reviews  store.ReviewStore
	catalog  store.CatalogStore
	loader   *Loader
	caches   *Caches
	enricher Enricher
	log      *slog.Logger
}

type Deps struct {
	Products  store.ProductStore
	Reviews   store.ReviewStore
	Catalog   store.CatalogStore
	Relations store.RelationSource
	Caches    *Caches
	Enricher  Enricher
	Log       *slog.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		products: d.Products,
		reviews:  d.Reviews,
		catalog:  d.Catalog,
		loader:   NewLoader(d.Relations),
		caches:   d.Caches,
		enricher: d.Enricher,
		log:      d.Log.With("component", "query"),
	}
}

// ============================================
// Single product
// ============================================

func (h *Handler) GetProduct(ctx context.Context, id string) (readmodel.ProductDetail, error) {
	if strings.TrimSpace(id) == "" {
		return readmodel.ProductDetail{}, &product.ValidationError{Field: "id", Reason: "is required", Value: id}
	}

	detail, err := h.caches.ProductByID.GetOrCompute(ctx, id, func(ctx context.Context) (readmodel.ProductDetail, error) {
		return h.loadDetail(ctx, id)
	})
	if err != nil {
		return readmodel.ProductDetail{}, err
	}

	// enrich a copy; the cached value stays as assembled
	h.enricher.EnrichDetail(ctx, &detail)
	return detail, nil
}

func (h *Handler) loadDetail(ctx context.Context, id string) (readmodel.ProductDetail, error) {
	row, err := h.products.FindByID(ctx, id)
	if err != nil {
		return readmodel.ProductDetail{}, err
	}
	batch, err := h.loader.Load(ctx, []product.CoreRow{row})
	if err != nil {
		return readmodel.ProductDetail{}, err
	}
	reviews, specs, err := h.loader.LoadDetail(ctx, id, readmodel.MaxDetailReviews)
	if err != nil {
		return readmodel.ProductDetail{}, err
	}
	return readmodel.Detail(row, batch, reviews, specs), nil
}

// GetProductsByIDs is uncached; all items are enriched with one batch call.
func (h *Handler) GetProductsByIDs(ctx context.Context, ids []string) ([]readmodel.ProductSummary, error) {
	const op = "Handler.GetProductsByIDs"
	log := h.log.With("op", op)

	if len(ids) == 0 {
		return []readmodel.ProductSummary{}, nil
	}
	if len(ids) > maxBatchIDs {
		return nil, &product.ValidationError{Field: "ids", Reason: "too many ids", Value: len(ids)}
	}

	rows, err := h.products.FindByIDs(ctx, ids)
	if err != nil {
		log.Error("failed to load products", "err", err)
		return nil, err
	}
	batch, err := h.loader.Load(ctx, rows)
	if err != nil {
		log.Error("failed to load relations", "err", err)
		return nil, err
	}

	items := readmodel.Summaries(rows, batch)
	h.enricher.EnrichSummaries(ctx, items)
	return items, nil
}

// ============================================
// Listings
// ============================================

func (h *Handler) ListProducts(ctx context.Context, p product.PageRequest, sortBy, direction string) (SummaryPage, error) {
	f := product.Filter{SortBy: sortBy, Direction: direction}
	return h.listing(ctx, h.caches.AllProducts, cache.Key(p.Page, p.Size, sortBy, direction), product.ListQuery{Filter: f, Page: p})
}

// FilterProducts falls back to the unfiltered listing when no filter is set.
func (h *Handler) FilterProducts(ctx context.Context, f product.Filter, p product.PageRequest) (SummaryPage, error) {
	if !f.HasFilters() {
		return h.ListProducts(ctx, p, f.SortBy, f.Direction)
	}
	return h.listing(ctx, h.caches.FilteredProducts, cache.Key(f.Fingerprint(), p.Page, p.Size), product.ListQuery{Filter: f, Page: p})
}

// SearchProducts returns an empty page for a blank keyword.
func (h *Handler) SearchProducts(ctx context.Context, keyword string, p product.PageRequest, sortBy, direction string) (SummaryPage, error) {
	keyword = strings.TrimSpace(keyword)
	f := product.Filter{Keyword: keyword, SortBy: sortBy, Direction: direction}
	if err := validate(f, p); err != nil {
		return SummaryPage{}, err
	}
	if keyword == "" {
		return readmodel.EmptyPage[readmodel.ProductSummary](p), nil
	}
	return h.listing(ctx, h.caches.SearchResults, cache.Key(f.Fingerprint(), p.Page, p.Size), product.ListQuery{Filter: f, Page: p})
}

func (h *Handler) ProductsByCategory(ctx context.Context, categoryID string, p product.PageRequest) (SummaryPage, error) {
	f := product.Filter{CategoryIDs: []string{categoryID}}
	return h.listing(ctx, h.caches.ProductsByCategory, cache.Key(categoryID, p.Page, p.Size), product.ListQuery{Filter: f, Page: p})
}

func (h *Handler) ProductsByBrand(ctx context.Context, brandID string, p product.PageRequest) (SummaryPage, error) {
	f := product.Filter{BrandIDs: []string{brandID}}
	return h.listing(ctx, h.caches.ProductsByBrand, cache.Key(brandID, p.Page, p.Size), product.ListQuery{Filter: f, Page: p})
}

func (h *Handler) ProductsByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, p product.PageRequest) (SummaryPage, error) {
	f := product.Filter{MinPrice: &minPrice, MaxPrice: &maxPrice}
	key := cache.Key(minPrice.String(), maxPrice.String(), p.Page, p.Size)
	return h.listing(ctx, h.caches.ProductsByPriceRange, key, product.ListQuery{Filter: f, Page: p})
}

func (h *Handler) TopSelling(ctx context.Context, f product.Filter, p product.PageRequest) (SummaryPage, error) {
	return h.ranked(ctx, product.ListingTopSelling, h.caches.TopSelling, h.caches.TopSellingFiltered, f, p)
}

func (h *Handler) TopRated(ctx context.Context, f product.Filter, p product.PageRequest) (SummaryPage, error) {
	return h.ranked(ctx, product.ListingTopRated, h.caches.TopRated, h.caches.TopRatedFiltered, f, p)
}

func (h *Handler) NewArrivals(ctx context.Context, f product.Filter, p product.PageRequest) (SummaryPage, error) {
	return h.ranked(ctx, product.ListingNewArrivals, h.caches.NewArrivals, h.caches.NewArrivalsFiltered, f, p)
}

// ranked uses the plain namespace when no filter is set and the filtered one otherwise.
func (h *Handler) ranked(ctx context.Context, l product.Listing, plain, filtered *cache.Namespace[SummaryPage], f product.Filter, p product.PageRequest) (SummaryPage, error) {
	q := product.ListQuery{Filter: f, Listing: l, Page: p}
	if !f.HasFilters() {
		return h.listing(ctx, plain, cache.Key(p.Page, p.Size), q)
	}
	return h.listing(ctx, filtered, cache.Key(f.Fingerprint(), p.Page, p.Size), q)
}

func (h *Handler) listing(ctx context.Context, ns *cache.Namespace[SummaryPage], key string, q product.ListQuery) (SummaryPage, error) {
	if err := validate(q.Filter, q.Page); err != nil {
		return SummaryPage{}, err
	}

	page, err := ns.GetOrCompute(ctx, key, func(ctx context.Context) (SummaryPage, error) {
		return h.loadPage(ctx, ns.Name(), q), nil
	})
	if err != nil {
		// the loader never fails; anything here came from the cache itself
		h.log.Error("cache lookup failed", "cache", ns.Name(), "key", key, "err", err)
		page = h.loadPage(ctx, ns.Name(), q)
	}

	// copy the content so enrichment never writes into a cached page
	page.Content = append([]readmodel.ProductSummary(nil), page.Content...)
	h.enricher.EnrichSummaries(ctx, page.Content)
	return page, nil
}

// loadPage degrades to an empty page on any store or relation fault.
func (h *Handler) loadPage(ctx context.Context, cacheName string, q product.ListQuery) SummaryPage {
	const op = "Handler.loadPage"
	log := h.log.With("op", op, "cache", cacheName)

	rows, total, err := h.products.FindPage(ctx, q)
	if err != nil {
		log.Error("listing query failed, returning empty page", "err", err)
		return readmodel.EmptyPage[readmodel.ProductSummary](q.Page)
	}

	batch, err := h.loader.Load(ctx, rows)
	if err != nil {
		log.Error("relation load failed, returning empty page", "err", err)
		return readmodel.EmptyPage[readmodel.ProductSummary](q.Page)
	}

	return readmodel.NewPage(readmodel.Summaries(rows, batch), product.NewPageInfo(q.Page, total))
}

func validate(f product.Filter, p product.PageRequest) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return f.Validate()
}

// ============================================
// Reviews
// ============================================

func (h *Handler) ReviewsByProduct(ctx context.Context, productID string, sort store.ReviewSort, p product.PageRequest) (ReviewPage, error) {
	if err := p.Validate(); err != nil {
		return ReviewPage{}, err
	}
	sort = sort.Normalize()
	key := cache.Key(productID, p.Page, p.Size, sort)
	return h.reviewPage(ctx, h.caches.ReviewsByProduct, key, p, func(ctx context.Context) ([]product.Review, int64, error) {
		return h.reviews.FindByProduct(ctx, productID, sort, p)
	})
}

func (h *Handler) ReviewsByUser(ctx context.Context, userID string, p product.PageRequest) (ReviewPage, error) {
	if err := p.Validate(); err != nil {
		return ReviewPage{}, err
	}
	key := cache.Key(userID, p.Page, p.Size)
	return h.reviewPage(ctx, h.caches.ReviewsByUser, key, p, func(ctx context.Context) ([]product.Review, int64, error) {
		return h.reviews.FindByUser(ctx, userID, p)
	})
}

func (h *Handler) reviewPage(ctx context.Context, ns *cache.Namespace[ReviewPage], key string, p product.PageRequest, find func(context.Context) ([]product.Review, int64, error)) (ReviewPage, error) {
	const op = "Handler.reviewPage"

	return ns.GetOrCompute(ctx, key, func(ctx context.Context) (ReviewPage, error) {
		reviews, total, err := find(ctx)
		if err != nil {
			h.log.Error("review query failed, returning empty page", "op", op, "cache", ns.Name(), "err", err)
			return readmodel.EmptyPage[readmodel.ReviewView](p), nil
		}
		return readmodel.NewPage(readmodel.Reviews(reviews), product.NewPageInfo(p, total)), nil
	})
}

// ============================================
// Brands / categories
// ============================================

func (h *Handler) GetBrand(ctx context.Context, id string) (readmodel.BrandView, error) {
	b, err := h.catalog.BrandByID(ctx, id)
	if err != nil {
		return readmodel.BrandView{}, err
	}
	return readmodel.BrandView{ID: b.ID, Name: b.Name, Slug: b.Slug, LogoURL: b.LogoURL}, nil
}

func (h *Handler) GetCategory(ctx context.Context, id string) (readmodel.CategoryView, error) {
	c, err := h.catalog.CategoryByID(ctx, id)
	if err != nil {
		return readmodel.CategoryView{}, err
	}
	return readmodel.CategoryView{ID: c.ID, Name: c.Name, URL: c.URL, ParentID: c.ParentID, Level: c.Level}, nil
}
