package query

import (
	"fmt"
	"time"

	"github.com/example/catalog-aggregator/internal/cache"
	"github.com/example/catalog-aggregator/internal/config"
	"github.com/example/catalog-aggregator/internal/readmodel"
)

// Namespace names, as exposed by the cache admin API.
const (
	CacheProductByID          = "productById"
	CacheProductsByCategory   = "productsByCategory"
	CacheProductsByBrand      = "productsByBrand"
	CacheProductsByPriceRange = "productsByPriceRange"
	CacheAllProducts          = "allProducts"
	CacheFilteredProducts     = "filteredProducts"
	CacheSearchResults        = "searchResults"
	CacheTopSellingProducts   = "topSellingProducts"
	CacheTopSellingFiltered   = "topSellingFiltered"
	CacheTopRatedProducts     = "topRatedProducts"
	CacheTopRatedFiltered     = "topRatedFiltered"
	CacheNewArrivals          = "newArrivals"
	CacheNewArrivalsFiltered  = "newArrivalsFiltered"
	CacheReviewsByProduct     = "reviewsByProduct"
	CacheReviewsByUser        = "reviewsByUser"
)

type (
	SummaryPage = readmodel.Page[readmodel.ProductSummary]
	ReviewPage  = readmodel.Page[readmodel.ReviewView]
)

// builtinSizes are the namespaces that differ from the configured defaults.
var builtinSizes = map[string]config.NamespaceConfig{
	CacheProductByID:        {TTL: time.Hour, Capacity: 1000},
	CacheProductsByCategory: {TTL: 15 * time.Minute, Capacity: 200},
}

// Caches holds every namespace used by the read path.
type Caches struct {
	ProductByID          *cache.Namespace[readmodel.ProductDetail]
	ProductsByCategory   *cache.Namespace[SummaryPage]
	ProductsByBrand      *cache.Namespace[SummaryPage]
	ProductsByPriceRange *cache.Namespace[SummaryPage]
	AllProducts          *cache.Namespace[SummaryPage]
	FilteredProducts     *cache.Namespace[SummaryPage]
	SearchResults        *cache.Namespace[SummaryPage]
	TopSelling           *cache.Namespace[SummaryPage]
	TopSellingFiltered   *cache.Namespace[SummaryPage]
	TopRated             *cache.Namespace[SummaryPage]
	TopRatedFiltered     *cache.Namespace[SummaryPage]
	NewArrivals          *cache.Namespace[SummaryPage]
	NewArrivalsFiltered  *cache.Namespace[SummaryPage]
	ReviewsByProduct     *cache.Namespace[ReviewPage]
	ReviewsByUser        *cache.Namespace[ReviewPage]

	Registry *cache.Registry
}

func NewCaches(cfg config.CacheConfig) (*Caches, error) {
	const op = "query.NewCaches"

	b := &cacheBuilder{cfg: cfg, registry: cache.NewRegistry()}
	c := &Caches{
		ProductByID:          newNamespace[readmodel.ProductDetail](b, CacheProductByID),
		ProductsByCategory:   newPageNamespace[readmodel.ProductSummary](b, CacheProductsByCategory),
		ProductsByBrand:      newPageNamespace[readmodel.ProductSummary](b, CacheProductsByBrand),
		ProductsByPriceRange: newPageNamespace[readmodel.ProductSummary](b, CacheProductsByPriceRange),
		AllProducts:          newPageNamespace[readmodel.ProductSummary](b, CacheAllProducts),
		FilteredProducts:     newPageNamespace[readmodel.ProductSummary](b, CacheFilteredProducts),
		SearchResults:        newPageNamespace[readmodel.ProductSummary](b, CacheSearchResults),
		TopSelling:           newPageNamespace[readmodel.ProductSummary](b, CacheTopSellingProducts),
		TopSellingFiltered:   newPageNamespace[readmodel.ProductSummary](b, CacheTopSellingFiltered),
		TopRated:             newPageNamespace[readmodel.ProductSummary](b, CacheTopRatedProducts),
		TopRatedFiltered:     newPageNamespace[readmodel.ProductSummary](b, CacheTopRatedFiltered),
		NewArrivals:          newPageNamespace[readmodel.ProductSummary](b, CacheNewArrivals),
		NewArrivalsFiltered:  newPageNamespace[readmodel.ProductSummary](b, CacheNewArrivalsFiltered),
		ReviewsByProduct:     newPageNamespace[readmodel.ReviewView](b, CacheReviewsByProduct),
		ReviewsByUser:        newPageNamespace[readmodel.ReviewView](b, CacheReviewsByUser),
		Registry:             b.registry,
	}
	if b.err != nil {
		return nil, fmt.Errorf("%s: %w", op, b.err)
	}
	return c, nil
}

type cacheBuilder struct {
	cfg      config.CacheConfig
	registry *cache.Registry
	err      error
}

func (b *cacheBuilder) config(name string) cache.Config {
	size := config.NamespaceConfig{TTL: b.cfg.DefaultTTL, Capacity: b.cfg.DefaultCapacity}
	if builtin, ok := builtinSizes[name]; ok {
		size = builtin
	}
	if override, ok := b.cfg.Namespace(name); ok {
		if override.TTL > 0 {
			size.TTL = override.TTL
		}
		if override.Capacity > 0 {
			size.Capacity = override.Capacity
		}
	}

	return cache.Config{
		Name:               name,
		TTL:                size.TTL,
		Capacity:           size.Capacity,
		NumShards:          min(b.cfg.NumShards, size.Capacity),
		EvictionPercentage: b.cfg.EvictionPercentage,
	}
}

func newNamespace[T any](b *cacheBuilder, name string, opts ...cache.Option[T]) *cache.Namespace[T] {
	if b.err != nil {
		return nil
	}
	ns, err := cache.New[T](b.config(name), opts...)
	if err != nil {
		b.err = err
		return nil
	}
	if err := b.registry.Register(ns); err != nil {
		b.err = err
		return nil
	}
	return ns
}

// newPageNamespace never stores empty pages.
func newPageNamespace[T any](b *cacheBuilder, name string) *cache.Namespace[readmodel.Page[T]] {
	return newNamespace[readmodel.Page[T]](b, name, cache.SkipWhen(func(p readmodel.Page[T]) bool { return p.IsEmpty() }))
}
