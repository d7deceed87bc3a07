package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/catalog-aggregator/internal/config"
	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/example/catalog-aggregator/internal/infrastructure/store"
	"github.com/example/catalog-aggregator/internal/infrastructure/store/mocks"
	"github.com/example/catalog-aggregator/internal/readmodel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEnricher overwrites statuses from a table and counts calls.
type stubEnricher struct {
	mu           sync.Mutex
	statuses     map[string]string
	detailCalls  int
	summaryCalls int
}

func (e *stubEnricher) EnrichDetail(ctx context.Context, d *readmodel.ProductDetail) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detailCalls++
	if s, ok := e.statuses[d.ID]; ok {
		d.InventoryStatus = s
	}
}

func (e *stubEnricher) EnrichSummaries(ctx context.Context, items []readmodel.ProductSummary) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.summaryCalls++
	for i := range items {
		if s, ok := e.statuses[items[i].ID]; ok {
			items[i].InventoryStatus = s
		}
	}
}

type testEnv struct {
	handler   *Handler
	products  *mocks.MockProductStore
	relations *mocks.MockRelationSource
	reviews   *mocks.MockReviewStore
	enricher  *stubEnricher
	caches    *Caches
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		DefaultTTL:         time.Minute,
		DefaultCapacity:    100,
		NumShards:          1,
		EvictionPercentage: 10,
	}
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

// seedProducts creates n products, each with five images and a brand.
func seedProducts(n int) ([]product.CoreRow, *mocks.MockRelationSource) {
	rows := make([]product.CoreRow, 0, n)
	rel := mocks.NewMockRelationSource()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%02d", i)
		rows = append(rows, product.CoreRow{
			ID:              id,
			Name:            "Product " + id,
			Price:           decimal.NewFromInt(int64(100 - i)),
			InventoryStatus: "IN_STOCK",
			BrandID:         strPtr("b1"),
		})
		rel.Images = append(rel.Images,
			product.Image{ID: id + "-n", ProductID: id},
			product.Image{ID: id + "-4", ProductID: id, Position: intPtr(4)},
			product.Image{ID: id + "-2", ProductID: id, Position: intPtr(2)},
			product.Image{ID: id + "-3", ProductID: id, Position: intPtr(3)},
			product.Image{ID: id + "-1", ProductID: id, Position: intPtr(1)},
		)
		rel.Categories = append(rel.Categories, product.CategorySummary{ProductID: id, ID: "c1", Name: "Home"})
	}
	rel.Brands = []product.Brand{{ID: "b1", Name: "Acme"}}
	return rows, rel
}

func newTestEnv(t *testing.T, n int) *testEnv {
	t.Helper()
	rows, rel := seedProducts(n)
	products := mocks.NewMockProductStore(rows...)
	reviews := mocks.NewMockReviewStore()
	enricher := &stubEnricher{statuses: map[string]string{}}
	caches, err := NewCaches(testCacheConfig())
	require.NoError(t, err)

	h := NewHandler(Deps{
		Products:  products,
		Reviews:   reviews,
		Catalog:   mocks.NewMockCatalogStore(),
		Relations: rel,
		Caches:    caches,
		Enricher:  enricher,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testEnv{handler: h, products: products, relations: rel, reviews: reviews, enricher: enricher, caches: caches}
}

// ============================================
// Listing Tests
// ============================================

func TestHandler_ListProducts_FirstPageByPrice(t *testing.T) {
	env := newTestEnv(t, 45)

	page, err := env.handler.ListProducts(context.Background(), product.PageRequest{Page: 0, Size: 20}, "price", "asc")

	require.NoError(t, err)
	assert.LessOrEqual(t, len(page.Content), 20)
	assert.Equal(t, int64(45), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.Last)
	for i := 1; i < len(page.Content); i++ {
		assert.True(t, page.Content[i-1].Price.LessThanOrEqual(page.Content[i].Price))
	}
	for _, s := range page.Content {
		require.Len(t, s.Images, 3)
		assert.Equal(t, 1, *s.Images[0].Position)
		assert.Equal(t, 2, *s.Images[1].Position)
		assert.Equal(t, 3, *s.Images[2].Position)
		require.NotNil(t, s.Brand)
		assert.Len(t, s.Categories, 1)
	}
}

func TestHandler_ListProducts_OneGroupedCallPerRelation(t *testing.T) {
	env := newTestEnv(t, 45)

	_, err := env.handler.ListProducts(context.Background(), product.PageRequest{Page: 0, Size: 20}, "", "")
	require.NoError(t, err)

	assert.Equal(t, 1, env.relations.CallCount("ImagesByProductIDs"))
	assert.Equal(t, 1, env.relations.CallCount("BrandsByIDs"))
	assert.Equal(t, 1, env.relations.CallCount("CategoriesByProductIDs"))
	assert.Equal(t, 0, env.relations.CallCount("SellersByIDs"))
	assert.Len(t, env.relations.Args["ImagesByProductIDs"][0], 20)
	assert.Equal(t, []string{"b1"}, env.relations.Args["BrandsByIDs"][0])
}

func TestHandler_ListProducts_CachedButAlwaysEnriched(t *testing.T) {
	env := newTestEnv(t, 5)
	ctx := context.Background()
	p := product.PageRequest{Page: 0, Size: 20}

	_, err := env.handler.ListProducts(ctx, p, "", "")
	require.NoError(t, err)

	env.enricher.statuses["p01"] = "OUT_OF_STOCK"
	page, err := env.handler.ListProducts(ctx, p, "", "")
	require.NoError(t, err)

	assert.Len(t, env.products.FindPageCalls, 1)
	assert.Equal(t, 2, env.enricher.summaryCalls)
	assert.Equal(t, "OUT_OF_STOCK", page.Content[1].InventoryStatus)

	// the cached page keeps the assembled status
	cached, ok := env.caches.AllProducts.Get("0::20::::")
	require.True(t, ok)
	assert.Equal(t, "IN_STOCK", cached.Content[1].InventoryStatus)
}

func TestHandler_ListProducts_StoreFaultDegradesToEmptyPage(t *testing.T) {
	env := newTestEnv(t, 5)
	env.products.FindPageErr = errors.New("connection reset")

	page, err := env.handler.ListProducts(context.Background(), product.PageRequest{Page: 2, Size: 10}, "", "")

	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Size)
	assert.Zero(t, page.TotalElements)
	assert.Zero(t, page.TotalPages)
	assert.True(t, page.Last)
	assert.Equal(t, 0, env.caches.AllProducts.Size())
}

func TestHandler_ListProducts_RelationFaultDegradesToEmptyPage(t *testing.T) {
	env := newTestEnv(t, 5)
	env.relations.Err = errors.New("timeout")

	page, err := env.handler.ListProducts(context.Background(), product.PageRequest{Page: 0, Size: 10}, "", "")

	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
	assert.True(t, page.Last)
}

func TestHandler_ListProducts_InvalidParams(t *testing.T) {
	env := newTestEnv(t, 1)

	_, err := env.handler.ListProducts(context.Background(), product.PageRequest{Page: -1, Size: 10}, "", "")
	assert.True(t, product.IsValidation(err))

	_, err = env.handler.ListProducts(context.Background(), product.PageRequest{Page: 0, Size: 10}, "bogus", "")
	assert.True(t, product.IsValidation(err))

	_, err = env.handler.ListProducts(context.Background(), product.PageRequest{Page: product.MaxPage + 1, Size: 20}, "", "")
	assert.True(t, product.IsValidation(err))

	assert.Empty(t, env.products.FindPageCalls)
	assert.Equal(t, 0, env.caches.AllProducts.Size())
}

func TestHandler_ListProducts_ConcurrentMissesOnSameKey(t *testing.T) {
	env := newTestEnv(t, 30)
	ctx := context.Background()
	p := product.PageRequest{Page: 0, Size: 20}

	var wg sync.WaitGroup
	pages := make([]SummaryPage, 2)
	for i := range pages {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pages[i], _ = env.handler.ListProducts(ctx, p, "price", "asc")
		}(i)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, len(env.products.FindPageCalls), 1)
	assert.Equal(t, pages[0].TotalElements, pages[1].TotalElements)
	assert.Len(t, pages[1].Content, 20)
	assert.Equal(t, 1, env.caches.AllProducts.Size())
}

func TestHandler_FilterProducts_NoFiltersUsesAllProducts(t *testing.T) {
	env := newTestEnv(t, 3)

	_, err := env.handler.FilterProducts(context.Background(), product.Filter{SortBy: "price"}, product.PageRequest{Page: 0, Size: 10})

	require.NoError(t, err)
	assert.Equal(t, 1, env.caches.AllProducts.Size())
	assert.Equal(t, 0, env.caches.FilteredProducts.Size())
}

func TestHandler_FilterProducts_UsesFingerprintKey(t *testing.T) {
	env := newTestEnv(t, 3)
	f := product.Filter{BrandIDs: []string{"b1"}}

	_, err := env.handler.FilterProducts(context.Background(), f, product.PageRequest{Page: 0, Size: 10})
	require.NoError(t, err)

	_, ok := env.caches.FilteredProducts.Get(f.Fingerprint() + "::0::10")
	assert.True(t, ok)
}

func TestHandler_SearchProducts_BlankKeyword(t *testing.T) {
	env := newTestEnv(t, 3)

	page, err := env.handler.SearchProducts(context.Background(), "   ", product.PageRequest{Page: 0, Size: 10}, "", "")

	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
	assert.Empty(t, env.products.FindPageCalls)
}

func TestHandler_SearchProducts_TrimsKeyword(t *testing.T) {
	env := newTestEnv(t, 3)

	_, err := env.handler.SearchProducts(context.Background(), "  lamp ", product.PageRequest{Page: 0, Size: 10}, "", "")

	require.NoError(t, err)
	require.Len(t, env.products.FindPageCalls, 1)
	assert.Equal(t, "lamp", env.products.FindPageCalls[0].Filter.Keyword)
}

func TestHandler_Ranked_PlainAndFilteredNamespaces(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()
	p := product.PageRequest{Page: 0, Size: 10}

	_, err := env.handler.TopSelling(ctx, product.Filter{}, p)
	require.NoError(t, err)
	_, err = env.handler.TopSelling(ctx, product.Filter{InventoryStatus: "IN_STOCK"}, p)
	require.NoError(t, err)
	_, err = env.handler.TopRated(ctx, product.Filter{}, p)
	require.NoError(t, err)
	_, err = env.handler.NewArrivals(ctx, product.Filter{Keyword: "x"}, p)
	require.NoError(t, err)

	assert.Equal(t, 1, env.caches.TopSelling.Size())
	assert.Equal(t, 1, env.caches.TopSellingFiltered.Size())
	assert.Equal(t, 1, env.caches.TopRated.Size())
	assert.Equal(t, 1, env.caches.NewArrivalsFiltered.Size())
	assert.Equal(t, product.ListingTopSelling, env.products.FindPageCalls[0].Listing)
	assert.Equal(t, product.ListingNewArrivals, env.products.FindPageCalls[3].Listing)
}

func TestHandler_ProductsByCategoryBrandPrice(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()
	p := product.PageRequest{Page: 0, Size: 10}

	_, err := env.handler.ProductsByCategory(ctx, "c1", p)
	require.NoError(t, err)
	_, err = env.handler.ProductsByBrand(ctx, "b1", p)
	require.NoError(t, err)
	_, err = env.handler.ProductsByPriceRange(ctx, decimal.NewFromInt(5), decimal.NewFromInt(1), p)
	assert.True(t, product.IsValidation(err))

	assert.Equal(t, []string{"c1"}, env.products.FindPageCalls[0].Filter.CategoryIDs)
	assert.Equal(t, []string{"b1"}, env.products.FindPageCalls[1].Filter.BrandIDs)
	_, ok := env.caches.ProductsByCategory.Get("c1::0::10")
	assert.True(t, ok)
}

// ============================================
// Single Product Tests
// ============================================

func TestHandler_GetProduct_Found(t *testing.T) {
	env := newTestEnv(t, 2)
	for i := 0; i < 7; i++ {
		env.relations.Reviews = append(env.relations.Reviews, product.Review{ID: fmt.Sprint(i), ProductID: "p00"})
	}
	env.relations.Specs["p00"] = []product.Specification{{Name: "Weight", Value: "1kg"}}
	env.enricher.statuses["p00"] = "LOW_STOCK"

	d, err := env.handler.GetProduct(context.Background(), "p00")

	require.NoError(t, err)
	assert.Equal(t, "p00", d.ID)
	assert.Len(t, d.Reviews, readmodel.MaxDetailReviews)
	assert.Len(t, d.Images, readmodel.MaxSummaryImages)
	assert.Len(t, d.Specifications, 1)
	assert.Equal(t, "LOW_STOCK", d.InventoryStatus)

	cached, ok := env.caches.ProductByID.Get("p00")
	require.True(t, ok)
	assert.Equal(t, "IN_STOCK", cached.InventoryStatus)
}

func TestHandler_GetProduct_NotFound(t *testing.T) {
	env := newTestEnv(t, 1)

	_, err := env.handler.GetProduct(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, product.IsNotFound(err))
	assert.Equal(t, 0, env.caches.ProductByID.Size())
	assert.Zero(t, env.enricher.detailCalls)
}

func TestHandler_GetProduct_StoreFaultSurfaces(t *testing.T) {
	env := newTestEnv(t, 1)
	env.products.FindByIDErr = errors.New("db down")

	_, err := env.handler.GetProduct(context.Background(), "p00")

	require.Error(t, err)
	assert.False(t, product.IsNotFound(err))
}

func TestHandler_GetProductsByIDs(t *testing.T) {
	env := newTestEnv(t, 4)
	env.enricher.statuses["p02"] = "OUT_OF_STOCK"

	items, err := env.handler.GetProductsByIDs(context.Background(), []string{"p02", "p00", "zz"})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p00", items[0].ID)
	assert.Equal(t, "OUT_OF_STOCK", items[1].InventoryStatus)
	assert.Equal(t, 1, env.enricher.summaryCalls)

	_, err = env.handler.GetProductsByIDs(context.Background(), make([]string, maxBatchIDs+1))
	assert.True(t, product.IsValidation(err))
}

// ============================================
// Review Tests
// ============================================

func TestHandler_ReviewsByProduct(t *testing.T) {
	env := newTestEnv(t, 1)
	env.reviews.Reviews = []product.Review{
		{ID: "r1", ProductID: "p00", UserID: "u1"},
		{ID: "r2", ProductID: "p00", UserID: "u2"},
		{ID: "r3", ProductID: "other", UserID: "u1"},
	}
	ctx := context.Background()
	p := product.PageRequest{Page: 0, Size: 10}

	page, err := env.handler.ReviewsByProduct(ctx, "p00", store.ReviewSortHelpful, p)
	require.NoError(t, err)
	_, err = env.handler.ReviewsByProduct(ctx, "p00", store.ReviewSortHelpful, p)
	require.NoError(t, err)

	assert.Len(t, page.Content, 2)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, 1, env.reviews.ProductCalls)
	assert.Equal(t, store.ReviewSortHelpful, env.reviews.LastSort)

	byUser, err := env.handler.ReviewsByUser(ctx, "u1", p)
	require.NoError(t, err)
	assert.Len(t, byUser.Content, 2)
}

func TestHandler_ReviewsByProduct_UnknownSortSharesNewestEntry(t *testing.T) {
	env := newTestEnv(t, 1)
	env.reviews.Reviews = []product.Review{{ID: "r1", ProductID: "p00", UserID: "u1"}}
	ctx := context.Background()
	p := product.PageRequest{Page: 0, Size: 10}

	for _, sort := range []store.ReviewSort{"bogus", "", store.ReviewSortNewest, "HELPFUL"} {
		_, err := env.handler.ReviewsByProduct(ctx, "p00", sort, p)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, env.reviews.ProductCalls)
	assert.Equal(t, store.ReviewSortNewest, env.reviews.LastSort)
	assert.Equal(t, 1, env.caches.ReviewsByProduct.Size())
}

func TestHandler_ReviewsByUser_StoreFaultDegrades(t *testing.T) {
	env := newTestEnv(t, 1)
	env.reviews.Err = errors.New("boom")

	page, err := env.handler.ReviewsByUser(context.Background(), "u1", product.PageRequest{Page: 0, Size: 10})

	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
	assert.Equal(t, 0, env.caches.ReviewsByUser.Size())
}

func TestHandler_GetBrand_NotFound(t *testing.T) {
	env := newTestEnv(t, 1)

	_, err := env.handler.GetBrand(context.Background(), "nope")

	assert.True(t, product.IsNotFound(err))
}
