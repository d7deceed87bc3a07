package mocks

import (
	"context"
	"sync"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/example/catalog-aggregator/internal/infrastructure/store"
)

// MockReviewStore serves reviews from memory and records calls
type MockReviewStore struct {
	mu      sync.Mutex
	Reviews []product.Review
	Err     error

	ProductCalls int
	UserCalls    int
	LastSort     store.ReviewSort
}

func NewMockReviewStore(reviews ...product.Review) *MockReviewStore {
	return &MockReviewStore{Reviews: reviews}
}

func (m *MockReviewStore) FindByProduct(ctx context.Context, productID string, sort store.ReviewSort, p product.PageRequest) ([]product.Review, int64, error) {
	m.mu.Lock()
	m.ProductCalls++
	m.LastSort = sort
	m.mu.Unlock()
	return m.page(func(r product.Review) bool { return r.ProductID == productID }, p)
}

func (m *MockReviewStore) FindByUser(ctx context.Context, userID string, p product.PageRequest) ([]product.Review, int64, error) {
	m.mu.Lock()
	m.UserCalls++
	m.mu.Unlock()
	return m.page(func(r product.Review) bool { return r.UserID == userID }, p)
}

func (m *MockReviewStore) page(match func(product.Review) bool, p product.PageRequest) ([]product.Review, int64, error) {
	if m.Err != nil {
		return nil, 0, m.Err
	}
	matched := make([]product.Review, 0)
	for _, r := range m.Reviews {
		if match(r) {
			matched = append(matched, r)
		}
	}
	total := int64(len(matched))
	start := p.Offset()
	if start >= len(matched) {
		return []product.Review{}, total, nil
	}
	end := start + p.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// MockCatalogStore serves brands and categories from memory
type MockCatalogStore struct {
	Brands     map[string]product.Brand
	Categories map[string]product.Category
}

func NewMockCatalogStore() *MockCatalogStore {
	return &MockCatalogStore{
		Brands:     make(map[string]product.Brand),
		Categories: make(map[string]product.Category),
	}
}

func (m *MockCatalogStore) BrandByID(ctx context.Context, id string) (product.Brand, error) {
	b, ok := m.Brands[id]
	if !ok {
		return product.Brand{}, product.NewNotFound("brand", id)
	}
	return b, nil
}

func (m *MockCatalogStore) CategoryByID(ctx context.Context, id string) (product.Category, error) {
	c, ok := m.Categories[id]
	if !ok {
		return product.Category{}, product.NewNotFound("category", id)
	}
	return c, nil
}
