package mocks

import (
	"context"
	"sync"

	"github.com/example/catalog-aggregator/internal/domain/product"
)

// MockRelationSource is an in-memory RelationSource that counts grouped calls
type MockRelationSource struct {
	mu sync.Mutex

	Images     []product.Image
	Brands     []product.Brand
	Sellers    []product.Seller
	Categories []product.CategorySummary
	Reviews    []product.Review
	Specs      map[string][]product.Specification

	Err error

	// Calls counts invocations per method name; Args keeps the ids passed
	Calls map[string]int
	Args  map[string][][]string
}

// NewMockRelationSource creates a new MockRelationSource
func NewMockRelationSource() *MockRelationSource {
	return &MockRelationSource{
		Specs: make(map[string][]product.Specification),
		Calls: make(map[string]int),
		Args:  make(map[string][][]string),
	}
}

func (m *MockRelationSource) record(method string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[method]++
	m.Args[method] = append(m.Args[method], append([]string(nil), ids...))
	return m.Err
}

// CallCount returns how many times method was invoked
func (m *MockRelationSource) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

func (m *MockRelationSource) ImagesByProductIDs(ctx context.Context, productIDs []string) ([]product.Image, error) {
	if err := m.record("ImagesByProductIDs", productIDs); err != nil {
		return nil, err
	}
	set := toSet(productIDs)
	out := make([]product.Image, 0)
	for _, img := range m.Images {
		if set[img.ProductID] {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *MockRelationSource) BrandsByIDs(ctx context.Context, ids []string) ([]product.Brand, error) {
	if err := m.record("BrandsByIDs", ids); err != nil {
		return nil, err
	}
	set := toSet(ids)
	out := make([]product.Brand, 0)
	for _, b := range m.Brands {
		if set[b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockRelationSource) SellersByIDs(ctx context.Context, ids []string) ([]product.Seller, error) {
	if err := m.record("SellersByIDs", ids); err != nil {
		return nil, err
	}
	set := toSet(ids)
	out := make([]product.Seller, 0)
	for _, s := range m.Sellers {
		if set[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockRelationSource) CategoriesByProductIDs(ctx context.Context, productIDs []string) ([]product.CategorySummary, error) {
	if err := m.record("CategoriesByProductIDs", productIDs); err != nil {
		return nil, err
	}
	set := toSet(productIDs)
	out := make([]product.CategorySummary, 0)
	for _, c := range m.Categories {
		if set[c.ProductID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockRelationSource) ReviewsByProductID(ctx context.Context, productID string, limit int) ([]product.Review, error) {
	if err := m.record("ReviewsByProductID", []string{productID}); err != nil {
		return nil, err
	}
	out := make([]product.Review, 0)
	for _, r := range m.Reviews {
		if r.ProductID == productID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRelationSource) SpecificationsByProductID(ctx context.Context, productID string) ([]product.Specification, error) {
	if err := m.record("SpecificationsByProductID", []string{productID}); err != nil {
		return nil, err
	}
	return m.Specs[productID], nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
