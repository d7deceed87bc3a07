package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/shopspring/decimal"
)

// MockProductStore is an in-memory ProductStore for testing
type MockProductStore struct {
	mu   sync.RWMutex
	rows map[string]product.CoreRow

	// Errors injected into the next calls
	FindPageErr  error
	FindByIDErr  error
	IncrementErr map[string]error

	// For tracking calls in tests
	FindPageCalls     []product.ListQuery
	IncrementCalls    []IncrementCall
	RatingCalls       []RatingCall
	StatusUpdateCalls []StatusUpdateCall
}

// IncrementCall records parameters passed to IncrementSales
type IncrementCall struct {
	ID       string
	Quantity int64
}

// RatingCall records parameters passed to UpdateRating
type RatingCall struct {
	ID          string
	Rating      decimal.Decimal
	ReviewCount int
}

// StatusUpdateCall records parameters passed to UpdateInventoryStatus
type StatusUpdateCall struct {
	ID     string
	Status string
}

// NewMockProductStore creates a new MockProductStore
func NewMockProductStore(rows ...product.CoreRow) *MockProductStore {
	m := &MockProductStore{
		rows:         make(map[string]product.CoreRow),
		IncrementErr: make(map[string]error),
	}
	for _, r := range rows {
		m.rows[r.ID] = r
	}
	return m
}

// FindPage ignores the filter and sorts by id or price
func (m *MockProductStore) FindPage(ctx context.Context, q product.ListQuery) ([]product.CoreRow, int64, error) {
	m.mu.Lock()
	m.FindPageCalls = append(m.FindPageCalls, q)
	m.mu.Unlock()

	if m.FindPageErr != nil {
		return nil, 0, m.FindPageErr
	}

	s, err := q.Filter.Sort()
	if err != nil {
		return nil, 0, err
	}

	m.mu.RLock()
	all := make([]product.CoreRow, 0, len(m.rows))
	for _, r := range m.rows {
		all = append(all, r)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		less := all[i].ID < all[j].ID
		if s.Column == "price" && !all[i].Price.Equal(all[j].Price) {
			less = all[i].Price.LessThan(all[j].Price)
		}
		if s.Desc {
			return !less
		}
		return less
	})

	total := int64(len(all))
	start := q.Page.Offset()
	if start >= len(all) {
		return []product.CoreRow{}, total, nil
	}
	end := start + q.Page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// FindByID returns a copy of the stored row
func (m *MockProductStore) FindByID(ctx context.Context, id string) (product.CoreRow, error) {
	if m.FindByIDErr != nil {
		return product.CoreRow{}, m.FindByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	if !ok {
		return product.CoreRow{}, product.NewNotFound("product", id)
	}
	return row, nil
}

// FindByIDs returns the known rows in id order
func (m *MockProductStore) FindByIDs(ctx context.Context, ids []string) ([]product.CoreRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]product.CoreRow, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.rows[id]; ok {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

// IncrementSales adds quantity to both counters
func (m *MockProductStore) IncrementSales(ctx context.Context, id string, quantity int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IncrementCalls = append(m.IncrementCalls, IncrementCall{ID: id, Quantity: quantity})

	if err := m.IncrementErr[id]; err != nil {
		return err
	}
	row, ok := m.rows[id]
	if !ok {
		return product.NewNotFound("product", id)
	}
	row.QuantitySold += quantity
	row.AllTimeQuantitySold += quantity
	m.rows[id] = row
	return nil
}

// UpdateRating overwrites rating and review count
func (m *MockProductStore) UpdateRating(ctx context.Context, id string, rating decimal.Decimal, reviewCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RatingCalls = append(m.RatingCalls, RatingCall{ID: id, Rating: rating, ReviewCount: reviewCount})

	row, ok := m.rows[id]
	if !ok {
		return product.NewNotFound("product", id)
	}
	row.RatingAverage = &rating
	row.ReviewCount = reviewCount
	m.rows[id] = row
	return nil
}

// InventoryStatus returns the stored status
func (m *MockProductStore) InventoryStatus(ctx context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	if !ok {
		return "", product.NewNotFound("product", id)
	}
	return row.InventoryStatus, nil
}

// UpdateInventoryStatus overwrites the stored status
func (m *MockProductStore) UpdateInventoryStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StatusUpdateCalls = append(m.StatusUpdateCalls, StatusUpdateCall{ID: id, Status: status})

	row, ok := m.rows[id]
	if !ok {
		return product.NewNotFound("product", id)
	}
	row.InventoryStatus = status
	m.rows[id] = row
	return nil
}

// GetRow gets a row directly for testing (without recording the call)
func (m *MockProductStore) GetRow(id string) (product.CoreRow, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	return row, ok
}
