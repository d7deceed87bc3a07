package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/catalog-aggregator/internal/readmodel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) Check(ctx context.Context, item Item) (Snapshot, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(Snapshot), args.Error(1)
}

func (m *mockChecker) CheckBatch(ctx context.Context, items []Item) ([]Snapshot, error) {
	args := m.Called(ctx, items)
	snaps, _ := args.Get(0).([]Snapshot)
	return snaps, args.Error(1)
}

func detail(id, status string) *readmodel.ProductDetail {
	return &readmodel.ProductDetail{ProductSummary: readmodel.ProductSummary{
		ID:              id,
		Name:            "Lamp",
		Price:           decimal.RequireFromString("10"),
		InventoryStatus: status,
	}}
}

// ============================================
// EnrichDetail Tests
// ============================================

func TestEnricher_EnrichDetail_MergesDifferentStatus(t *testing.T) {
	checker := new(mockChecker)
	checker.On("Check", mock.Anything, mock.MatchedBy(func(it Item) bool {
		return it.ProductID == "p1" && it.Quantity == 1 && it.Status == "IN_STOCK"
	})).Return(Snapshot{ProductID: "p1", Status: "OUT_OF_STOCK", Code: CodeOK}, nil)

	d := detail("p1", "IN_STOCK")
	NewEnricher(checker, discardLogger()).EnrichDetail(context.Background(), d)

	assert.Equal(t, "OUT_OF_STOCK", d.InventoryStatus)
	checker.AssertExpectations(t)
}

func TestEnricher_EnrichDetail_NonOKKeepsStatus(t *testing.T) {
	checker := new(mockChecker)
	checker.On("Check", mock.Anything, mock.Anything).
		Return(Snapshot{ProductID: "p1", Status: "OUT_OF_STOCK", Code: CodeInvalidArgument}, nil)

	d := detail("p1", "IN_STOCK")
	NewEnricher(checker, discardLogger()).EnrichDetail(context.Background(), d)

	assert.Equal(t, "IN_STOCK", d.InventoryStatus)
}

func TestEnricher_EnrichDetail_ErrorKeepsStatus(t *testing.T) {
	checker := new(mockChecker)
	checker.On("Check", mock.Anything, mock.Anything).Return(Snapshot{}, errors.New("unavailable"))

	d := detail("p1", "IN_STOCK")
	NewEnricher(checker, discardLogger()).EnrichDetail(context.Background(), d)

	assert.Equal(t, "IN_STOCK", d.InventoryStatus)
}

// A simulated timeout against a real gRPC server never surfaces to the caller.
func TestEnricher_EnrichDetail_TimeoutKeepsStatus(t *testing.T) {
	fake := &fakeInventory{statuses: map[string]string{"p1": "OUT_OF_STOCK"}, code: CodeOK, delay: time.Second}
	client := startFakeInventory(t, fake, 30*time.Millisecond)

	d := detail("p1", "IN_STOCK")
	NewEnricher(client, discardLogger()).EnrichDetail(context.Background(), d)

	assert.Equal(t, "IN_STOCK", d.InventoryStatus)
}

func TestEnricher_EnrichDetail_CancelledCallerStillChecks(t *testing.T) {
	checker := new(mockChecker)
	checker.On("Check", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).
		Return(Snapshot{ProductID: "p1", Status: "LOW_STOCK", Code: CodeOK}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := detail("p1", "IN_STOCK")
	NewEnricher(checker, discardLogger()).EnrichDetail(ctx, d)

	assert.Equal(t, "LOW_STOCK", d.InventoryStatus)
}

// ============================================
// EnrichSummaries Tests
// ============================================

func TestEnricher_EnrichSummaries(t *testing.T) {
	checker := new(mockChecker)
	checker.On("CheckBatch", mock.Anything, mock.MatchedBy(func(items []Item) bool { return len(items) == 3 })).
		Return([]Snapshot{
			{ProductID: "p1", Status: "IN_STOCK", Code: CodeOK},
			{ProductID: "p2", Status: "OUT_OF_STOCK", Code: CodeOK},
		}, nil).Once()

	items := []readmodel.ProductSummary{
		{ID: "p1", InventoryStatus: "IN_STOCK"},
		{ID: "p2", InventoryStatus: "IN_STOCK"},
		{ID: "p3", InventoryStatus: "LOW_STOCK"},
	}
	NewEnricher(checker, discardLogger()).EnrichSummaries(context.Background(), items)

	assert.Equal(t, "IN_STOCK", items[0].InventoryStatus)
	assert.Equal(t, "OUT_OF_STOCK", items[1].InventoryStatus)
	assert.Equal(t, "LOW_STOCK", items[2].InventoryStatus)
	checker.AssertExpectations(t)
}

func TestEnricher_EnrichSummaries_FailureKeepsStatuses(t *testing.T) {
	checker := new(mockChecker)
	checker.On("CheckBatch", mock.Anything, mock.Anything).Return(nil, errors.New("deadline exceeded"))

	items := []readmodel.ProductSummary{{ID: "p1", InventoryStatus: "IN_STOCK"}}
	NewEnricher(checker, discardLogger()).EnrichSummaries(context.Background(), items)

	assert.Equal(t, "IN_STOCK", items[0].InventoryStatus)
}

func TestEnricher_EnrichSummaries_EmptySkipsCall(t *testing.T) {
	checker := new(mockChecker)

	NewEnricher(checker, discardLogger()).EnrichSummaries(context.Background(), nil)

	checker.AssertNotCalled(t, "CheckBatch", mock.Anything, mock.Anything)
}
