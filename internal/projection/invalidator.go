package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/example/catalog-aggregator/internal/infrastructure/store"
	"github.com/example/catalog-aggregator/internal/query"
)

// Invalidator applies upstream product events to the store and evicts the
// cache entries they make stale. Handlers match kafka.MessageHandler.
type Invalidator struct {
	products store.ProductStore
	caches   *query.Caches
	log      *slog.Logger
}

func NewInvalidator(products store.ProductStore, caches *query.Caches, log *slog.Logger) *Invalidator {
	return &Invalidator{
		products: products,
		caches:   caches,
		log:      log.With("component", "invalidator"),
	}
}

// HandleSalesUpdated increments sales counters item by item. A failed item is
// logged and skipped; listings are cleared once if any item was applied.
func (i *Invalidator) HandleSalesUpdated(ctx context.Context, key, value []byte) error {
	const op = "Invalidator.HandleSalesUpdated"
	log := i.log.With("op", op)

	var e product.SalesUpdated
	if err := json.Unmarshal(value, &e); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	log = log.With("order_id", e.OrderID)

	applied := 0
	for _, item := range e.Items {
		if err := i.products.IncrementSales(ctx, item.ProductID, item.Quantity); err != nil {
			log.Error("sales increment failed", "product_id", item.ProductID, "quantity", item.Quantity, "err", err)
			continue
		}
		i.caches.ProductByID.Invalidate(item.ProductID)
		applied++
	}

	if applied > 0 {
		i.caches.TopSelling.InvalidateAll()
		i.caches.AllProducts.InvalidateAll()
	}
	log.Info("sales update processed", "items", len(e.Items), "applied", applied)
	return nil
}

func (i *Invalidator) HandleRatingUpdated(ctx context.Context, key, value []byte) error {
	const op = "Invalidator.HandleRatingUpdated"

	var e product.RatingUpdated
	if err := json.Unmarshal(value, &e); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}

	if err := i.products.UpdateRating(ctx, e.ProductID, e.NewRating, e.ReviewCount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	i.caches.ProductByID.Invalidate(e.ProductID)
	i.caches.TopRated.InvalidateAll()
	i.caches.AllProducts.InvalidateAll()

	i.log.Info("rating update processed", "op", op, "product_id", e.ProductID, "rating", e.NewRating.String(), "review_count", e.ReviewCount)
	return nil
}

// HandleInventoryStatusUpdated is a no-op when the stored status already
// matches the new one.
func (i *Invalidator) HandleInventoryStatusUpdated(ctx context.Context, key, value []byte) error {
	const op = "Invalidator.HandleInventoryStatusUpdated"
	log := i.log.With("op", op)

	var e product.InventoryStatusUpdated
	if err := json.Unmarshal(value, &e); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	log = log.With("product_id", e.ProductID)

	current, err := i.products.InventoryStatus(ctx, e.ProductID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if current == e.NewStatus {
		log.Debug("inventory status unchanged", "status", current)
		return nil
	}

	if err := i.products.UpdateInventoryStatus(ctx, e.ProductID, e.NewStatus); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	i.caches.ProductByID.Invalidate(e.ProductID)
	i.caches.AllProducts.InvalidateAll()

	log.Info("inventory status updated", "from", current, "to", e.NewStatus)
	return nil
}
