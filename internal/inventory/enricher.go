package inventory

import (
	"context"
	"log/slog"

	"github.com/example/catalog-aggregator/internal/readmodel"
)

const checkQuantity = 1

// Enricher merges live inventory status into assembled read models. It never
// returns an error: on any failure the existing status is kept.
type Enricher struct {
	checker Checker
	log     *slog.Logger
}

func NewEnricher(checker Checker, log *slog.Logger) *Enricher {
	return &Enricher{checker: checker, log: log.With("component", "inventory_enricher")}
}

func (e *Enricher) EnrichDetail(ctx context.Context, d *readmodel.ProductDetail) {
	const op = "Enricher.EnrichDetail"
	log := e.log.With("op", op, "product_id", d.ID)

	// the RPC outlives a cancelled caller; its own deadline still applies
	ctx = context.WithoutCancel(ctx)

	snap, err := e.checker.Check(ctx, Item{
		ProductID: d.ID,
		Quantity:  checkQuantity,
		Status:    d.InventoryStatus,
		Name:      d.Name,
		Price:     d.Price,
	})
	if err != nil {
		log.Warn("inventory check failed, keeping status", "err", err)
		return
	}
	if !snap.OK() {
		log.Warn("inventory check not ok, keeping status", "code", snap.Code, "message", snap.Message)
		return
	}
	if snap.Status != "" && snap.Status != d.InventoryStatus {
		log.Debug("inventory status updated", "from", d.InventoryStatus, "to", snap.Status)
		d.InventoryStatus = snap.Status
	}
}

// EnrichSummaries updates items in place with one batch call.
func (e *Enricher) EnrichSummaries(ctx context.Context, items []readmodel.ProductSummary) {
	const op = "Enricher.EnrichSummaries"
	log := e.log.With("op", op, "items", len(items))

	if len(items) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)

	req := make([]Item, 0, len(items))
	for _, it := range items {
		req = append(req, Item{
			ProductID: it.ID,
			Quantity:  checkQuantity,
			Status:    it.InventoryStatus,
			Name:      it.Name,
			Price:     it.Price,
		})
	}

	snaps, err := e.checker.CheckBatch(ctx, req)
	if err != nil {
		log.Warn("inventory batch check failed, keeping statuses", "err", err)
		return
	}

	byID := make(map[string]Snapshot, len(snaps))
	for _, s := range snaps {
		byID[s.ProductID] = s
	}

	for i := range items {
		snap, ok := byID[items[i].ID]
		if !ok {
			continue
		}
		if !snap.OK() {
			log.Warn("inventory check not ok, keeping status", "product_id", items[i].ID, "code", snap.Code)
			continue
		}
		if snap.Status != "" && snap.Status != items[i].InventoryStatus {
			items[i].InventoryStatus = snap.Status
		}
	}
}
