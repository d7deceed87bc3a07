package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicSalesUpdated           = "order.product.sales.updated"
	TopicRatingUpdated          = "review.product.rating.updated"
	TopicInventoryStatusUpdated = "inventory.status.updated"
)

type SalesItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// SalesUpdated is emitted by the order service once an order is paid.
type SalesUpdated struct {
	OrderID   string      `json:"orderId"`
	Items     []SalesItem `json:"items"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
}

// RatingUpdated is emitted by the review service after a rating recompute.
type RatingUpdated struct {
	ProductID   string          `json:"productId"`
	NewRating   decimal.Decimal `json:"newRating"`
	ReviewCount int             `json:"reviewCount"`
	Timestamp   time.Time       `json:"timestamp"`
	Source      string          `json:"source"`
}

// InventoryStatusUpdated is emitted by the inventory service.
type InventoryStatusUpdated struct {
	ProductID      string    `json:"productId"`
	NewStatus      string    `json:"newStatus"`
	PreviousStatus string    `json:"previousStatus"`
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`
}
