package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const eventSource = "catalogctl"

func (a *app) publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a test event to one of the consumed topics",
	}
	cmd.AddCommand(a.publishSalesCmd(), a.publishRatingCmd(), a.publishInventoryCmd())
	return cmd
}

func (a *app) publishSalesCmd() *cobra.Command {
	var (
		orderID string
		items   []string
	)

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Publish a sales update",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseSalesItems(items)
			if err != nil {
				return err
			}
			if orderID == "" {
				orderID = uuid.NewString()
			}
			event := product.SalesUpdated{
				OrderID:   orderID,
				Items:     parsed,
				Timestamp: time.Now().UTC(),
				Source:    eventSource,
			}
			return a.publish(cmd, a.cfg.Kafka.Topics.SalesUpdated, orderID, event)
		},
	}
	cmd.Flags().StringVar(&orderID, "order-id", "", "order id (random when empty)")
	cmd.Flags().StringSliceVar(&items, "item", nil, "productId=quantity, repeatable")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func (a *app) publishRatingCmd() *cobra.Command {
	var (
		productID   string
		rating      string
		reviewCount int
	)

	cmd := &cobra.Command{
		Use:   "rating",
		Short: "Publish a rating update",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := decimal.NewFromString(rating)
			if err != nil {
				return fmt.Errorf("invalid --rating %q: %w", rating, err)
			}
			event := product.RatingUpdated{
				ProductID:   productID,
				NewRating:   r,
				ReviewCount: reviewCount,
				Timestamp:   time.Now().UTC(),
				Source:      eventSource,
			}
			return a.publish(cmd, a.cfg.Kafka.Topics.RatingUpdated, productID, event)
		},
	}
	cmd.Flags().StringVar(&productID, "product", "", "product id")
	cmd.Flags().StringVar(&rating, "rating", "", "new average rating")
	cmd.Flags().IntVar(&reviewCount, "reviews", 0, "new review count")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func (a *app) publishInventoryCmd() *cobra.Command {
	var productID, status, previous string

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Publish an inventory status update",
		RunE: func(cmd *cobra.Command, args []string) error {
			event := product.InventoryStatusUpdated{
				ProductID:      productID,
				NewStatus:      status,
				PreviousStatus: previous,
				Timestamp:      time.Now().UTC(),
				Source:         eventSource,
			}
			return a.publish(cmd, a.cfg.Kafka.Topics.InventoryStatusUpdated, productID, event)
		},
	}
	cmd.Flags().StringVar(&productID, "product", "", "product id")
	cmd.Flags().StringVar(&status, "status", "", "new inventory status")
	cmd.Flags().StringVar(&previous, "previous", "", "previous inventory status")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func (a *app) publish(cmd *cobra.Command, topic, key string, event any) error {
	p := a.newPublisher(a.cfg.Kafka.Brokers, topic)
	defer p.Close()

	if err := p.Publish(cmd.Context(), key, event); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	a.log.Info("event published", "topic", topic, "key", key)
	return nil
}

func parseSalesItems(raw []string) ([]product.SalesItem, error) {
	items := make([]product.SalesItem, 0, len(raw))
	for _, r := range raw {
		id, qty, ok := strings.Cut(r, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --item %q: want productId=quantity", r)
		}
		n, err := strconv.ParseInt(qty, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid --item %q: quantity must be a positive integer", r)
		}
		items = append(items, product.SalesItem{ProductID: id, Quantity: n})
	}
	return items, nil
}
