package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

const (
	methodCheck      = "/inventory.InventoryService/CheckInventory"
	methodCheckBatch = "/inventory.InventoryService/CheckInventoryBatch"

	metadataSource = "product-service"
	opCheck        = "check_inventory_with_product_info"
	opCheckBatch   = "check_inventory_batch"

	maxRecvMsgSize = 4 << 20
)

// Item is one product to check, with the catalog's current view of it.
type Item struct {
	ProductID string
	Quantity  int32
	Status    string
	Name      string
	Price     decimal.Decimal
}

// Snapshot is the inventory service's answer for one product.
type Snapshot struct {
	ProductID         string
	Available         bool
	AvailableQuantity int32
	Status            string
	Code              string
	Message           string
}

func (s Snapshot) OK() bool {
	return s.Code == CodeOK
}

// Checker is the port the enricher depends on.
type Checker interface {
	Check(ctx context.Context, item Item) (Snapshot, error)
	CheckBatch(ctx context.Context, items []Item) ([]Snapshot, error)
}

// Client calls the inventory service over gRPC. Each call is a single
// attempt bounded by its own deadline.
type Client struct {
	conn         *grpc.ClientConn
	timeout      time.Duration
	batchTimeout time.Duration
	now          func() time.Time
}

var _ Checker = (*Client)(nil)

// NewClient builds the connection eagerly; Close releases it.
func NewClient(target string, timeout, batchTimeout time.Duration, log *slog.Logger, opts ...grpc.DialOption) (*Client, error) {
	const op = "inventory.NewClient"

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(CodecName),
			grpc.MaxCallRecvMsgSize(maxRecvMsgSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithUnaryInterceptor(loggingInterceptor(log)),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		conn:         conn,
		timeout:      timeout,
		batchTimeout: batchTimeout,
		now:          time.Now,
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) metadata(operation string) map[string]string {
	return map[string]string{
		"source":    metadataSource,
		"timestamp": strconv.FormatInt(c.now().UnixMilli(), 10),
		"operation": operation,
	}
}

func (c *Client) Check(ctx context.Context, item Item) (Snapshot, error) {
	const op = "inventory.Client.Check"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &CheckRequest{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Metadata:  c.metadata(opCheck),
		ProductInfo: &ProductInfo{
			InventoryStatus: item.Status,
			Name:            item.Name,
			Price:           item.Price.String(),
		},
	}

	var resp CheckResponse
	if err := c.conn.Invoke(ctx, methodCheck, req, &resp); err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	snap := Snapshot{
		ProductID:         resp.ProductID,
		Available:         resp.Available,
		AvailableQuantity: resp.AvailableQuantity,
		Status:            resp.Status,
		Code:              codeOf(resp.ResultStatus),
	}
	if resp.ResultStatus != nil {
		snap.Message = resp.ResultStatus.Message
	}
	if snap.ProductID == "" {
		snap.ProductID = item.ProductID
	}
	return snap, nil
}

// CheckBatch sends every item in one request. The aggregate result code is
// copied onto each returned snapshot.
func (c *Client) CheckBatch(ctx context.Context, items []Item) ([]Snapshot, error) {
	const op = "inventory.Client.CheckBatch"

	if len(items) == 0 {
		return []Snapshot{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.batchTimeout)
	defer cancel()

	req := &CheckBatchRequest{
		Items:    make([]BatchItem, 0, len(items)),
		Metadata: c.metadata(opCheckBatch),
	}
	req.Metadata["item_count"] = strconv.Itoa(len(items))
	for _, it := range items {
		req.Items = append(req.Items, BatchItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	var resp CheckBatchResponse
	if err := c.conn.Invoke(ctx, methodCheckBatch, req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	code := codeOf(resp.ResultStatus)
	snaps := make([]Snapshot, 0, len(resp.Items))
	for _, it := range resp.Items {
		snaps = append(snaps, Snapshot{
			ProductID:         it.ProductID,
			Available:         it.Available,
			AvailableQuantity: it.AvailableQuantity,
			Status:            it.Status,
			Code:              code,
			Message:           it.ErrorMessage,
		})
	}
	return snaps, nil
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		if err != nil {
			log.Warn("inventory rpc failed", "method", method, "duration", time.Since(start), "err", err)
			return err
		}
		log.Debug("inventory rpc completed", "method", method, "duration", time.Since(start))
		return nil
	}
}
