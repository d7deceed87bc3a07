package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductStore implements ProductStore on the products table.
type GormProductStore struct {
	db *gorm.DB
}

func NewGormProductStore(db *gorm.DB) *GormProductStore {
	return &GormProductStore{db: db}
}

var _ ProductStore = (*GormProductStore)(nil)

func (s *GormProductStore) listQuery(ctx context.Context, q product.ListQuery) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&productRecord{}).
		Scopes(filterScope(q.Filter), listingScope(q.Listing))
}

func (s *GormProductStore) FindPage(ctx context.Context, q product.ListQuery) ([]product.CoreRow, int64, error) {
	const op = "GormProductStore.FindPage"

	sort, err := q.Filter.Sort()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.listQuery(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}
	if total == 0 || int64(q.Page.Offset()) >= total {
		return []product.CoreRow{}, total, nil
	}

	var records []productRecord
	err = s.listQuery(ctx, q).
		Order(orderFor(q.Listing, sort)).
		Offset(q.Page.Offset()).
		Limit(q.Page.Size).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return toCoreRows(records), total, nil
}

func (s *GormProductStore) FindByID(ctx context.Context, id string) (product.CoreRow, error) {
	const op = "GormProductStore.FindByID"

	var rec productRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product.CoreRow{}, product.NewNotFound("product", id)
	}
	if err != nil {
		return product.CoreRow{}, fmt.Errorf("%s: %w", op, err)
	}
	return rec.toCoreRow(), nil
}

func (s *GormProductStore) FindByIDs(ctx context.Context, ids []string) ([]product.CoreRow, error) {
	const op = "GormProductStore.FindByIDs"

	if len(ids) == 0 {
		return []product.CoreRow{}, nil
	}

	var records []productRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toCoreRows(records), nil
}

// IncrementSales adds quantity to both sold counters; NULL counts as zero.
func (s *GormProductStore) IncrementSales(ctx context.Context, id string, quantity int64) error {
	const op = "GormProductStore.IncrementSales"

	res := s.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"quantity_sold":          gorm.Expr("COALESCE(quantity_sold, 0) + ?", quantity),
			"all_time_quantity_sold": gorm.Expr("COALESCE(all_time_quantity_sold, 0) + ?", quantity),
			"updated_at":             time.Now(),
		})
	return affectedOne(op, id, res)
}

func (s *GormProductStore) UpdateRating(ctx context.Context, id string, rating decimal.Decimal, reviewCount int) error {
	const op = "GormProductStore.UpdateRating"

	res := s.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"rating_average": rating,
			"review_count":   reviewCount,
			"updated_at":     time.Now(),
		})
	return affectedOne(op, id, res)
}

func (s *GormProductStore) InventoryStatus(ctx context.Context, id string) (string, error) {
	const op = "GormProductStore.InventoryStatus"

	var rec productRecord
	err := s.db.WithContext(ctx).Select("id", "inventory_status").Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", product.NewNotFound("product", id)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return rec.InventoryStatus, nil
}

func (s *GormProductStore) UpdateInventoryStatus(ctx context.Context, id, status string) error {
	const op = "GormProductStore.UpdateInventoryStatus"

	res := s.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"inventory_status": status,
			"updated_at":       time.Now(),
		})
	return affectedOne(op, id, res)
}

func affectedOne(op, id string, res *gorm.DB) error {
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return product.NewNotFound("product", id)
	}
	return nil
}
