package store

import (
	"context"
	"fmt"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"gorm.io/gorm"
)

type GormReviewStore struct {
	db *gorm.DB
}

func NewGormReviewStore(db *gorm.DB) *GormReviewStore {
	return &GormReviewStore{db: db}
}

var _ ReviewStore = (*GormReviewStore)(nil)

// reviewOrder maps a review sort to its ORDER BY; the default is newest first.
func reviewOrder(sort ReviewSort) string {
	if sort == ReviewSortHelpful {
		return "helpful_votes DESC, created_at DESC"
	}
	return "created_at DESC"
}

func (s *GormReviewStore) FindByProduct(ctx context.Context, productID string, sort ReviewSort, p product.PageRequest) ([]product.Review, int64, error) {
	const op = "GormReviewStore.FindByProduct"

	reviews, total, err := s.page(ctx, "product_id", productID, reviewOrder(sort), p)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, total, nil
}

func (s *GormReviewStore) FindByUser(ctx context.Context, userID string, p product.PageRequest) ([]product.Review, int64, error) {
	const op = "GormReviewStore.FindByUser"

	reviews, total, err := s.page(ctx, "user_id", userID, reviewOrder(ReviewSortNewest), p)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, total, nil
}

func (s *GormReviewStore) page(ctx context.Context, column, value, order string, p product.PageRequest) ([]product.Review, int64, error) {
	where := map[string]any{column: value}

	var total int64
	if err := s.db.WithContext(ctx).Model(&reviewRecord{}).Where(where).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []product.Review{}, 0, nil
	}

	var records []reviewRecord
	err := s.db.WithContext(ctx).
		Where(where).
		Order(order).
		Offset(p.Offset()).
		Limit(p.Size).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return toReviews(records), total, nil
}
