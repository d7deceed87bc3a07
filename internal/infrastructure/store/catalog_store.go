package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"gorm.io/gorm"
)

type GormCatalogStore struct {
	db *gorm.DB
}

func NewGormCatalogStore(db *gorm.DB) *GormCatalogStore {
	return &GormCatalogStore{db: db}
}

var _ CatalogStore = (*GormCatalogStore)(nil)

func (s *GormCatalogStore) BrandByID(ctx context.Context, id string) (product.Brand, error) {
	const op = "GormCatalogStore.BrandByID"

	var rec brandRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product.Brand{}, product.NewNotFound("brand", id)
	}
	if err != nil {
		return product.Brand{}, fmt.Errorf("%s: %w", op, err)
	}
	return rec.toBrand(), nil
}

func (s *GormCatalogStore) CategoryByID(ctx context.Context, id string) (product.Category, error) {
	const op = "GormCatalogStore.CategoryByID"

	var rec categoryRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product.Category{}, product.NewNotFound("category", id)
	}
	if err != nil {
		return product.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return rec.toCategory(), nil
}
