package store

import (
	"context"
	"fmt"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"gorm.io/gorm"
)

// GormRelationSource runs each grouped lookup as a single IN query.
type GormRelationSource struct {
	db *gorm.DB
}

func NewGormRelationSource(db *gorm.DB) *GormRelationSource {
	return &GormRelationSource{db: db}
}

var _ RelationSource = (*GormRelationSource)(nil)

// ImagesByProductIDs returns images ordered by product then position, NULL positions last.
func (s *GormRelationSource) ImagesByProductIDs(ctx context.Context, productIDs []string) ([]product.Image, error) {
	const op = "GormRelationSource.ImagesByProductIDs"

	var records []imageRecord
	err := s.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id, position ASC NULLS LAST, id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images := make([]product.Image, 0, len(records))
	for _, r := range records {
		images = append(images, r.toImage())
	}
	return images, nil
}

func (s *GormRelationSource) BrandsByIDs(ctx context.Context, ids []string) ([]product.Brand, error) {
	const op = "GormRelationSource.BrandsByIDs"

	var records []brandRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	brands := make([]product.Brand, 0, len(records))
	for _, r := range records {
		brands = append(brands, r.toBrand())
	}
	return brands, nil
}

func (s *GormRelationSource) SellersByIDs(ctx context.Context, ids []string) ([]product.Seller, error) {
	const op = "GormRelationSource.SellersByIDs"

	var records []sellerRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sellers := make([]product.Seller, 0, len(records))
	for _, r := range records {
		sellers = append(sellers, r.toSeller())
	}
	return sellers, nil
}

// CategoriesByProductIDs projects the membership join instead of loading category trees.
func (s *GormRelationSource) CategoriesByProductIDs(ctx context.Context, productIDs []string) ([]product.CategorySummary, error) {
	const op = "GormRelationSource.CategoriesByProductIDs"

	var rows []categoryJoinRow
	err := s.db.WithContext(ctx).
		Table("product_categories AS pc").
		Select("pc.product_id, c.id, c.name, c.url, c.parent_id, c.level").
		Joins("JOIN categories AS c ON c.id = pc.category_id").
		Where("pc.product_id IN ?", productIDs).
		Order("pc.product_id, c.level, c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	categories := make([]product.CategorySummary, 0, len(rows))
	for _, r := range rows {
		categories = append(categories, r.toSummary())
	}
	return categories, nil
}

func (s *GormRelationSource) ReviewsByProductID(ctx context.Context, productID string, limit int) ([]product.Review, error) {
	const op = "GormRelationSource.ReviewsByProductID"

	var records []reviewRecord
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toReviews(records), nil
}

func (s *GormRelationSource) SpecificationsByProductID(ctx context.Context, productID string) ([]product.Specification, error) {
	const op = "GormRelationSource.SpecificationsByProductID"

	var records []specificationRecord
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	specs := make([]product.Specification, 0, len(records))
	for _, r := range records {
		specs = append(specs, product.Specification{Name: r.Name, Value: r.Value})
	}
	return specs, nil
}
