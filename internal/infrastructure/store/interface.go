package store

import (
	"context"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/shopspring/decimal"
)

// ProductStore reads product rows and applies the counter and status
// mutations driven by domain events.
type ProductStore interface {
	// FindPage returns one page of rows and the total matching the same predicate
	FindPage(ctx context.Context, q product.ListQuery) ([]product.CoreRow, int64, error)

	// FindByID returns product.NotFoundError when the row is absent
	FindByID(ctx context.Context, id string) (product.CoreRow, error)

	// FindByIDs returns the rows found, in id order; unknown ids are skipped
	FindByIDs(ctx context.Context, ids []string) ([]product.CoreRow, error)

	IncrementSales(ctx context.Context, id string, quantity int64) error
	UpdateRating(ctx context.Context, id string, rating decimal.Decimal, reviewCount int) error
	InventoryStatus(ctx context.Context, id string) (string, error)
	UpdateInventoryStatus(ctx context.Context, id, status string) error
}

// RelationSource answers grouped lookups: one query per call, whatever the
// number of ids.
type RelationSource interface {
	ImagesByProductIDs(ctx context.Context, productIDs []string) ([]product.Image, error)
	BrandsByIDs(ctx context.Context, ids []string) ([]product.Brand, error)
	SellersByIDs(ctx context.Context, ids []string) ([]product.Seller, error)
	CategoriesByProductIDs(ctx context.Context, productIDs []string) ([]product.CategorySummary, error)
	ReviewsByProductID(ctx context.Context, productID string, limit int) ([]product.Review, error)
	SpecificationsByProductID(ctx context.Context, productID string) ([]product.Specification, error)
}

type ReviewSort string

const (
	ReviewSortNewest  ReviewSort = "newest"
	ReviewSortHelpful ReviewSort = "helpful"
)

// Normalize folds unknown values into newest first.
func (s ReviewSort) Normalize() ReviewSort {
	if s == ReviewSortHelpful {
		return ReviewSortHelpful
	}
	return ReviewSortNewest
}

type ReviewStore interface {
	FindByProduct(ctx context.Context, productID string, sort ReviewSort, p product.PageRequest) ([]product.Review, int64, error)
	FindByUser(ctx context.Context, userID string, p product.PageRequest) ([]product.Review, int64, error)
}

type CatalogStore interface {
	BrandByID(ctx context.Context, id string) (product.Brand, error)
	CategoryByID(ctx context.Context, id string) (product.Category, error)
}
