package query

import (
	"context"
	"fmt"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/example/catalog-aggregator/internal/infrastructure/store"
)

// Loader resolves the relations of a whole page with one grouped lookup per
// relation type, never one per row.
type Loader struct {
	source store.RelationSource
}

func NewLoader(source store.RelationSource) *Loader {
	return &Loader{source: source}
}

func (l *Loader) Load(ctx context.Context, rows []product.CoreRow) (product.RelatedBatch, error) {
	const op = "Loader.Load"

	batch := product.NewRelatedBatch()
	if len(rows) == 0 {
		return batch, nil
	}

	productIDs, brandIDs, sellerIDs := distinctIDs(rows)

	images, err := l.source.ImagesByProductIDs(ctx, productIDs)
	if err != nil {
		return batch, fmt.Errorf("%s: images: %w", op, err)
	}
	for _, img := range images {
		batch.ImagesByProductID[img.ProductID] = append(batch.ImagesByProductID[img.ProductID], img)
	}

	if len(brandIDs) > 0 {
		brands, err := l.source.BrandsByIDs(ctx, brandIDs)
		if err != nil {
			return batch, fmt.Errorf("%s: brands: %w", op, err)
		}
		for _, b := range brands {
			batch.BrandsByID[b.ID] = b
		}
	}

	if len(sellerIDs) > 0 {
		sellers, err := l.source.SellersByIDs(ctx, sellerIDs)
		if err != nil {
			return batch, fmt.Errorf("%s: sellers: %w", op, err)
		}
		for _, s := range sellers {
			batch.SellersByID[s.ID] = s
		}
	}

	categories, err := l.source.CategoriesByProductIDs(ctx, productIDs)
	if err != nil {
		return batch, fmt.Errorf("%s: categories: %w", op, err)
	}
	for _, c := range categories {
		batch.CategoriesByProductID[c.ProductID] = append(batch.CategoriesByProductID[c.ProductID], c)
	}

	return batch, nil
}

// LoadDetail fetches the extras only a detail view carries.
func (l *Loader) LoadDetail(ctx context.Context, productID string, maxReviews int) ([]product.Review, []product.Specification, error) {
	const op = "Loader.LoadDetail"

	reviews, err := l.source.ReviewsByProductID(ctx, productID, maxReviews)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: reviews: %w", op, err)
	}
	specs, err := l.source.SpecificationsByProductID(ctx, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: specifications: %w", op, err)
	}
	return reviews, specs, nil
}

// distinctIDs keeps first-seen order so queries are stable.
func distinctIDs(rows []product.CoreRow) (productIDs, brandIDs, sellerIDs []string) {
	seenP := make(map[string]struct{}, len(rows))
	seenB := make(map[string]struct{})
	seenS := make(map[string]struct{})

	for _, r := range rows {
		if _, ok := seenP[r.ID]; !ok {
			seenP[r.ID] = struct{}{}
			productIDs = append(productIDs, r.ID)
		}
		if r.BrandID != nil {
			if _, ok := seenB[*r.BrandID]; !ok {
				seenB[*r.BrandID] = struct{}{}
				brandIDs = append(brandIDs, *r.BrandID)
			}
		}
		if r.SellerID != nil {
			if _, ok := seenS[*r.SellerID]; !ok {
				seenS[*r.SellerID] = struct{}{}
				sellerIDs = append(sellerIDs, *r.SellerID)
			}
		}
	}
	return productIDs, brandIDs, sellerIDs
}
