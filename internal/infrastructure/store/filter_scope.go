package store

import (
	"strings"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"gorm.io/gorm"
)

// filterScope turns a Filter into the conjunction of its set conditions.
func filterScope(f product.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
			like := "%" + kw + "%"
			db = db.Where("(LOWER(products.name) LIKE ? OR LOWER(products.short_description) LIKE ?)", like, like)
		}
		if f.MinPrice != nil {
			db = db.Where("products.price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("products.price <= ?", *f.MaxPrice)
		}
		if f.MinRating != nil {
			db = db.Where("products.rating_average >= ?", *f.MinRating)
		}
		if f.MaxRating != nil {
			db = db.Where("products.rating_average <= ?", *f.MaxRating)
		}
		if len(f.BrandIDs) > 0 {
			db = db.Where("products.brand_id IN ?", f.BrandIDs)
		}
		if len(f.BrandNames) > 0 {
			names := make([]string, 0, len(f.BrandNames))
			for _, n := range f.BrandNames {
				names = append(names, strings.ToLower(n))
			}
			db = db.Where("products.brand_id IN (SELECT id FROM brands WHERE LOWER(name) IN ?)", names)
		}
		if len(f.CategoryIDs) > 0 {
			// subquery keeps one row per product when it sits in several matching categories
			db = db.Where("products.id IN (SELECT product_id FROM product_categories WHERE category_id IN ?)", f.CategoryIDs)
		}
		if f.InventoryStatus != "" {
			db = db.Where("products.inventory_status = ?", f.InventoryStatus)
		}
		return db
	}
}

// listingScope restricts ranked listings to rows that carry the ranking column.
func listingScope(l product.Listing) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch l {
		case product.ListingTopSelling:
			return db.Where("products.all_time_quantity_sold IS NOT NULL")
		case product.ListingTopRated:
			return db.Where("products.rating_average IS NOT NULL")
		case product.ListingNewArrivals:
			return db.Where("products.created_at IS NOT NULL")
		}
		return db
	}
}

// orderFor returns the ORDER BY of a listing. Ranked listings ignore the
// requested sort.
func orderFor(l product.Listing, s product.Sort) string {
	switch l {
	case product.ListingTopSelling:
		return "products.all_time_quantity_sold DESC, products.id ASC"
	case product.ListingTopRated:
		return "products.rating_average DESC, products.id ASC"
	case product.ListingNewArrivals:
		return "products.created_at DESC, products.id ASC"
	}
	return "products." + s.String()
}
