package readmodel

import (
	"sort"

	"github.com/example/catalog-aggregator/internal/domain/product"
)

// Summaries joins a page of rows with its relation batch, keeping row order.
func Summaries(rows []product.CoreRow, batch product.RelatedBatch) []ProductSummary {
	out := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, Summary(row, batch))
	}
	return out
}

func Summary(row product.CoreRow, batch product.RelatedBatch) ProductSummary {
	s := ProductSummary{
		ID:                  row.ID,
		Name:                row.Name,
		ShortDescription:    row.ShortDescription,
		Price:               row.Price,
		OriginalPrice:       row.OriginalPrice,
		RatingAverage:       row.RatingAverage,
		ReviewCount:         row.ReviewCount,
		InventoryStatus:     row.InventoryStatus,
		QuantitySold:        row.QuantitySold,
		AllTimeQuantitySold: row.AllTimeQuantitySold,
		Images:              shapeImages(batch.ImagesByProductID[row.ID]),
		Categories:          categoryViews(batch.CategoriesByProductID[row.ID]),
		CreatedAt:           row.CreatedAt,
	}

	if row.BrandID != nil {
		if b, ok := batch.BrandsByID[*row.BrandID]; ok {
			s.Brand = &BrandView{ID: b.ID, Name: b.Name, Slug: b.Slug, LogoURL: b.LogoURL}
		}
	}
	if row.SellerID != nil {
		if sl, ok := batch.SellersByID[*row.SellerID]; ok {
			s.Seller = &SellerView{ID: sl.ID, Name: sl.Name, LogoURL: sl.LogoURL, Rating: sl.Rating}
		}
	}
	return s
}

func Detail(row product.CoreRow, batch product.RelatedBatch, reviews []product.Review, specs []product.Specification) ProductDetail {
	d := ProductDetail{
		ProductSummary: Summary(row, batch),
		Description:    row.Description,
		Reviews:        make([]ReviewView, 0, min(len(reviews), MaxDetailReviews)),
		Specifications: make([]SpecificationView, 0, len(specs)),
		UpdatedAt:      row.UpdatedAt,
	}

	for i, r := range reviews {
		if i == MaxDetailReviews {
			break
		}
		d.Reviews = append(d.Reviews, Review(r))
	}
	for _, sp := range specs {
		d.Specifications = append(d.Specifications, SpecificationView{Name: sp.Name, Value: sp.Value})
	}
	return d
}

func Review(r product.Review) ReviewView {
	return ReviewView{
		ID:           r.ID,
		ProductID:    r.ProductID,
		UserID:       r.UserID,
		Rating:       r.Rating,
		Title:        r.Title,
		Content:      r.Content,
		HelpfulVotes: r.HelpfulVotes,
		CreatedAt:    r.CreatedAt,
	}
}

func Reviews(reviews []product.Review) []ReviewView {
	out := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, Review(r))
	}
	return out
}

// shapeImages sorts by position with unpositioned images last, then keeps
// the first MaxSummaryImages.
func shapeImages(images []product.Image) []ImageView {
	sorted := make([]product.Image, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Position, sorted[j].Position
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})

	if len(sorted) > MaxSummaryImages {
		sorted = sorted[:MaxSummaryImages]
	}

	out := make([]ImageView, 0, len(sorted))
	for _, img := range sorted {
		out = append(out, ImageView{ID: img.ID, URL: img.URL, AltText: img.AltText, Position: img.Position})
	}
	return out
}

func categoryViews(categories []product.CategorySummary) []CategoryView {
	out := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryView{ID: c.ID, Name: c.Name, URL: c.URL, ParentID: c.ParentID, Level: c.Level})
	}
	return out
}
