package store

import (
	"time"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/shopspring/decimal"
)

type productRecord struct {
	ID                  string `gorm:"primaryKey"`
	Name                string
	ShortDescription    string
	Description         string
	Price               decimal.Decimal  `gorm:"type:numeric(12,2)"`
	OriginalPrice       *decimal.Decimal `gorm:"type:numeric(12,2)"`
	RatingAverage       *decimal.Decimal `gorm:"type:numeric(3,2)"`
	ReviewCount         *int
	InventoryStatus     string
	QuantitySold        *int64
	AllTimeQuantitySold *int64
	BrandID             *string
	SellerID            *string
	CreatedAt           *time.Time
	UpdatedAt           *time.Time
}

func (productRecord) TableName() string { return "products" }

type imageRecord struct {
	ID        string `gorm:"primaryKey"`
	ProductID string
	URL       string
	AltText   string
	Position  *int
}

func (imageRecord) TableName() string { return "product_images" }

type brandRecord struct {
	ID      string `gorm:"primaryKey"`
	Name    string
	Slug    string
	LogoURL string
}

func (brandRecord) TableName() string { return "brands" }

type sellerRecord struct {
	ID      string `gorm:"primaryKey"`
	Name    string
	LogoURL string
	Rating  *decimal.Decimal `gorm:"type:numeric(3,2)"`
}

func (sellerRecord) TableName() string { return "sellers" }

type categoryRecord struct {
	ID       string `gorm:"primaryKey"`
	Name     string
	URL      string
	ParentID *string
	Level    int
}

func (categoryRecord) TableName() string { return "categories" }

// categoryJoinRow is the product_categories x categories projection.
type categoryJoinRow struct {
	ProductID string
	ID        string
	Name      string
	URL       string
	ParentID  *string
	Level     int
}

type reviewRecord struct {
	ID           string `gorm:"primaryKey"`
	ProductID    string
	UserID       string
	Rating       int
	Title        string
	Content      string
	HelpfulVotes int
	CreatedAt    time.Time
}

func (reviewRecord) TableName() string { return "reviews" }

type specificationRecord struct {
	ProductID string
	Name      string
	Value     string
	Position  int
}

func (specificationRecord) TableName() string { return "product_specifications" }

func (r productRecord) toCoreRow() product.CoreRow {
	row := product.CoreRow{
		ID:               r.ID,
		Name:             r.Name,
		ShortDescription: r.ShortDescription,
		Description:      r.Description,
		Price:            r.Price,
		OriginalPrice:    r.OriginalPrice,
		RatingAverage:    r.RatingAverage,
		InventoryStatus:  r.InventoryStatus,
		BrandID:          r.BrandID,
		SellerID:         r.SellerID,
	}
	if r.ReviewCount != nil {
		row.ReviewCount = *r.ReviewCount
	}
	if r.QuantitySold != nil {
		row.QuantitySold = *r.QuantitySold
	}
	if r.AllTimeQuantitySold != nil {
		row.AllTimeQuantitySold = *r.AllTimeQuantitySold
	}
	if r.CreatedAt != nil {
		row.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		row.UpdatedAt = *r.UpdatedAt
	}
	return row
}

func toCoreRows(records []productRecord) []product.CoreRow {
	rows := make([]product.CoreRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.toCoreRow())
	}
	return rows
}

func (r imageRecord) toImage() product.Image {
	return product.Image{ID: r.ID, ProductID: r.ProductID, URL: r.URL, AltText: r.AltText, Position: r.Position}
}

func (r brandRecord) toBrand() product.Brand {
	return product.Brand{ID: r.ID, Name: r.Name, Slug: r.Slug, LogoURL: r.LogoURL}
}

func (r sellerRecord) toSeller() product.Seller {
	return product.Seller{ID: r.ID, Name: r.Name, LogoURL: r.LogoURL, Rating: r.Rating}
}

func (r categoryRecord) toCategory() product.Category {
	return product.Category{ID: r.ID, Name: r.Name, URL: r.URL, ParentID: r.ParentID, Level: r.Level}
}

func (r categoryJoinRow) toSummary() product.CategorySummary {
	return product.CategorySummary{
		ProductID: r.ProductID,
		ID:        r.ID,
		Name:      r.Name,
		URL:       r.URL,
		ParentID:  r.ParentID,
		Level:     r.Level,
	}
}

func (r reviewRecord) toReview() product.Review {
	return product.Review{
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

func toReviews(records []reviewRecord) []product.Review {
	reviews := make([]product.Review, 0, len(records))
	for _, r := range records {
		reviews = append(reviews, r.toReview())
	}
	return reviews
}
