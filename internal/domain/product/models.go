package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoreRow is the flat projection of a product row used by listings and details.
type CoreRow struct {
	ID                  string
	Name                string
	ShortDescription    string
	Description         string
	Price               decimal.Decimal
	OriginalPrice       *decimal.Decimal
	RatingAverage       *decimal.Decimal
	ReviewCount         int
	InventoryStatus     string
	QuantitySold        int64
	AllTimeQuantitySold int64
	BrandID             *string
	SellerID            *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Image struct {
	ID        string
	ProductID string
	URL       string
	AltText   string
	Position  *int
}

type Brand struct {
	ID      string
	Name    string
	Slug    string
	LogoURL string
}

type Seller struct {
	ID      string
	Name    string
	LogoURL string
	Rating  *decimal.Decimal
}

// CategorySummary is the product-to-category join projection.
type CategorySummary struct {
	ProductID string
	ID        string
	Name      string
	URL       string
	ParentID  *string
	Level     int
}

type Category struct {
	ID       string
	Name     string
	URL      string
	ParentID *string
	Level    int
}

type Review struct {
	ID           string
	ProductID    string
	UserID       string
	Rating       int
	Title        string
	Content      string
	HelpfulVotes int
	CreatedAt    time.Time
}

type Specification struct {
	Name  string
	Value string
}

// RelatedBatch holds the relations of one page, keyed for joining.
// It is built per request and never shared.
type RelatedBatch struct {
	ImagesByProductID     map[string][]Image
	BrandsByID            map[string]Brand
	SellersByID           map[string]Seller
	CategoriesByProductID map[string][]CategorySummary
}

func NewRelatedBatch() RelatedBatch {
	return RelatedBatch{
		ImagesByProductID:     make(map[string][]Image),
		BrandsByID:            make(map[string]Brand),
		SellersByID:           make(map[string]Seller),
		CategoriesByProductID: make(map[string][]CategorySummary),
	}
}
