package readmodel

import (
	"time"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/shopspring/decimal"
)

const (
	MaxSummaryImages = 3
	MaxDetailReviews = 5
)

type ImageView struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	AltText  string `json:"altText,omitempty"`
	Position *int   `json:"position,omitempty"`
}

type BrandView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug,omitempty"`
	LogoURL string `json:"logoUrl,omitempty"`
}

type SellerView struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	LogoURL string           `json:"logoUrl,omitempty"`
	Rating  *decimal.Decimal `json:"rating,omitempty"`
}

type CategoryView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	URL      string  `json:"url,omitempty"`
	ParentID *string `json:"parentId,omitempty"`
	Level    int     `json:"level"`
}

type ReviewView struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	UserID       string    `json:"userId"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content,omitempty"`
	HelpfulVotes int       `json:"helpfulVotes"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SpecificationView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductSummary is the listing read model
type ProductSummary struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	ShortDescription    string           `json:"shortDescription,omitempty"`
	Price               decimal.Decimal  `json:"price"`
	OriginalPrice       *decimal.Decimal `json:"originalPrice,omitempty"`
	RatingAverage       *decimal.Decimal `json:"ratingAverage,omitempty"`
	ReviewCount         int              `json:"reviewCount"`
	InventoryStatus     string           `json:"inventoryStatus"`
	QuantitySold        int64            `json:"quantitySold"`
	AllTimeQuantitySold int64            `json:"allTimeQuantitySold"`
	Brand               *BrandView       `json:"brand,omitempty"`
	Seller              *SellerView      `json:"seller,omitempty"`
	Images              []ImageView      `json:"images"`
	Categories          []CategoryView   `json:"categories"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// ProductDetail is the single product read model
type ProductDetail struct {
	ProductSummary
	Description    string              `json:"description,omitempty"`
	Reviews        []ReviewView        `json:"reviews"`
	Specifications []SpecificationView `json:"specifications"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// Page is the paginated response envelope
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

func NewPage[T any](content []T, info product.PageInfo) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		Page:          info.Page,
		Size:          info.Size,
		TotalElements: info.TotalElements,
		TotalPages:    info.TotalPages,
		Last:          info.Last,
	}
}

// EmptyPage is returned when a listing degrades.
func EmptyPage[T any](p product.PageRequest) Page[T] {
	return NewPage[T](nil, product.EmptyPageInfo(p))
}

func (p Page[T]) IsEmpty() bool {
	return len(p.Content) == 0
}
