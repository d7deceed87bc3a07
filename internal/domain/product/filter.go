package product

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Page*Size well inside int range.
	MaxPage = math.MaxInt32 / MaxPageSize

	DefaultSortField = "id"
	fingerprintSep   = "_"
	listSep          = ","
)

// sortColumns maps the public sort field names to product columns.
var sortColumns = map[string]string{
	"id":                  "id",
	"name":                "name",
	"price":               "price",
	"originalPrice":       "original_price",
	"ratingAverage":       "rating_average",
	"reviewCount":         "review_count",
	"quantitySold":        "quantity_sold",
	"allTimeQuantitySold": "all_time_quantity_sold",
	"createdAt":           "created_at",
	"updatedAt":           "updated_at",
}

// Filter describes a product listing request. Treat it as immutable once built.
type Filter struct {
	Keyword         string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	MinRating       *decimal.Decimal
	MaxRating       *decimal.Decimal
	BrandIDs        []string
	BrandNames      []string
	CategoryIDs     []string
	InventoryStatus string
	SortBy          string
	Direction       string
}

// Fingerprint renders every field in a fixed order so the same filter always
// produces the same cache key. List fields keep their given order, so two
// filters that differ only in list order get different fingerprints.
func (f Filter) Fingerprint() string {
	parts := []string{
		f.Keyword,
		decimalString(f.MinPrice),
		decimalString(f.MaxPrice),
		decimalString(f.MinRating),
		decimalString(f.MaxRating),
		strings.Join(f.BrandIDs, listSep),
		strings.Join(f.BrandNames, listSep),
		strings.Join(f.CategoryIDs, listSep),
		f.InventoryStatus,
		f.SortBy,
		f.Direction,
	}
	return strings.Join(parts, fingerprintSep)
}

// HasFilters reports whether any field other than sorting is set.
func (f Filter) HasFilters() bool {
	return f.Keyword != "" ||
		f.MinPrice != nil || f.MaxPrice != nil ||
		f.MinRating != nil || f.MaxRating != nil ||
		len(f.BrandIDs) > 0 || len(f.BrandNames) > 0 || len(f.CategoryIDs) > 0 ||
		f.InventoryStatus != ""
}

func (f Filter) Validate() error {
	if err := validateRange("price", f.MinPrice, f.MaxPrice); err != nil {
		return err
	}
	if err := validateRange("rating", f.MinRating, f.MaxRating); err != nil {
		return err
	}
	if _, err := f.Sort(); err != nil {
		return err
	}
	return nil
}

// Sort resolves the requested sort field to a column. The default is id
// ascending; only "desc" (any case) flips the direction.
func (f Filter) Sort() (Sort, error) {
	field := f.SortBy
	if field == "" {
		field = DefaultSortField
	}
	column, ok := sortColumns[field]
	if !ok {
		return Sort{}, &ValidationError{Field: "sortBy", Reason: "unsupported sort field", Value: f.SortBy}
	}
	return Sort{Column: column, Desc: strings.EqualFold(f.Direction, "desc")}, nil
}

type Sort struct {
	Column string
	Desc   bool
}

func (s Sort) String() string {
	if s.Desc {
		return s.Column + " DESC"
	}
	return s.Column + " ASC"
}

func validateRange(field string, lo, hi *decimal.Decimal) error {
	if lo != nil && lo.IsNegative() {
		return &ValidationError{Field: "min" + title(field), Reason: "must not be negative", Value: lo.String()}
	}
	if hi != nil && hi.IsNegative() {
		return &ValidationError{Field: "max" + title(field), Reason: "must not be negative", Value: hi.String()}
	}
	if lo != nil && hi != nil && lo.GreaterThan(*hi) {
		return &ValidationError{Field: "min" + title(field), Reason: "must not exceed max" + title(field), Value: lo.String()}
	}
	return nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// Listing selects one of the ranked listings, which carry their own ordering.
type Listing int

const (
	ListingDefault Listing = iota
	ListingTopSelling
	ListingTopRated
	ListingNewArrivals
)

type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return &ValidationError{Field: "page", Reason: "must not be negative", Value: p.Page}
	}
	if p.Page > MaxPage {
		return &ValidationError{Field: "page", Reason: "is too large", Value: p.Page}
	}
	if p.Size < 1 || p.Size > MaxPageSize {
		return &ValidationError{Field: "size", Reason: "must be between 1 and 100", Value: p.Size}
	}
	return nil
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// ListQuery is what the paginated fetcher executes.
type ListQuery struct {
	Filter  Filter
	Listing Listing
	Page    PageRequest
}

// PageInfo is the page metadata returned with every listing.
type PageInfo struct {
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
	Last          bool
}

func NewPageInfo(p PageRequest, total int64) PageInfo {
	info := PageInfo{Page: p.Page, Size: p.Size, TotalElements: total}
	if p.Size > 0 {
		info.TotalPages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	info.Last = int64(p.Offset()+p.Size) >= total
	return info
}

// EmptyPageInfo is what a degraded listing reports.
func EmptyPageInfo(p PageRequest) PageInfo {
	return PageInfo{Page: p.Page, Size: p.Size, Last: true}
}
