package api

import (
	"strconv"
	"strings"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func pageRequest(c echo.Context) (product.PageRequest, error) {
	p := product.PageRequest{Page: 0, Size: product.DefaultPageSize}
	var err error
	if p.Page, err = intParam(c, "page", p.Page); err != nil {
		return p, err
	}
	if p.Size, err = intParam(c, "size", p.Size); err != nil {
		return p, err
	}
	return p, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &product.ValidationError{Field: name, Reason: "must be an integer", Value: raw}
	}
	return v, nil
}

func decimalParam(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &product.ValidationError{Field: name, Reason: "must be a number", Value: raw}
	}
	return &d, nil
}

// listParam accepts both repeated parameters and comma separated values,
// keeping the order given.
func listParam(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func filterFromQuery(c echo.Context) (product.Filter, error) {
	f := product.Filter{
		Keyword:         strings.TrimSpace(c.QueryParam("keyword")),
		BrandIDs:        listParam(c, "brandIds"),
		BrandNames:      listParam(c, "brandNames"),
		CategoryIDs:     listParam(c, "categoryIds"),
		InventoryStatus: c.QueryParam("inventoryStatus"),
		SortBy:          c.QueryParam("sortBy"),
		Direction:       c.QueryParam("direction"),
	}

	var err error
	if f.MinPrice, err = decimalParam(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = decimalParam(c, "maxPrice"); err != nil {
		return f, err
	}
	if f.MinRating, err = decimalParam(c, "minRating"); err != nil {
		return f, err
	}
	if f.MaxRating, err = decimalParam(c, "maxRating"); err != nil {
		return f, err
	}
	return f, nil
}
