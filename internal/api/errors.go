package api

import (
	"errors"
	"net/http"

	"github.com/example/catalog-aggregator/internal/domain/product"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps domain errors to HTTP statuses. Anything unrecognised is a
// 500 with a generic message.
func toHTTPError(err error) *echo.HTTPError {
	var validation *product.ValidationError
	switch {
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	case product.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
