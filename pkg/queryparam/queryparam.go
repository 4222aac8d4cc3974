// Package queryparam parses optional path and query parameters. Malformed
// values become 400 responses.
package queryparam

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/soudan/casebook/internal/platform/dates"
)

// ID parses a positive integer path parameter.
func ID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// Int returns nil when the parameter is absent.
func Int(c echo.Context, name string) (*int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &n, nil
}

func Int64(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &n, nil
}

func Bool(c echo.Context, name string) (*bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &b, nil
}

// Flag is Bool with absent or malformed meaning false.
func Flag(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}

// Date parses YYYY-MM-DD; an absent parameter is the zero Date.
func Date(c echo.Context, name string) (dates.Date, error) {
	v := c.QueryParam(name)
	if v == "" {
		return dates.Date{}, nil
	}
	d, err := dates.Parse(v)
	if err != nil {
		return dates.Date{}, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+": expected YYYY-MM-DD")
	}
	return d, nil
}
