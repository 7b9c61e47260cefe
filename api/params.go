package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront.GO/core/apperror"
)

// ParamID reads a positive integer path parameter.
func ParamID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperror.InvalidOperation("request", 0, "invalid %s %q", name, c.Param(name))
	}
	return uint(v), nil
}
