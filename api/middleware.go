package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"storefront.GO/core/registry"
)

const requestRegistryKey = "registry"

// RequestDuration stamps X-Request-Duration-ms on every response.
func RequestDuration() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqReg := registry.NewRequestRegistry()
			reqReg.Set(registry.KeyRequestStart, time.Now())
			c.Set(requestRegistryKey, reqReg)

			c.Response().Before(func() {
				c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(Elapsed(c).Milliseconds(), 10))
			})
			err := next(c)
			logrus.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Path(),
				"took_ms": Elapsed(c).Milliseconds(),
			}).Debug("request")
			return err
		}
	}
}

// Elapsed returns the time since RequestDuration saw the request, or 0
// outside that middleware.
func Elapsed(c echo.Context) time.Duration {
	reqReg, ok := c.Get(requestRegistryKey).(*registry.RequestRegistry)
	if !ok {
		return 0
	}
	v, ok := reqReg.Get(registry.KeyRequestStart)
	if !ok {
		return 0
	}
	start, ok := v.(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}
