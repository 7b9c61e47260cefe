package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"storefront.GO/core/apperror"
)

// StatusFor maps an engine error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrMissingAttribute), errors.Is(err, apperror.ErrInvalidAttributeValue):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON body. Validation errors carry the attribute name.
func Error(c echo.Context, err error) error {
	status := StatusFor(err)
	body := echo.Map{"error": err.Error()}
	if name, ok := apperror.AttributeName(err); ok {
		body["attribute"] = name
	}
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":    c.Path(),
			"took_ms": Elapsed(c).Milliseconds(),
		}).Error("request failed")
		body["error"] = "internal error"
	}
	return c.JSON(status, body)
}

// BadRequest writes a 400 with msg.
func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
