package http

import (
	"errors"
	"net/http"
	"strings"

	"ecolocker/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const msgInternal = "Internal server error"

var notFoundMessages = map[string]string{
	"orderId":   "Order not found",
	"listingId": "Listing not found",
	"lockerId":  "Locker not found",
}

// classify maps the error taxonomy onto a status code and a client-safe message.
// Conflicts carry their message verbatim.
func classify(err error) (int, string) {
	var (
		conflict     *errs.StateConflictError
		notFound     *errs.ObjectNotFoundError
		unauthorized *errs.UnauthorizedError
	)

	switch {
	case errors.As(err, &conflict):
		return http.StatusBadRequest, conflict.Message
	case errors.As(err, &notFound):
		if msg, ok := notFoundMessages[notFound.ParamName]; ok {
			return http.StatusNotFound, msg
		}
		return http.StatusNotFound, "Not found"
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, unauthorized.Reason
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, strings.ReplaceAll(err.Error(), "\n", "; ")
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func writeError(c echo.Context, err error) error {
	code, msg := classify(err)
	if code == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(code, Error{Code: code, Message: msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: msg})
}
