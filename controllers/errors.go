package controllers

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/tourwise/billing/lib/responses"
	"github.com/tourwise/billing/lib/service"
)

// writeServiceError maps the service error taxonomy onto the HTTP error
// catalog, carrying the service message through so the caller sees the
// limits and balances behind a rejection.
func writeServiceError(c echo.Context, err error) error {
	var notFound *service.NotFoundError
	var invalidState *service.InvalidStateError
	var policy *service.PolicyViolationError
	switch {
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, responses.NotFoundError.WithMessage(err.Error()))
	case errors.As(err, &invalidState):
		return c.JSON(http.StatusBadRequest, responses.InvalidStateError.WithMessage(err.Error()))
	case errors.As(err, &policy):
		return c.JSON(http.StatusBadRequest, responses.PolicyViolationError.WithMessage(err.Error()))
	case errors.Is(err, service.ErrNumberGenerationExhausted):
		return c.JSON(http.StatusConflict, responses.NumberGenerationExhaustedError)
	default:
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
}
