package responses

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestClientErrorsAreNotSentToSentry(t *testing.T) {
	assert.False(t, isErrAllowedForSentry(echo.NewHTTPError(http.StatusBadRequest, "bad arguments")))
	assert.False(t, isErrAllowedForSentry(echo.NewHTTPError(http.StatusNotFound, "not found")))
}

func TestServerErrorsAreSentToSentry(t *testing.T) {
	assert.True(t, isErrAllowedForSentry(echo.NewHTTPError(http.StatusInternalServerError, "boom")))
	assert.True(t, isErrAllowedForSentry(errors.New("unexpected")))
}

func TestWithMessageDoesNotMutateCatalogEntry(t *testing.T) {
	custom := PolicyViolationError.WithMessage("credit limit exceeded")

	assert.Equal(t, "credit limit exceeded", custom.Message)
	assert.Equal(t, "policy violation", PolicyViolationError.Message)
	assert.Equal(t, PolicyViolationError.Code, custom.Code)
}
