package responses

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var NotFoundError = ErrorResponse{
	Error:          true,
	Code:           3,
	Message:        "not found",
	HttpStatusCode: 404,
}

var InvalidStateError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "operation not allowed in the invoice's current status",
	HttpStatusCode: 400,
}

var PolicyViolationError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "policy violation",
	HttpStatusCode: 400,
}

var NumberGenerationExhaustedError = ErrorResponse{
	Error:          true,
	Code:           7,
	Message:        "could not allocate a unique invoice number, please retry",
	HttpStatusCode: 409,
}

// WithMessage returns a copy of the response carrying the concrete failure
// message, so callers can explain a rejection without a second query.
func (r ErrorResponse) WithMessage(message string) ErrorResponse {
	r.Message = message
	return r
}

// client errors (4xx) are expected business rejections, only unexpected
// failures should reach sentry
func isErrAllowedForSentry(err error) bool {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return true
	}
	return he.Code >= http.StatusInternalServerError
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil && isErrAllowedForSentry(err) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("RequestID", c.Response().Header().Get(echo.HeaderXRequestID))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
	} else {
		c.JSON(http.StatusInternalServerError, GeneralServerError)
	}
}
