package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/xiaot623/aazan/internal/domain"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error body. Only the classified message is
// exposed; underlying causes are logged.
func fail(c echo.Context, err error) error {
	status := statusFor(err)
	msg := http.StatusText(status)
	var de *domain.Error
	if errors.As(err, &de) {
		msg = domain.ClientMessage(err)
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Bool("store_failure", domain.IsStoreFailure(err)).
			Msg("request failed")
	}
	return c.JSON(status, domain.ErrorResponse{Error: msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: msg})
}

// sessionID parses the :id path parameter, plain or URN form.
func sessionID(c echo.Context) (domain.ID, bool) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		return domain.NilID, false
	}
	return id, true
}
