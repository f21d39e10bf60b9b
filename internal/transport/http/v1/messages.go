package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/aazan/internal/domain"
)

// Idempotency key headers, in order of precedence over the body field.
const (
	HeaderIdempotencyKey  = "Idempotency-Key"
	HeaderXIdempotencyKey = "X-Idempotency-Key"
)

// bindMessage decodes a turn request and resolves its idempotency key.
func bindMessage(c echo.Context) (domain.CreateMessageRequest, error) {
	var req domain.CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return req, err
	}
	for _, header := range []string{HeaderIdempotencyKey, HeaderXIdempotencyKey} {
		if key := strings.TrimSpace(c.Request().Header.Get(header)); key != "" {
			req.IdempotencyKey = key
			break
		}
	}
	return req, nil
}

// CreateMessage submits a user turn and returns it with the reply.
// POST /api/sessions/:id/messages
func (h *Handler) CreateMessage(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return badRequest(c, "invalid session id")
	}
	req, err := bindMessage(c)
	if err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.service.SubmitTurn(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, result.Messages())
}

// ListMessages retrieves the messages of a session, oldest first.
// GET /api/sessions/:id/messages
func (h *Handler) ListMessages(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return badRequest(c, "invalid session id")
	}

	messages, err := h.service.GetMessages(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}
