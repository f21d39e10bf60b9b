package v1

import (
	"iter"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/xiaot623/aazan/internal/domain"
)

// StreamSession streams a reply to the stored conversation.
// GET /api/sessions/:id/stream
func (h *Handler) StreamSession(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return badRequest(c, "invalid session id")
	}
	return h.pump(c, h.service.OpenStream(c.Request().Context(), id))
}

// CreateMessageStream submits a user turn and streams the reply.
// POST /api/sessions/:id/messages/stream
func (h *Handler) CreateMessageStream(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return badRequest(c, "invalid session id")
	}
	req, err := bindMessage(c)
	if err != nil {
		return badRequest(c, "invalid request body")
	}

	events, err := h.service.SubmitTurnStream(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return h.pump(c, events)
}

// pump writes events as SSE frames, with a keep-alive comment whenever the
// stream has been idle for h.keepAlive. It returns when the events end or
// the client goes away.
func (h *Handler) pump(c echo.Context, events iter.Seq[domain.StreamEvent]) error {
	ctx := c.Request().Context()

	w, err := newSSEWriter(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: err.Error()})
	}

	ch := make(chan domain.StreamEvent)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(ch)
		for ev := range events {
			select {
			case ch <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := w.Event(ev); err != nil {
				log.Debug().Err(err).Msg("stream client write failed")
				return nil
			}
			ticker.Reset(h.keepAlive)

		case <-ticker.C:
			if err := w.KeepAlive(); err != nil {
				log.Debug().Err(err).Msg("stream client write failed")
				return nil
			}

		case <-ctx.Done():
			// Client disconnected
			return nil
		}
	}
}
