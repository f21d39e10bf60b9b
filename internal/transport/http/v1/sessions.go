package v1

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/xiaot623/aazan/internal/domain"
)

// multipartMemory is the part of an upload held in memory; the rest spills
// to temporary files.
const multipartMemory = 32 << 20

func uploadTooLarge(c echo.Context) error {
	return c.JSON(http.StatusRequestEntityTooLarge, domain.ErrorResponse{Error: "pdf_file is too large"})
}

// CreateSession creates a session from JSON.
// POST /api/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	var req domain.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, err := h.service.CreateSession(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// UploadSession creates a session from a multipart form with a topic and a PDF.
// POST /api/sessions/upload
func (h *Handler) UploadSession(c echo.Context) error {
	// Leave room for the other form fields.
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUploadBytes+1<<20)

	if err := c.Request().ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return uploadTooLarge(c)
		}
		return badRequest(c, "missing 'topic' or 'pdf_file'")
	}

	topic := strings.TrimSpace(c.FormValue("topic"))
	file, err := c.FormFile("pdf_file")
	if topic == "" || err != nil {
		return badRequest(c, "missing 'topic' or 'pdf_file'")
	}
	if file.Size > h.maxUploadBytes {
		return uploadTooLarge(c)
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "unable to read 'pdf_file'")
	}
	defer src.Close()

	document, err := io.ReadAll(io.LimitReader(src, h.maxUploadBytes+1))
	if err != nil {
		return badRequest(c, "unable to read 'pdf_file'")
	}

	material, err := h.extractPDF(document)
	if err != nil {
		log.Warn().Err(err).Str("filename", file.Filename).Msg("pdf extraction failed")
		return c.JSON(http.StatusUnprocessableEntity, domain.ErrorResponse{Error: "invalid or corrupted PDF"})
	}

	session, err := h.service.CreateSession(c.Request().Context(), domain.CreateSessionRequest{
		Topic:        topic,
		MaterialText: material,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// ListSessions lists sessions, newest first.
// GET /api/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	sessions, err := h.service.ListSessions(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sessions)
}

// GetSession retrieves one session.
// GET /api/sessions/:id
func (h *Handler) GetSession(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return badRequest(c, "invalid session id")
	}

	session, err := h.service.GetSession(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// DeleteSession deletes a session and its messages.
// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return badRequest(c, "invalid session id")
	}

	if err := h.service.DeleteSession(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
