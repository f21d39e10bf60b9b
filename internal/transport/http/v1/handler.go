// Package v1 provides the HTTP handlers of the public API.
package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/aazan/internal/adapter/pdf"
	"github.com/xiaot623/aazan/internal/service"
)

// Version is reported by the health endpoint.
var Version = "0.1.0"

const (
	defaultKeepAlive      = 10 * time.Second
	defaultMaxUploadBytes = 20 << 20
)

// Options tune a Handler. Zero values pick defaults.
type Options struct {
	// KeepAlive is the idle interval between SSE keep-alive comments.
	KeepAlive time.Duration
	// MaxUploadBytes caps an uploaded PDF.
	MaxUploadBytes int64
	// ExtractPDF turns an uploaded document into material text.
	ExtractPDF func(document []byte) (string, error)
}

// Handler handles HTTP requests.
type Handler struct {
	service        *service.Service
	keepAlive      time.Duration
	maxUploadBytes int64
	extractPDF     func([]byte) (string, error)
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, opts Options) *Handler {
	h := &Handler{
		service:        service,
		keepAlive:      opts.KeepAlive,
		maxUploadBytes: opts.MaxUploadBytes,
		extractPDF:     opts.ExtractPDF,
	}
	if h.keepAlive <= 0 {
		h.keepAlive = defaultKeepAlive
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = defaultMaxUploadBytes
	}
	if h.extractPDF == nil {
		h.extractPDF = pdf.ExtractText
	}
	return h
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// Sessions
	api.POST("/sessions", h.CreateSession)
	api.POST("/sessions/upload", h.UploadSession)
	api.GET("/sessions", h.ListSessions)
	api.GET("/sessions/:id", h.GetSession)
	api.DELETE("/sessions/:id", h.DeleteSession)

	// Messages
	api.POST("/sessions/:id/messages", h.CreateMessage)
	api.GET("/sessions/:id/messages", h.ListMessages)

	// Streaming
	api.GET("/sessions/:id/stream", h.StreamSession)
	api.POST("/sessions/:id/messages/stream", h.CreateMessageStream)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}
