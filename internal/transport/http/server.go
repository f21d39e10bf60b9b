// Package http provides the HTTP server implementation for aazan.
package http

import (
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/xiaot623/aazan/internal/logging"
	"github.com/xiaot623/aazan/internal/service"
	v1 "github.com/xiaot623/aazan/internal/transport/http/v1"
)

// ServerOptions configure the server beyond the API handlers.
type ServerOptions struct {
	AllowedOrigins []string
	// StaticDir holds a built web client served at /. Ignored when missing.
	StaticDir string
	Handler   v1.Options
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *service.Service, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(logging.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, v1.HeaderIdempotencyKey, v1.HeaderXIdempotencyKey},
	}))

	if dir := opts.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
				Root:  dir,
				HTML5: true,
				Skipper: func(c echo.Context) bool {
					p := c.Request().URL.Path
					return strings.HasPrefix(p, "/api") || p == "/health"
				},
			}))
			log.Info().Str("dir", dir).Msg("serving static files")
		} else {
			log.Info().Str("dir", dir).Msg("static directory not found, web client disabled")
		}
	}

	// Handlers
	v1Handler := v1.NewHandler(svc, opts.Handler)

	// Register Routes
	v1Handler.RegisterRoutes(e)

	return e
}
