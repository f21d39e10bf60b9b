package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	})
}

func TestSetup(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	require.NoError(t, Setup("warn", "json", &buf))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
}

func TestSetupRejectsBadInput(t *testing.T) {
	restoreGlobals(t)
	assert.Error(t, Setup("loud", "json", nil))
	assert.Error(t, Setup("info", "xml", nil))
}

func TestRequestLogger(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer
	require.NoError(t, Setup("info", "json", &buf))

	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/health", entry["uri"])
	assert.Equal(t, float64(http.StatusNoContent), entry["status"])
}
