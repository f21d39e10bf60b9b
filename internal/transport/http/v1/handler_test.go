package v1

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/aazan/internal/adapter/llm"
	"github.com/xiaot623/aazan/internal/domain"
	"github.com/xiaot623/aazan/internal/policy"
	"github.com/xiaot623/aazan/internal/repository"
	"github.com/xiaot623/aazan/internal/service"
	"github.com/xiaot623/aazan/internal/testutil"
)

// scriptedGateway replies with fixed text or fails.
type scriptedGateway struct {
	reply     string
	err       error
	fragments []string
	streamErr error
	// firstDelay postpones the first fragment.
	firstDelay time.Duration
}

func (g *scriptedGateway) Generate(ctx context.Context, material string, history []llm.Content) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *scriptedGateway) GenerateStream(ctx context.Context, material string, history []llm.Content) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if g.firstDelay > 0 {
			time.Sleep(g.firstDelay)
		}
		for _, f := range g.fragments {
			if !yield(f, nil) {
				return
			}
		}
		if g.streamErr != nil {
			yield("", g.streamErr)
		}
	}
}

func newTestHandler(t *testing.T, gw llm.Gateway, opts Options) (*Handler, *repository.SQLiteStore) {
	t.Helper()
	db := testutil.NewStore(t)
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	svc := service.New(db, gw, policyEngine, service.Options{MaxContentChars: 1000})
	return NewHandler(svc, opts), db
}

func newContext(e *echo.Echo, method, target string, body io.Reader, id string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t, &scriptedGateway{}, Options{})

	c, rec := newContext(e, http.MethodGet, "/health", nil, "")
	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"`+Version+`"}`, rec.Body.String())
}

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t, &scriptedGateway{}, Options{})
	h.RegisterRoutes(e)

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/sessions",
		"POST /api/sessions/upload",
		"GET /api/sessions",
		"GET /api/sessions/:id",
		"DELETE /api/sessions/:id",
		"POST /api/sessions/:id/messages",
		"GET /api/sessions/:id/messages",
		"GET /api/sessions/:id/stream",
		"POST /api/sessions/:id/messages/stream",
		"GET /health",
	} {
		assert.True(t, routes[want], want)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.Wrap(domain.ErrNotFound, nil, "x")))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.Wrap(domain.ErrValidation, nil, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.Wrap(domain.ErrStoreRead, nil, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.Wrap(domain.ErrStoreWrite, nil, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.Wrap(domain.ErrGateway, nil, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(context.Canceled))
}

func TestFailHidesCause(t *testing.T) {
	e := echo.New()
	c, rec := newContext(e, http.MethodGet, "/", nil, "")

	require.NoError(t, fail(c, domain.Wrap(domain.ErrStoreRead, io.ErrUnexpectedEOF, "failed to retrieve session")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to retrieve session", decodeError(t, rec))
	assert.NotContains(t, rec.Body.String(), "EOF")
}

func TestSessionIDAcceptsBothForms(t *testing.T) {
	e := echo.New()
	id := domain.NewID()

	for _, form := range []string{id.String(), id.URN()} {
		c, _ := newContext(e, http.MethodGet, "/", nil, form)
		got, ok := sessionID(c)
		require.True(t, ok, form)
		assert.Equal(t, id, got)
	}

	c, _ := newContext(e, http.MethodGet, "/", nil, "nope")
	_, ok := sessionID(c)
	assert.False(t, ok)
}

func TestIdempotencyKeyPrecedence(t *testing.T) {
	e := echo.New()

	c, _ := newContext(e, http.MethodPost, "/", strings.NewReader(`{"content":"hi","idempotency_key":"body"}`), "")
	req, err := bindMessage(c)
	require.NoError(t, err)
	assert.Equal(t, "body", req.IdempotencyKey)

	c, _ = newContext(e, http.MethodPost, "/", strings.NewReader(`{"content":"hi","idempotency_key":"body"}`), "")
	c.Request().Header.Set(HeaderXIdempotencyKey, "x-header")
	req, err = bindMessage(c)
	require.NoError(t, err)
	assert.Equal(t, "x-header", req.IdempotencyKey)

	c, _ = newContext(e, http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`), "")
	c.Request().Header.Set(HeaderXIdempotencyKey, "x-header")
	c.Request().Header.Set(HeaderIdempotencyKey, "header")
	req, err = bindMessage(c)
	require.NoError(t, err)
	assert.Equal(t, "header", req.IdempotencyKey)
}
