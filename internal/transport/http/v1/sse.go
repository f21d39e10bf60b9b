package v1

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/xiaot623/aazan/internal/domain"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// sseWriter frames events onto a flushed text/event-stream response.
type sseWriter struct {
	w       io.Writer
	flusher http.Flusher
}

// newSSEWriter sends the stream headers with status 200.
func newSSEWriter(c echo.Context) (*sseWriter, error) {
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseWriter{w: c.Response(), flusher: flusher}, nil
}

// Event writes one event. Multi-line data is split over several data lines.
func (s *sseWriter) Event(ev domain.StreamEvent) error {
	var b strings.Builder
	if ev.Event != "" {
		b.WriteString("event: ")
		b.WriteString(ev.Event)
		b.WriteByte('\n')
	}
	data := strings.ReplaceAll(ev.Data, "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return s.write(b.String())
}

// KeepAlive writes a comment line that clients ignore.
func (s *sseWriter) KeepAlive() error {
	return s.write(": keep-alive\n\n")
}

func (s *sseWriter) write(frame string) error {
	if _, err := io.WriteString(s.w, frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
