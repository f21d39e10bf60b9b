package llm

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the public generative-language endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gemini-2.5-flash"

	maxErrorBody = 4096

	// HeaderAPIKey carries the credential. It never goes into the URL.
	HeaderAPIKey = "x-goog-api-key"
)

// Config holds the gateway settings. The API key is read once, here.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// Timeout bounds a blocking Generate call. Streams are bounded by the
	// caller's context only.
	Timeout time.Duration
}

// Client is a Gemini API client.
type Client struct {
	client  *resty.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new Gemini client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetLogger(restyLogger{}).
		SetHeader("Content-Type", "application/json").
		SetHeader(HeaderAPIKey, cfg.APIKey)

	return &Client{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
	}
}

func (c *Client) request(ctx context.Context, material string, history []Content) *resty.Request {
	return c.client.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetBody(BuildRequest(material, history))
}

// Generate sends a generateContent request and extracts the reply text.
func (c *Client) Generate(ctx context.Context, material string, history []Content) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.request(ctx, material, history).Post("/models/{model}:generateContent")
	if err != nil {
		return "", errors.Wrap(err, "failed to send request")
	}

	if !res.IsSuccess() {
		return "", statusError(res.StatusCode(), res.Body())
	}

	var result GenerateContentResponse
	if err := json.Unmarshal(res.Body(), &result); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal response")
	}

	text, ok := result.Text()
	if !ok {
		log.Warn().Str("model", c.model).Msg("gemini response carried no text, using fallback reply")
		return FallbackReply, nil
	}
	return text, nil
}

// GenerateStream sends a streamGenerateContent request with SSE framing and
// yields each text fragment as it is decoded.
func (c *Client) GenerateStream(ctx context.Context, material string, history []Content) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		res, err := c.request(ctx, material, history).
			SetQueryParam("alt", "sse").
			SetHeader("Accept", "text/event-stream").
			SetDoNotParseResponse(true).
			Post("/models/{model}:streamGenerateContent")
		if err != nil {
			yield("", errors.Wrap(err, "failed to send request"))
			return
		}

		body := res.RawBody()
		defer body.Close()

		if !res.IsSuccess() {
			respBody, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
			yield("", statusError(res.StatusCode(), respBody))
			return
		}

		for event, err := range readEvents(body) {
			if err != nil {
				yield("", errors.Wrap(err, "failed to read stream"))
				return
			}

			var chunk GenerateContentResponse
			if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
				log.Debug().Err(err).Str("data", event.Data).Msg("dropping undecodable stream frame")
				continue
			}
			text, ok := chunk.Text()
			if !ok || text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

func statusError(status int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		return errors.Errorf("gemini API error [%d]: %s (status: %s)", status, errResp.Error.Message, errResp.Error.Status)
	}
	return errors.Errorf("gemini API error [%d]: %s", status, truncate(string(body), maxErrorBody))
}

// truncate shortens s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) {
	log.Error().Str("component", "gemini").Msgf(format, v...)
}

func (restyLogger) Warnf(format string, v ...any) {
	log.Warn().Str("component", "gemini").Msgf(format, v...)
}

func (restyLogger) Debugf(format string, v ...any) {
	log.Debug().Str("component", "gemini").Msgf(format, v...)
}
