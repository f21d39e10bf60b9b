package llm

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// ModeMock selects the MockClient.
const ModeMock = "MOCK"

// NewGateway creates a gateway for the given run mode. MOCK returns a
// MockClient; anything else returns a real Client.
func NewGateway(mode string, cfg Config) Gateway {
	if strings.EqualFold(mode, ModeMock) {
		log.Info().Msg("AAZAN_MODE=MOCK detected, using mock model gateway")
		return NewMockClient()
	}

	log.Info().Str("model", cfg.Model).Str("base_url", cfg.BaseURL).Msg("using gemini model gateway")
	return NewClient(cfg)
}
