package llm

import (
	"context"
	"fmt"
	"iter"

	"github.com/xiaot623/aazan/internal/domain"
)

// MockClient is a mock implementation of Gateway for local runs and tests.
type MockClient struct {
	// ChunkSize is the number of characters per streamed fragment.
	ChunkSize int
}

// NewMockClient creates a new mock gateway.
func NewMockClient() *MockClient {
	return &MockClient{ChunkSize: 10}
}

// Ensure MockClient implements Gateway interface.
var _ Gateway = (*MockClient)(nil)

// Generate returns a canned reply that quotes the last user turn.
func (m *MockClient) Generate(ctx context.Context, material string, history []Content) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.generateMockResponse(history), nil
}

// GenerateStream streams the Generate reply in ChunkSize pieces.
func (m *MockClient) GenerateStream(ctx context.Context, material string, history []Content) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, chunk := range splitIntoChunks(m.generateMockResponse(history), m.ChunkSize) {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// generateMockResponse generates a mock response based on the history.
func (m *MockClient) generateMockResponse(history []Content) string {
	var lastUserMessage string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.ProviderRoleUser && len(history[i].Parts) > 0 {
			lastUserMessage = history[i].Parts[0].Text
			break
		}
	}

	if lastUserMessage == "" {
		return "[MOCK] I'm excited to learn this topic! Where should we start?"
	}

	return fmt.Sprintf("[MOCK] You said %q. Could you explain that part in more detail?", truncate(lastUserMessage, 100))
}

// splitIntoChunks splits s into pieces of at most size runes.
func splitIntoChunks(s string, size int) []string {
	if size <= 0 {
		return []string{s}
	}
	runes := []rune(s)
	var chunks []string
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
