package service

import (
	"github.com/xiaot623/aazan/internal/adapter/llm"
	"github.com/xiaot623/aazan/internal/domain"
)

// toContents maps stored messages onto provider turns, preserving order.
func toContents(messages []domain.Message) []llm.Content {
	contents := make([]llm.Content, 0, len(messages))
	for _, msg := range messages {
		contents = append(contents, llm.TextContent(msg.Role.ProviderRole(), msg.Content))
	}
	return contents
}
