package llm

import (
	"strings"

	"github.com/xiaot623/aazan/internal/domain"
)

// TutorPrompt is the persona given to the model. The single {} is replaced
// with the session's material text.
const TutorPrompt = `You are Bodhi, an enthusiastic AI student learning from your teacher. Your goal is to understand the material deeply by asking questions, seeking clarification, and demonstrating your understanding.

Personality:
- Curious and eager to learn
- Admits when confused (never pretends to understand)
- Asks thoughtful follow-up questions
- Makes connections to related concepts
- Occasionally summarizes to confirm understanding
- Keep responses concise (2-4 sentences) and ask one question at a time.

Teaching Material:
---
{}
---

Start by expressing excitement about learning this topic and asking an opening question that shows you've read the material.`

// ReadyReply is the model's scripted answer to the persona turn.
const ReadyReply = "I'm ready to learn! Let's begin."

// FallbackReply is returned when the provider answers without any text.
const FallbackReply = "I'm sorry, I'm not sure how to respond to that."

// RenderPrompt substitutes material into TutorPrompt.
func RenderPrompt(material string) string {
	return strings.Replace(TutorPrompt, "{}", material, 1)
}

// BuildRequest prepends the two priming turns to history.
func BuildRequest(material string, history []Content) *GenerateContentRequest {
	contents := make([]Content, 0, len(history)+2)
	contents = append(contents,
		TextContent(domain.ProviderRoleUser, RenderPrompt(material)),
		TextContent(domain.ProviderRoleModel, ReadyReply),
	)
	contents = append(contents, history...)
	return &GenerateContentRequest{Contents: contents}
}
