// Package llm talks to the Gemini generative-language API.
package llm

import (
	"context"
	"iter"
)

// Gateway defines the model operations the service needs.
type Gateway interface {
	// Generate returns the full reply for history. A response without text
	// yields FallbackReply, not an error.
	Generate(ctx context.Context, material string, history []Content) (string, error)

	// GenerateStream yields reply fragments as they arrive. A transport or
	// read failure is yielded once as ("", err) and ends the sequence.
	// The sequence is single-use.
	GenerateStream(ctx context.Context, material string, history []Content) iter.Seq2[string, error]
}

// Ensure Client implements Gateway interface.
var _ Gateway = (*Client)(nil)
