// Package policy evaluates rego rules that gate incoming turns and sessions.
package policy

import (
	"context"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"
)

// Input kinds understood by DefaultPolicy.
const (
	KindMessage = "message"
	KindSession = "session"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
// The module must define the set rule data.input_policy.deny.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.input_policy.deny"),
		rego.Module("input_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate returns the sorted deny messages for input. An empty result
// means the input is allowed.
func (e *Engine) Evaluate(ctx context.Context, input any) ([]string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return nil, nil
	}

	set, ok := results[0].Expressions[0].Value.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}

	reasons := make([]string, 0, len(set))
	for _, v := range set {
		if s, ok := v.(string); ok {
			reasons = append(reasons, s)
		}
	}
	sort.Strings(reasons)
	return reasons, nil
}

// MessageInput builds the policy input for a submitted turn.
func MessageInput(role, content string, maxContentChars int) map[string]any {
	return map[string]any{
		"kind":              KindMessage,
		"role":              role,
		"content":           content,
		"max_content_chars": maxContentChars,
	}
}

// SessionInput builds the policy input for a new session.
func SessionInput(topic, materialText string) map[string]any {
	return map[string]any{
		"kind":          KindSession,
		"topic":         topic,
		"material_text": materialText,
	}
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package input_policy

deny[msg] {
	input.kind == "message"
	input.role != "user"
	msg := sprintf("role must be %q", ["user"])
}

deny[msg] {
	input.kind == "message"
	trim_space(input.content) == ""
	msg := "content must not be empty"
}

deny[msg] {
	input.kind == "message"
	input.max_content_chars > 0
	count(input.content) > input.max_content_chars
	msg := sprintf("content exceeds %d characters", [input.max_content_chars])
}

deny[msg] {
	input.kind == "session"
	trim_space(input.topic) == ""
	msg := "topic is required"
}

deny[msg] {
	input.kind == "session"
	trim_space(input.material_text) == ""
	msg := "material_text is required"
}
`
