package domain

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	Topic        string `json:"topic"`
	MaterialText string `json:"material_text"`
}

// CreateMessageRequest is the body of POST /api/sessions/:id/messages.
type CreateMessageRequest struct {
	Role           Role   `json:"role"`
	Content        string `json:"content"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
