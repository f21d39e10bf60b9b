package llm

// Part is one piece of a content turn. Only text parts are used.
type Part struct {
	Text string `json:"text"`
}

// Content is one conversation turn on the provider wire.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// TextContent builds a single-part turn.
func TextContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

// GenerateContentRequest is the body of generateContent and streamGenerateContent.
type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

// Candidate is one generated alternative.
type Candidate struct {
	Content Content `json:"content"`
}

// GenerateContentResponse is the body of generateContent and of each
// streamGenerateContent frame.
type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Text returns the first candidate's first part. ok is false when either
// is missing.
func (r *GenerateContentResponse) Text() (text string, ok bool) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	return r.Candidates[0].Content.Parts[0].Text, true
}

// ErrorResponse is the provider's error envelope.
type ErrorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
