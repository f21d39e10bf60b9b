package domain

import (
	"time"

	"github.com/google/uuid"
)

// ID is a UUID that serializes in URN form ("urn:uuid:...").
type ID uuid.UUID

// NilID is the zero ID.
var NilID = ID(uuid.Nil)

// NewID returns a random ID.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID accepts both the plain and the URN form.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilID, err
	}
	return ID(u), nil
}

// String returns the plain form, which is also the storage form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// URN returns the "urn:uuid:" form.
func (id ID) URN() string {
	return uuid.UUID(id).URN()
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.URN()), nil
}

func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Session is a single lesson: a topic and the material the student learns from.
type Session struct {
	ID           ID            `json:"id"`
	Topic        string        `json:"topic"`
	MaterialText string        `json:"material_text"`
	Status       SessionStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	UserID       string        `json:"user_id"`
}

// Message is an immutable utterance within a session.
type Message struct {
	ID        ID        `json:"id"`
	SessionID ID        `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey deduplicates resubmitted user turns. It is not exposed.
	IdempotencyKey string `json:"-"`
}

// TurnResult is the outcome of one completed turn.
type TurnResult struct {
	UserMessage      *Message
	AssistantMessage *Message
}

// Messages returns the pair in the order they were persisted.
func (r *TurnResult) Messages() []*Message {
	return []*Message{r.UserMessage, r.AssistantMessage}
}
