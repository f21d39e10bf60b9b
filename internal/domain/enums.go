// Package domain defines the core domain models for the tutoring backend.
package domain

import (
	"fmt"
	"strings"
)

// Role identifies who authored a message. It is a closed set of two values.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Provider roles used on the model wire.
const (
	ProviderRoleUser  = "user"
	ProviderRoleModel = "model"
)

// ParseRole converts a stored or submitted role into a Role.
// The capitalized spellings written by older schema revisions are accepted.
func ParseRole(s string) (Role, error) {
	switch strings.TrimSpace(s) {
	case "user", "User":
		return RoleUser, nil
	case "assistant", "Assistant":
		return RoleAssistant, nil
	}
	return "", fmt.Errorf("invalid message role %q", s)
}

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ProviderRole maps r onto the model provider's vocabulary.
func (r Role) ProviderRole() string {
	if r == RoleAssistant {
		return ProviderRoleModel
	}
	return ProviderRoleUser
}

// SessionStatus is an informational lifecycle tag.
type SessionStatus string

const (
	SessionStatusCreated SessionStatus = "created"
)

// Stream event names.
const (
	StreamEventError = "error"
	StreamEventDone  = "done"
)
