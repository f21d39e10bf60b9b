// Package repository defines the conversation store interface and its SQLite implementation.
package repository

import (
	"context"

	"github.com/xiaot623/aazan/internal/domain"
)

// Store defines the interface for data persistence.
//
// Getters return (nil, nil) when the row does not exist.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID domain.ID) (*domain.Session, error)
	ListSessions(ctx context.Context) ([]domain.Session, error)
	DeleteSession(ctx context.Context, sessionID domain.ID) (bool, error)

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetMessages(ctx context.Context, sessionID domain.ID) ([]domain.Message, error)
	GetMessageByIdempotencyKey(ctx context.Context, sessionID domain.ID, key string) (*domain.Message, error)

	// Lifecycle
	Close() error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
