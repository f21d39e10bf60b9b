// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/xiaot623/aazan/internal/domain"
	"github.com/xiaot623/aazan/internal/repository"
)

// NewStore returns an in-memory SQLite store closed at test cleanup.
func NewStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// SeedSession stores a session with the given topic and material.
func SeedSession(t *testing.T, store repository.Store, topic, material string) *domain.Session {
	t.Helper()
	now := time.Now().UTC()
	session := &domain.Session{
		ID:           domain.NewID(),
		Topic:        topic,
		MaterialText: material,
		Status:       domain.SessionStatusCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
		UserID:       "temp_user",
	}
	if err := store.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}

// SeedMessage appends a message to a session.
func SeedMessage(t *testing.T, store repository.Store, sessionID domain.ID, role domain.Role, content string) *domain.Message {
	t.Helper()
	msg := &domain.Message{
		ID:        domain.NewID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := store.CreateMessage(context.Background(), msg); err != nil {
		t.Fatalf("failed to seed message: %v", err)
	}
	return msg
}
