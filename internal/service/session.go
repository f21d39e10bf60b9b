package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/xiaot623/aazan/internal/domain"
)

// DefaultUserID owns every session until authentication exists.
const DefaultUserID = "temp_user"

// CreateSession validates and stores a new session.
func (s *Service) CreateSession(ctx context.Context, req domain.CreateSessionRequest) (*domain.Session, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if err := s.validateSession(ctx, req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &domain.Session{
		ID:           domain.NewID(),
		Topic:        req.Topic,
		MaterialText: req.MaterialText,
		Status:       domain.SessionStatusCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
		UserID:       DefaultUserID,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, domain.Wrap(domain.ErrStoreWrite, err, "failed to create session")
	}

	log.Info().Str("session_id", session.ID.String()).Str("topic", session.Topic).Msg("session created")
	return session, nil
}

// GetSession returns a session or ErrNotFound.
func (s *Service) GetSession(ctx context.Context, sessionID domain.ID) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreRead, err, "failed to retrieve session")
	}
	if session == nil {
		return nil, domain.Wrap(domain.ErrNotFound, nil, "session %s not found", sessionID)
	}
	return session, nil
}

// ListSessions returns every session, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreRead, err, "failed to retrieve sessions")
	}
	return sessions, nil
}

// DeleteSession removes a session and its messages. It waits for an
// in-flight turn on the session to finish first.
func (s *Service) DeleteSession(ctx context.Context, sessionID domain.ID) error {
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return errors.Wrap(err, "wait for session")
	}
	defer unlock()

	deleted, err := s.store.DeleteSession(ctx, sessionID)
	if err != nil {
		return domain.Wrap(domain.ErrStoreWrite, err, "failed to delete session")
	}
	if !deleted {
		return domain.Wrap(domain.ErrNotFound, nil, "session %s not found", sessionID)
	}

	log.Info().Str("session_id", sessionID.String()).Msg("session deleted")
	return nil
}
