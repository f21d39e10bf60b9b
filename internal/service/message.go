package service

import (
	"context"

	"github.com/xiaot623/aazan/internal/adapter/llm"
	"github.com/xiaot623/aazan/internal/domain"
)

// GetMessages returns a session's messages in ascending timestamp order.
func (s *Service) GetMessages(ctx context.Context, sessionID domain.ID) ([]domain.Message, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	messages, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreRead, err, "failed to retrieve messages")
	}
	return messages, nil
}

func (s *Service) appendMessage(ctx context.Context, sessionID domain.ID, role domain.Role, content, idempotencyKey string) (*domain.Message, error) {
	msg := &domain.Message{
		ID:             domain.NewID(),
		SessionID:      sessionID,
		Role:           role,
		Content:        content,
		Timestamp:      s.now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, domain.Wrap(domain.ErrStoreWrite, err, "failed to save %s message", role)
	}
	return msg, nil
}

// loadHistory reads the whole conversation and translates it for the gateway.
func (s *Service) loadHistory(ctx context.Context, sessionID domain.ID) ([]llm.Content, error) {
	messages, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreRead, err, "failed to load conversation history")
	}
	return toContents(messages), nil
}

// recordUserMessage stores the turn's user message. When the idempotency key
// was seen before, the stored message is reused and, if the assistant already
// answered it, that reply is returned too.
func (s *Service) recordUserMessage(ctx context.Context, sessionID domain.ID, req domain.CreateMessageRequest) (userMsg, reply *domain.Message, err error) {
	if req.IdempotencyKey != "" {
		existing, err := s.store.GetMessageByIdempotencyKey(ctx, sessionID, req.IdempotencyKey)
		if err != nil {
			return nil, nil, domain.Wrap(domain.ErrStoreRead, err, "failed to look up idempotency key")
		}
		if existing != nil {
			if existing.Content != req.Content {
				return nil, nil, domain.Wrap(domain.ErrValidation, nil, "idempotency key %q was used with different content", req.IdempotencyKey)
			}
			reply, err := s.replyTo(ctx, existing)
			if err != nil {
				return nil, nil, err
			}
			return existing, reply, nil
		}
	}

	userMsg, err = s.appendMessage(ctx, sessionID, req.Role, req.Content, req.IdempotencyKey)
	if err != nil {
		return nil, nil, err
	}
	return userMsg, nil, nil
}

// replyTo returns the assistant message stored directly after msg. It
// returns nil when msg is still the last message, so the turn can continue.
// A message that was neither answered nor is last can no longer get a reply
// without breaking the user/assistant alternation, so retrying it fails.
func (s *Service) replyTo(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	messages, err := s.store.GetMessages(ctx, msg.SessionID)
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreRead, err, "failed to load conversation history")
	}
	for i := range messages {
		if messages[i].ID != msg.ID {
			continue
		}
		switch {
		case i+1 == len(messages):
			return nil, nil
		case messages[i+1].Role == domain.RoleAssistant:
			return &messages[i+1], nil
		default:
			return nil, domain.Wrap(domain.ErrValidation, nil,
				"idempotency key %q belongs to an unanswered turn that later messages superseded", msg.IdempotencyKey)
		}
	}
	return nil, nil
}
