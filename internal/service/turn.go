package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/xiaot623/aazan/internal/domain"
)

// SubmitTurn stores the user's message, asks the model for a reply over the
// whole history and stores that reply.
//
// Validation and missing-session failures write nothing. A gateway failure
// leaves the user message stored without a reply; resubmitting with the same
// idempotency key continues that turn instead of duplicating it.
func (s *Service) SubmitTurn(ctx context.Context, sessionID domain.ID, req domain.CreateMessageRequest) (*domain.TurnResult, error) {
	if err := s.validateTurn(ctx, &req); err != nil {
		return nil, err
	}
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "wait for session turn")
	}
	defer unlock()

	userMsg, reply, err := s.recordUserMessage(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}
	if reply != nil {
		log.Info().Str("session_id", sessionID.String()).Str("idempotency_key", req.IdempotencyKey).Msg("replaying completed turn")
		return &domain.TurnResult{UserMessage: userMsg, AssistantMessage: reply}, nil
	}

	history, err := s.loadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	text, err := s.gateway.Generate(ctx, session.MaterialText, history)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("model gateway call failed")
		return nil, domain.Wrap(domain.ErrGateway, err, "failed to generate response")
	}

	assistantMsg, err := s.appendMessage(ctx, sessionID, domain.RoleAssistant, text, "")
	if err != nil {
		return nil, err
	}

	return &domain.TurnResult{UserMessage: userMsg, AssistantMessage: assistantMsg}, nil
}
