package service

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xiaot623/aazan/internal/domain"
)

// Client-facing texts of in-band stream errors.
const (
	MsgGenerateFailed = "failed to generate response"
	MsgLoadFailed     = "failed to load conversation"
	MsgSaveFailed     = "failed to save response"
)

// OpenStream streams a reply to the session's stored history.
//
// A missing session yields a single error event. Every fragment becomes a
// data event and every gateway failure an error event. When the stream ends
// cleanly with text, the reply is stored and a done event carrying the
// stored message closes the sequence. Nothing is stored when the client goes
// away or the gateway failed.
func (s *Service) OpenStream(ctx context.Context, sessionID domain.ID) iter.Seq[domain.StreamEvent] {
	return func(yield func(domain.StreamEvent) bool) {
		session, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to load session for stream")
			yield(domain.ErrorEvent(MsgLoadFailed))
			return
		}
		if session == nil {
			yield(domain.ErrorEvent(fmt.Sprintf("session %s not found", sessionID)))
			return
		}

		unlock, err := s.locks.Lock(ctx, sessionID)
		if err != nil {
			return
		}
		defer unlock()

		s.relay(ctx, session, yield)
	}
}

// SubmitTurnStream stores the user's message and streams the reply like
// OpenStream. Validation and missing-session failures are returned before
// any event is produced.
func (s *Service) SubmitTurnStream(ctx context.Context, sessionID domain.ID, req domain.CreateMessageRequest) (iter.Seq[domain.StreamEvent], error) {
	if err := s.validateTurn(ctx, &req); err != nil {
		return nil, err
	}
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return func(yield func(domain.StreamEvent) bool) {
		unlock, err := s.locks.Lock(ctx, sessionID)
		if err != nil {
			return
		}
		defer unlock()

		_, reply, err := s.recordUserMessage(ctx, sessionID, req)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to record user message")
			yield(domain.ErrorEvent(domain.ClientMessage(err)))
			return
		}
		if reply != nil {
			if yield(domain.DataEvent(reply.Content)) {
				s.yieldDone(reply, yield)
			}
			return
		}

		s.relay(ctx, session, yield)
	}, nil
}

func (s *Service) relay(ctx context.Context, session *domain.Session, yield func(domain.StreamEvent) bool) {
	logger := log.With().Str("session_id", session.ID.String()).Logger()

	history, err := s.loadHistory(ctx, session.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load history for stream")
		yield(domain.ErrorEvent(MsgLoadFailed))
		return
	}

	var (
		reply  strings.Builder
		failed bool
	)
	for fragment, err := range s.gateway.GenerateStream(ctx, session.MaterialText, history) {
		if err != nil {
			failed = true
			logger.Error().Err(err).Msg("model stream failed")
			if !yield(domain.ErrorEvent(MsgGenerateFailed)) {
				return
			}
			continue
		}
		reply.WriteString(fragment)
		if !yield(domain.DataEvent(fragment)) {
			return
		}
	}

	if failed || ctx.Err() != nil {
		return
	}
	if reply.Len() == 0 {
		logger.Warn().Msg("model stream ended without text, nothing stored")
		return
	}

	msg, err := s.appendMessage(ctx, session.ID, domain.RoleAssistant, reply.String(), "")
	if err != nil {
		logger.Error().Err(err).Msg("failed to store streamed reply")
		yield(domain.ErrorEvent(MsgSaveFailed))
		return
	}
	s.yieldDone(msg, yield)
}

func (s *Service) yieldDone(msg *domain.Message, yield func(domain.StreamEvent) bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode stored reply")
		yield(domain.ErrorEvent(MsgSaveFailed))
		return
	}
	yield(domain.StreamEvent{Event: domain.StreamEventDone, Data: string(data)})
}
