package service

import (
	"context"
	"strings"

	"github.com/xiaot623/aazan/internal/domain"
	"github.com/xiaot623/aazan/internal/policy"
)

func (s *Service) checkPolicy(ctx context.Context, input map[string]any) error {
	reasons, err := s.policyEngine.Evaluate(ctx, input)
	if err != nil {
		return err
	}
	if len(reasons) > 0 {
		return domain.Wrap(domain.ErrValidation, nil, "%s", strings.Join(reasons, "; "))
	}
	return nil
}

// validateTurn defaults an empty role to user and runs the message policy.
func (s *Service) validateTurn(ctx context.Context, req *domain.CreateMessageRequest) error {
	if req.Role == "" {
		req.Role = domain.RoleUser
	}
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	return s.checkPolicy(ctx, policy.MessageInput(string(req.Role), req.Content, s.maxContentChars))
}

func (s *Service) validateSession(ctx context.Context, req domain.CreateSessionRequest) error {
	return s.checkPolicy(ctx, policy.SessionInput(req.Topic, req.MaterialText))
}
