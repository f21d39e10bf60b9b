// Package service implements sessions, turns and streamed replies on top of
// the conversation store and the model gateway.
package service

import (
	"time"

	"github.com/xiaot623/aazan/internal/adapter/llm"
	"github.com/xiaot623/aazan/internal/policy"
	"github.com/xiaot623/aazan/internal/repository"
)

// Options tune a Service. Zero values pick defaults.
type Options struct {
	// MaxContentChars caps a submitted turn; 0 disables the cap.
	MaxContentChars int
	// Now is the clock used for timestamps.
	Now func() time.Time
}

type Service struct {
	store           repository.Store
	gateway         llm.Gateway
	policyEngine    *policy.Engine
	locks           *sessionLocks
	maxContentChars int
	now             func() time.Time
}

func New(store repository.Store, gateway llm.Gateway, policyEngine *policy.Engine, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:           store,
		gateway:         gateway,
		policyEngine:    policyEngine,
		locks:           newSessionLocks(),
		maxContentChars: opts.MaxContentChars,
		now:             now,
	}
}
