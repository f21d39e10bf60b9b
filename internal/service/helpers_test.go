package service

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/aazan/internal/adapter/llm"
	"github.com/xiaot623/aazan/internal/domain"
	"github.com/xiaot623/aazan/internal/policy"
	"github.com/xiaot623/aazan/internal/repository"
	"github.com/xiaot623/aazan/internal/testutil"
)

// fakeGateway records calls and replays scripted output.
type fakeGateway struct {
	mu sync.Mutex

	reply     string
	err       error
	fragments []string
	streamErr error
	delay     time.Duration

	calls        int
	lastMaterial string
	lastHistory  []llm.Content
}

func (g *fakeGateway) record(material string, history []llm.Content) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastMaterial = material
	g.lastHistory = append([]llm.Content(nil), history...)
}

func (g *fakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGateway) History() []llm.Content {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastHistory
}

func (g *fakeGateway) Generate(ctx context.Context, material string, history []llm.Content) (string, error) {
	g.record(material, history)
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGateway) GenerateStream(ctx context.Context, material string, history []llm.Content) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		g.record(material, history)
		for _, f := range g.fragments {
			if !yield(f, nil) {
				return
			}
		}
		if g.streamErr != nil {
			yield("", g.streamErr)
		}
	}
}

// faultyStore fails selected operations and delegates the rest.
type faultyStore struct {
	repository.Store
	failCreateMessage bool
	failGetMessages   bool
	failGetSession    bool
}

var errDisk = errors.New("disk I/O error")

func (s *faultyStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if s.failCreateMessage {
		return errDisk
	}
	return s.Store.CreateMessage(ctx, msg)
}

func (s *faultyStore) GetMessages(ctx context.Context, id domain.ID) ([]domain.Message, error) {
	if s.failGetMessages {
		return nil, errDisk
	}
	return s.Store.GetMessages(ctx, id)
}

func (s *faultyStore) GetSession(ctx context.Context, id domain.ID) (*domain.Session, error) {
	if s.failGetSession {
		return nil, errDisk
	}
	return s.Store.GetSession(ctx, id)
}

func newTestService(t *testing.T, store repository.Store, gw llm.Gateway) *Service {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)
	return New(store, gw, engine, Options{MaxContentChars: 1000})
}

func seedSession(t *testing.T, store repository.Store) *domain.Session {
	t.Helper()
	return testutil.SeedSession(t, store, "Photosynthesis", "Plants turn light into sugar.")
}

func contents(messages []domain.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, string(m.Role)+":"+m.Content)
	}
	return out
}
