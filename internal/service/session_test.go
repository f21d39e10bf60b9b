package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/aazan/internal/domain"
	"github.com/xiaot623/aazan/internal/testutil"
)

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	fixed := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	svc := newTestService(t, store, &fakeGateway{})
	svc.now = func() time.Time { return fixed }

	session, err := svc.CreateSession(ctx, domain.CreateSessionRequest{Topic: "  Gravity ", MaterialText: "Things fall."})
	require.NoError(t, err)
	assert.Equal(t, "Gravity", session.Topic)
	assert.Equal(t, domain.SessionStatusCreated, session.Status)
	assert.Equal(t, DefaultUserID, session.UserID)
	assert.Equal(t, fixed, session.CreatedAt)
	assert.False(t, session.UpdatedAt.Before(session.CreatedAt))

	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestCreateSessionValidation(t *testing.T) {
	store := testutil.NewStore(t)
	svc := newTestService(t, store, &fakeGateway{})

	_, err := svc.CreateSession(context.Background(), domain.CreateSessionRequest{Topic: "", MaterialText: "x"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "topic is required", domain.ClientMessage(err))

	sessions, err := svc.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestGetSessionNotFound(t *testing.T) {
	svc := newTestService(t, testutil.NewStore(t), &fakeGateway{})

	_, err := svc.GetSession(context.Background(), domain.NewID())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetMessages(context.Background(), domain.NewID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := newTestService(t, store, &fakeGateway{})
	session := seedSession(t, store)
	testutil.SeedMessage(t, store, session.ID, domain.RoleUser, "hello")

	require.NoError(t, svc.DeleteSession(ctx, session.ID))

	_, err := svc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	messages, err := store.GetMessages(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	assert.ErrorIs(t, svc.DeleteSession(ctx, session.ID), domain.ErrNotFound)
}

func TestListSessionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := newTestService(t, store, &fakeGateway{})

	base := time.Now().UTC()
	svc.now = func() time.Time { return base }
	older, err := svc.CreateSession(ctx, domain.CreateSessionRequest{Topic: "old", MaterialText: "m"})
	require.NoError(t, err)
	svc.now = func() time.Time { return base.Add(time.Minute) }
	newer, err := svc.CreateSession(ctx, domain.CreateSessionRequest{Topic: "new", MaterialText: "m"})
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, older.ID, sessions[1].ID)
}
