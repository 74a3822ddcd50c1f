package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

var errDown = errors.New("connection refused")

func (brokenStore) Get(context.Context, string) (string, error) {
	return "", errDown
}

func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return errDown
}

func (brokenStore) Delete(context.Context, string) error {
	return errDown
}

func TestKey(t *testing.T) {
	assert.Equal(t, "session:form-1:alice", session.Key("form-1", "alice"))
	assert.Equal(t, "session:a%3Ab:p", session.Key("a:b", "p"))
	assert.Equal(t, "session:50%25:did:web:x", session.Key("50%", "did:web:x"))
}

func TestTracker_ParticipantsStayInTheirForm(t *testing.T) {
	ctx := context.Background()
	tracker := session.NewTracker(memory.NewStore())

	require.NoError(t, tracker.Advance(ctx, "a", "alice", "q1"))
	require.NoError(t, tracker.Advance(ctx, "a:b", "p", "q1"))
	require.NoError(t, tracker.Advance(ctx, "a:b", "did:web:x", "q1"))

	ids, err := tracker.Participants(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, ids)

	ids, err = tracker.Participants(ctx, "a:b")
	require.NoError(t, err)
	assert.Equal(t, []string{"did:web:x", "p"}, ids)
}

func TestTracker_Fallbacks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tracker := session.NewTracker(store)

	tests := []struct {
		name  string
		value string
	}{
		{"missing key", ""},
		{"not json", "garbage{"},
		{"missing field", `{"other":"x"}`},
		{"wrong type", `{"currentNodeId":42}`},
		{"empty field", `{"currentNodeId":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			participant := "p-" + tt.name
			if tt.value != "" {
				require.NoError(t, store.Set(ctx, session.Key("f", participant), tt.value, 0))
			}
			got, err := tracker.GetCurrentNode(ctx, "f", participant, "start")
			require.NoError(t, err)
			assert.Equal(t, "start", got)
		})
	}
}

func TestTracker_AdvanceAndRead(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tracker := session.NewTracker(store)

	require.NoError(t, tracker.Advance(ctx, "f", "alice", "q2"))

	raw, err := store.Get(ctx, "session:f:alice")
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentNodeId":"q2"}`, raw)

	got, err := tracker.GetCurrentNode(ctx, "f", "alice", "start")
	require.NoError(t, err)
	assert.Equal(t, "q2", got)

	other, err := tracker.GetCurrentNode(ctx, "f", "bob", "start")
	require.NoError(t, err)
	assert.Equal(t, "start", other, "participants are isolated")

	ids, err := tracker.Participants(ctx, "f")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, ids)

	require.NoError(t, tracker.Reset(ctx, "f", "alice"))
	got, err = tracker.GetCurrentNode(ctx, "f", "alice", "start")
	require.NoError(t, err)
	assert.Equal(t, "start", got)
}

func TestTracker_TTL(t *testing.T) {
	now := time.Now()
	store := memory.NewStore(memory.WithClock(func() time.Time { return now }))
	tracker := session.NewTracker(store, session.WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, tracker.Advance(ctx, "f", "alice", "q2"))
	now = now.Add(2 * time.Hour)

	got, err := tracker.GetCurrentNode(ctx, "f", "alice", "start")
	require.NoError(t, err)
	assert.Equal(t, "start", got)
}

func TestTracker_AnonymousIsNotTracked(t *testing.T) {
	tracker := session.NewTracker(brokenStore{})
	ctx := context.Background()

	got, err := tracker.GetCurrentNode(ctx, "f", "", "start")
	require.NoError(t, err)
	assert.Equal(t, "start", got)
	assert.NoError(t, tracker.Advance(ctx, "f", "", "q1"))
}

func TestTracker_StoreUnavailable(t *testing.T) {
	tracker := session.NewTracker(brokenStore{})
	ctx := context.Background()

	_, err := tracker.GetCurrentNode(ctx, "f", "alice", "start")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, errDown)

	assert.ErrorIs(t, tracker.Advance(ctx, "f", "alice", "q1"), domain.ErrStoreUnavailable)
	assert.ErrorIs(t, tracker.Reset(ctx, "f", "alice"), domain.ErrStoreUnavailable)

	_, err = tracker.Participants(ctx, "f")
	assert.Error(t, err, "store without key listing")
}
