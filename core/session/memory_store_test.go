package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontrack/core/session"
)

func newRecord(id, email, nickname string, status session.Status) session.Record {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return session.Record{
		SessionID:         id,
		Identity:          session.Identity{Email: email, Nickname: nickname},
		DeviceFingerprint: "AA:BB",
		ClientAddress:     "203.0.113.7",
		Server:            session.ServerInfo{Address: "10.0.0.1", Hardware: "02:00:00:00:00:01"},
		CreatedAt:         now,
		LastAccessed:      now,
		Status:            status,
	}
}

func TestMemoryStore_InsertOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects duplicate session id", func(t *testing.T) {
		t.Parallel()
		s := session.NewMemoryStore()
		require.NoError(t, s.InsertOne(ctx, newRecord("s1", "a@x.com", "a", session.StatusInactive)))
		err := s.InsertOne(ctx, newRecord("s1", "b@x.com", "b", session.StatusActive))
		assert.ErrorIs(t, err, session.ErrDuplicate)
	})

	t.Run("rejects second active record for identity", func(t *testing.T) {
		t.Parallel()
		s := session.NewMemoryStore()
		require.NoError(t, s.InsertOne(ctx, newRecord("s1", "a@x.com", "a", session.StatusActive)))
		err := s.InsertOne(ctx, newRecord("s2", "a@x.com", "a", session.StatusActive))
		assert.ErrorIs(t, err, session.ErrDuplicate)
	})

	t.Run("allows active record next to ended ones", func(t *testing.T) {
		t.Parallel()
		s := session.NewMemoryStore()
		require.NoError(t, s.InsertOne(ctx, newRecord("s1", "a@x.com", "a", session.StatusInactive)))
		require.NoError(t, s.InsertOne(ctx, newRecord("s2", "a@x.com", "a", session.StatusLoggedOut)))
		require.NoError(t, s.InsertOne(ctx, newRecord("s3", "a@x.com", "a", session.StatusActive)))

		rec, err := s.FindOne(ctx, session.ActiveFor(session.Identity{Email: "a@x.com", Nickname: "a"}))
		require.NoError(t, err)
		assert.Equal(t, "s3", rec.SessionID)
	})

	t.Run("honors canceled context", func(t *testing.T) {
		t.Parallel()
		s := session.NewMemoryStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, s.InsertOne(cctx, newRecord("s1", "a@x.com", "a", session.StatusActive)), context.Canceled)
	})
}

func TestMemoryStore_UpdateOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns zero when filter does not match", func(t *testing.T) {
		t.Parallel()
		s := session.NewMemoryStore()
		require.NoError(t, s.InsertOne(ctx, newRecord("s1", "a@x.com", "a", session.StatusInactive)))

		st := session.StatusLoggedOut
		n, err := s.UpdateOne(ctx, session.Filter{SessionID: "s1", Status: session.StatusActive}, session.Patch{Status: &st})
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = s.UpdateOne(ctx, session.BySessionID("missing"), session.Patch{Status: &st})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("frees identity when record leaves active", func(t *testing.T) {
		t.Parallel()
		s := session.NewMemoryStore()
		require.NoError(t, s.InsertOne(ctx, newRecord("s1", "a@x.com", "a", session.StatusActive)))

		st := session.StatusInactive
		n, err := s.UpdateOne(ctx, session.BySessionID("s1"), session.Patch{Status: &st})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, s.InsertOne(ctx, newRecord("s2", "a@x.com", "a", session.StatusActive)))
	})

	t.Run("rejects identity change onto another active identity", func(t *testing.T) {
		t.Parallel()
		s := session.NewMemoryStore()
		require.NoError(t, s.InsertOne(ctx, newRecord("s1", "a@x.com", "a", session.StatusActive)))
		require.NoError(t, s.InsertOne(ctx, newRecord("s2", "b@x.com", "b", session.StatusActive)))

		email, nick := "a@x.com", "a"
		_, err := s.UpdateOne(ctx, session.BySessionID("s2"), session.Patch{Email: &email, Nickname: &nick})
		assert.ErrorIs(t, err, session.ErrDuplicate)

		rec, err := s.FindOne(ctx, session.BySessionID("s2"))
		require.NoError(t, err)
		assert.Equal(t, "b@x.com", rec.Identity.Email)
	})

	t.Run("moves active index on identity change", func(t *testing.T) {
		t.Parallel()
		s := session.NewMemoryStore()
		require.NoError(t, s.InsertOne(ctx, newRecord("s1", "a@x.com", "a", session.StatusActive)))

		email := "c@x.com"
		_, err := s.UpdateOne(ctx, session.BySessionID("s1"), session.Patch{Email: &email})
		require.NoError(t, err)

		_, err = s.FindOne(ctx, session.ActiveFor(session.Identity{Email: "a@x.com", Nickname: "a"}))
		assert.ErrorIs(t, err, session.ErrNotFound)
		rec, err := s.FindOne(ctx, session.ActiveFor(session.Identity{Email: "c@x.com", Nickname: "a"}))
		require.NoError(t, err)
		assert.Equal(t, "s1", rec.SessionID)
	})
}

func TestMemoryStore_FindAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := session.NewMemoryStore()
	require.NoError(t, s.InsertOne(ctx, newRecord("s1", "a@x.com", "a", session.StatusActive)))
	require.NoError(t, s.InsertOne(ctx, newRecord("s2", "b@x.com", "b", session.StatusInactive)))
	require.NoError(t, s.InsertOne(ctx, newRecord("s3", "c@x.com", "c", session.StatusActive)))

	all, err := s.Find(ctx, session.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"s1", "s2", "s3"}, []string{all[0].SessionID, all[1].SessionID, all[2].SessionID})

	active, err := s.Find(ctx, session.Filter{Status: session.StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	n, err := s.DeleteMany(ctx, session.Filter{Status: session.StatusInactive})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteMany(ctx, session.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err = s.Find(ctx, session.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, s.InsertOne(ctx, newRecord("s4", "a@x.com", "a", session.StatusActive)))
}
