package pgstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontrack/core/session"
	"github.com/dmitrymomot/sessiontrack/integration/database/pg"
)

func TestWhere(t *testing.T) {
	t.Parallel()

	clause, args := where(session.Filter{}, 0)
	assert.Empty(t, clause)
	assert.Empty(t, args)

	clause, args = where(session.ActiveFor(session.Identity{Email: "a@x.com", Nickname: "a"}), 2)
	assert.Equal(t, " WHERE email = $3 AND nickname = $4 AND status = $5", clause)
	assert.Equal(t, []any{"a@x.com", "a", "Active"}, args)
}

func TestUpdateQuery(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	status := session.StatusInactive
	q, args := updateQuery(
		session.Filter{SessionID: "s1", Status: session.StatusActive},
		session.Patch{LastAccessed: &now, Status: &status},
	)

	assert.Equal(t,
		"UPDATE sessions SET last_accessed = $1, status = $2 WHERE session_id = "+
			"(SELECT session_id FROM sessions WHERE session_id = $3 AND status = $4 ORDER BY created_at, session_id LIMIT 1 FOR UPDATE)",
		q)
	assert.Equal(t, []any{now, "Inactive", "s1", "Active"}, args)
}

func TestSelectAndDeleteQuery(t *testing.T) {
	t.Parallel()

	q, args := selectQuery(session.BySessionID("s1"), true)
	assert.Equal(t, "SELECT "+columns+" FROM sessions WHERE session_id = $1 ORDER BY created_at, session_id LIMIT 1", q)
	assert.Equal(t, []any{"s1"}, args)

	q, args = deleteQuery(session.Filter{})
	assert.Equal(t, "DELETE FROM sessions", q)
	assert.Empty(t, args)
}

func TestStorageError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, storageError(nil))
	assert.ErrorIs(t, storageError(&pgconn.PgError{Code: "23505"}), session.ErrDuplicate)
	assert.ErrorIs(t, storageError(errors.New("conn refused")), session.ErrStorageUnavailable)
	assert.NotErrorIs(t, storageError(context.DeadlineExceeded), session.ErrStorageUnavailable)
}

func TestEmbeddedMigration(t *testing.T) {
	t.Parallel()

	raw, err := migrations.ReadFile("migrations/00001_create_sessions.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "-- +goose Up")
	assert.Contains(t, string(raw), "WHERE status = 'Active'")
}

func TestStoreLive(t *testing.T) {
	url := os.Getenv("PG_TEST_URL")
	if url == "" {
		t.Skip("PG_TEST_URL not set")
	}

	ctx := context.Background()
	pool, err := pg.Connect(ctx, pg.Config{ConnectionString: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool, nil))
	s := New(pool)
	_, err = s.DeleteMany(ctx, session.Filter{})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := session.Record{
		SessionID:         "pg-s1",
		Identity:          session.Identity{Email: "a@x.com", Nickname: "a"},
		DeviceFingerprint: "AA:BB",
		CreatedAt:         now,
		LastAccessed:      now,
		Status:            session.StatusActive,
	}
	require.NoError(t, s.InsertOne(ctx, rec))

	dup := rec
	dup.SessionID = "pg-s2"
	assert.ErrorIs(t, s.InsertOne(ctx, dup), session.ErrDuplicate)

	got, err := s.FindOne(ctx, session.BySessionID("pg-s1"))
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	status := session.StatusLoggedOut
	n, err := s.UpdateOne(ctx, session.BySessionID("pg-s1"), session.Patch{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, s.InsertOne(ctx, dup), "identity is free once the first session ended")

	active, err := s.Find(ctx, session.Filter{Status: session.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "pg-s2", active[0].SessionID)

	deleted, err := s.DeleteMany(ctx, session.Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
}

func TestStoreLiveTx(t *testing.T) {
	url := os.Getenv("PG_TEST_URL")
	if url == "" {
		t.Skip("PG_TEST_URL not set")
	}

	ctx := context.Background()
	pool, err := pg.Connect(ctx, pg.Config{ConnectionString: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool, nil))
	s := New(pool)
	_, err = s.DeleteMany(ctx, session.Filter{})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := session.Record{
		SessionID:    "pg-tx1",
		Identity:     session.Identity{Email: "tx@x.com", Nickname: "tx"},
		CreatedAt:    now,
		LastAccessed: now,
		Status:       session.StatusActive,
	}

	boom := errors.New("abort")
	err = s.InTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.InsertOne(ctx, rec))
		_, err := s.FindOne(ctx, session.BySessionID(rec.SessionID))
		require.NoError(t, err, "the transaction sees its own insert")
		return boom
	})
	require.ErrorIs(t, err, boom)
	_, err = s.FindOne(ctx, session.BySessionID(rec.SessionID))
	require.ErrorIs(t, err, session.ErrNotFound, "rolled back")

	err = s.InTx(ctx, func(ctx context.Context) error {
		dup := rec
		dup.SessionID = "pg-tx2"
		if err := s.InsertOne(ctx, rec); err != nil {
			return err
		}
		return s.InsertOne(ctx, dup)
	})
	require.ErrorIs(t, err, session.ErrDuplicate)
	_, err = s.FindOne(ctx, session.BySessionID(rec.SessionID))
	require.ErrorIs(t, err, session.ErrNotFound, "a clash rolls back the whole unit")

	require.NoError(t, s.InTx(ctx, func(ctx context.Context) error {
		return s.InsertOne(ctx, rec)
	}))
	got, err := s.FindOne(ctx, session.BySessionID(rec.SessionID))
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = s.DeleteMany(ctx, session.Filter{})
	require.NoError(t, err)
}
