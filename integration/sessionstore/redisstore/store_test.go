package redisstore

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontrack/core/session"
	redisdb "github.com/dmitrymomot/sessiontrack/integration/database/redis"
)

func sample(id string, status session.Status) session.Record {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return session.Record{
		SessionID:         id,
		Identity:          session.Identity{Email: "a@x.com", Nickname: "a"},
		DeviceFingerprint: "AA:BB",
		ClientAddress:     "192.0.2.1",
		Server:            session.ServerInfo{Address: "10.0.0.1", Hardware: "unknown"},
		CreatedAt:         now,
		LastAccessed:      now.Add(time.Second),
		Status:            status,
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	k := keys{prefix: "app:"}
	assert.Equal(t, "app:session:s1", k.record("s1"))
	assert.Equal(t, "app:active:a@x.com\x00a", k.active(session.Identity{Email: "a@x.com", Nickname: "a"}))
	assert.Equal(t, "app:sessions", k.order())
	assert.Equal(t, "app:lock:identity:x", k.lock("identity:x"))
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	rec := sample("s1", session.StatusActive)
	raw, err := encode(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"macAddress":"AA:BB"`)
	assert.Contains(t, string(raw), `"status":"Active"`)

	got, err := decode(raw)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = decode([]byte("{"))
	assert.Error(t, err)
}

func TestStorageError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, storageError(nil))
	assert.ErrorIs(t, storageError(errors.New("dial tcp: refused")), session.ErrStorageUnavailable)
	assert.NotErrorIs(t, storageError(context.Canceled), session.ErrStorageUnavailable)
}

func liveClient(t *testing.T) (*Store, *Locker) {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	client, err := redisdb.Connect(context.Background(), redisdb.Config{ConnectionURL: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "sessiontrack_test:" + uuid.NewString()[:8] + ":"
	return New(client, WithPrefix(prefix), WithBatchSize(2)), NewLocker(client, WithLockPrefix(prefix), WithLockRetry(5*time.Millisecond))
}

func TestStoreLive(t *testing.T) {
	s, _ := liveClient(t)
	ctx := context.Background()
	t.Cleanup(func() { _, _ = s.DeleteMany(ctx, session.Filter{}) })

	identity := session.Identity{Email: "a@x.com", Nickname: "a"}

	require.NoError(t, s.InsertOne(ctx, sample("s1", session.StatusActive)))
	assert.ErrorIs(t, s.InsertOne(ctx, sample("s1", session.StatusInactive)), session.ErrDuplicate)
	assert.ErrorIs(t, s.InsertOne(ctx, sample("s2", session.StatusActive)), session.ErrDuplicate)
	require.NoError(t, s.InsertOne(ctx, sample("s3", session.StatusInactive)))

	got, err := s.FindOne(ctx, session.ActiveFor(identity))
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)

	active := session.StatusActive
	_, err = s.UpdateOne(ctx, session.BySessionID("s3"), session.Patch{Status: &active})
	assert.ErrorIs(t, err, session.ErrDuplicate)

	loggedOut := session.StatusLoggedOut
	n, err := s.UpdateOne(ctx, session.Filter{SessionID: "s1", Status: session.StatusActive}, session.Patch{Status: &loggedOut})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.FindOne(ctx, session.ActiveFor(identity))
	assert.ErrorIs(t, err, session.ErrNotFound, "logout clears the active index")

	n, err = s.UpdateOne(ctx, session.Filter{SessionID: "s1", Status: session.StatusActive}, session.Patch{Status: &loggedOut})
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.InsertOne(ctx, sample("s2", session.StatusActive)))

	all, err := s.Find(ctx, session.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s1", all[0].SessionID)

	deleted, err := s.DeleteMany(ctx, session.Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	_, err = s.FindOne(ctx, session.ActiveFor(identity))
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLockerLive(t *testing.T) {
	_, l := liveClient(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "identity:a")
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "identity:a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)
	for range 5 {
		wg.Go(func() {
			unlock, err := l.Lock(ctx, "identity:b")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			holders++
			maxSeen = max(maxSeen, holders)
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			holders--
			mu.Unlock()
			unlock()
		})
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
