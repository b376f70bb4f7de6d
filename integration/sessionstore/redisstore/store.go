// Package redisstore keeps session records in Redis and provides a
// distributed session.Locker.
//
// Layout, under a configurable prefix:
//
//	session:<id>               JSON document
//	active:<email>\x00<nick>   id of the identity's Active session
//	sessions                   sorted set of ids scored by creation time
//
// Inserts run as a Lua script and updates as WATCH/MULTI transactions, so the
// active index never points at two records.
package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessiontrack/core/session"
)

// insertScript writes a record unless its id exists or, for Active records,
// the identity already has an Active session.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 0 end
if ARGV[4] == '1' then
  if redis.call('EXISTS', KEYS[2]) == 1 then return 0 end
  redis.call('SET', KEYS[2], ARGV[3])
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('ZADD', KEYS[3], ARGV[2], ARGV[3])
return 1
`)

// deleteScript removes a record and clears the active index only if it still points at the record.
var deleteScript = redis.NewScript(`
local n = redis.call('DEL', KEYS[1])
if redis.call('GET', KEYS[2]) == ARGV[1] then redis.call('DEL', KEYS[2]) end
redis.call('ZREM', KEYS[3], ARGV[1])
return n
`)

const maxTxAttempts = 8

var errRetry = errors.New("record changed during update")

// getter is satisfied by clients and by transactions inside WATCH.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Store implements session.Store over a Redis client.
type Store struct {
	client    redis.UniversalClient
	keys      keys
	batchSize int
}

var _ session.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces the store keys.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.keys.prefix = prefix
		}
	}
}

// WithBatchSize sets how many records are fetched per MGET while listing.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New creates a store over client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, keys: keys{prefix: DefaultPrefix}, batchSize: 1000}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) FindOne(ctx context.Context, filter session.Filter) (session.Record, error) {
	if id, ok, err := s.resolve(ctx, filter); ok || err != nil {
		if err != nil {
			return session.Record{}, err
		}
		rec, err := s.get(ctx, s.client, id)
		if err != nil {
			return session.Record{}, err
		}
		if !filter.Matches(rec) {
			return session.Record{}, session.ErrNotFound
		}
		return rec, nil
	}

	recs, err := s.Find(ctx, filter)
	if err != nil {
		return session.Record{}, err
	}
	if len(recs) == 0 {
		return session.Record{}, session.ErrNotFound
	}
	return recs[0], nil
}

func (s *Store) InsertOne(ctx context.Context, rec session.Record) error {
	raw, err := encode(rec)
	if err != nil {
		return err
	}
	active := "0"
	if rec.IsActive() {
		active = "1"
	}

	ok, err := insertScript.Run(ctx, s.client,
		[]string{s.keys.record(rec.SessionID), s.keys.active(rec.Identity), s.keys.order()},
		raw, rec.CreatedAt.UnixMilli(), rec.SessionID, active,
	).Int()
	if err != nil {
		return storageError(err)
	}
	if ok == 0 {
		return session.ErrDuplicate
	}
	return nil
}

func (s *Store) UpdateOne(ctx context.Context, filter session.Filter, patch session.Patch) (int64, error) {
	for range maxTxAttempts {
		cur, err := s.FindOne(ctx, filter)
		if errors.Is(err, session.ErrNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		if patch.IsEmpty() {
			return 1, nil
		}

		next := patch.Apply(cur)
		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			return s.apply(ctx, tx, filter, cur, next)
		}, s.keys.record(cur.SessionID), s.keys.active(cur.Identity), s.keys.active(next.Identity))

		switch {
		case err == nil:
			return 1, nil
		case errors.Is(err, redis.TxFailedErr), errors.Is(err, errRetry):
			continue
		case errors.Is(err, session.ErrDuplicate):
			return 0, err
		default:
			return 0, storageError(err)
		}
	}
	return 0, errors.Join(session.ErrStorageUnavailable, errRetry)
}

// apply re-reads the watched record and writes next if it is still the same.
func (s *Store) apply(ctx context.Context, tx *redis.Tx, filter session.Filter, cur, next session.Record) error {
	fresh, err := s.get(ctx, tx, cur.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return errRetry
		}
		return err
	}
	if fresh != cur || !filter.Matches(fresh) {
		return errRetry
	}

	oldKey, newKey := s.keys.active(cur.Identity), s.keys.active(next.Identity)
	if next.IsActive() && (!cur.IsActive() || oldKey != newKey) {
		holder, err := tx.Get(ctx, newKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if holder != "" && holder != cur.SessionID {
			return session.ErrDuplicate
		}
	}

	raw, err := encode(next)
	if err != nil {
		return err
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if cur.IsActive() && (!next.IsActive() || oldKey != newKey) {
			pipe.Del(ctx, oldKey)
		}
		if next.IsActive() {
			pipe.Set(ctx, newKey, next.SessionID, 0)
		}
		pipe.Set(ctx, s.keys.record(next.SessionID), raw, 0)
		return nil
	})
	return err
}

func (s *Store) Find(ctx context.Context, filter session.Filter) ([]session.Record, error) {
	if id, ok, err := s.resolve(ctx, filter); ok || err != nil {
		if err != nil {
			return nil, err
		}
		rec, err := s.get(ctx, s.client, id)
		if errors.Is(err, session.ErrNotFound) || (err == nil && !filter.Matches(rec)) {
			return []session.Record{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []session.Record{rec}, nil
	}

	ids, err := s.client.ZRange(ctx, s.keys.order(), 0, -1).Result()
	if err != nil {
		return nil, storageError(err)
	}

	out := make([]session.Record, 0, len(ids))
	for start := 0; start < len(ids); start += s.batchSize {
		batch := ids[start:min(start+s.batchSize, len(ids))]
		keys := make([]string, len(batch))
		for i, id := range batch {
			keys[i] = s.keys.record(id)
		}

		vals, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, storageError(err)
		}
		for _, v := range vals {
			raw, ok := v.(string)
			if !ok {
				continue // deleted between ZRANGE and MGET
			}
			rec, err := decode([]byte(raw))
			if err != nil {
				return nil, err
			}
			if filter.Matches(rec) {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

func (s *Store) DeleteMany(ctx context.Context, filter session.Filter) (int64, error) {
	recs, err := s.Find(ctx, filter)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, rec := range recs {
		n, err := deleteScript.Run(ctx, s.client,
			[]string{s.keys.record(rec.SessionID), s.keys.active(rec.Identity), s.keys.order()},
			rec.SessionID,
		).Int64()
		if err != nil {
			return deleted, storageError(err)
		}
		deleted += n
	}
	return deleted, nil
}

// resolve finds the single candidate id for filters the key layout can answer directly.
func (s *Store) resolve(ctx context.Context, filter session.Filter) (string, bool, error) {
	if filter.SessionID != "" {
		return filter.SessionID, true, nil
	}
	if filter.Identity == nil || filter.Status != session.StatusActive {
		return "", false, nil
	}

	id, err := s.client.Get(ctx, s.keys.active(*filter.Identity)).Result()
	if errors.Is(err, redis.Nil) {
		// an empty id never matches a stored record
		return "", true, nil
	}
	if err != nil {
		return "", false, storageError(err)
	}
	return id, true, nil
}

func (s *Store) get(ctx context.Context, c getter, id string) (session.Record, error) {
	if id == "" {
		return session.Record{}, session.ErrNotFound
	}
	raw, err := c.Get(ctx, s.keys.record(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Record{}, session.ErrNotFound
	}
	if err != nil {
		return session.Record{}, storageError(err)
	}
	return decode(raw)
}

func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.Join(session.ErrStorageUnavailable, err)
	}
}
