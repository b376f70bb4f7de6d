package session

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store for tests and local development.
// Records are kept in insertion order; the Active-identity index is checked
// under the same lock as the write, so inserts and updates are atomic.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string
	active  map[string]string // identity key -> session id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		active:  make(map[string]string),
	}
}

// FindOne returns the first matching record in insertion order.
func (s *MemoryStore) FindOne(ctx context.Context, filter Filter) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.lookup(filter)
	if !ok {
		return Record{}, ErrNotFound
	}
	return s.records[id], nil
}

// InsertOne stores rec, enforcing unique session ids and one Active record per identity.
func (s *MemoryStore) InsertOne(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.SessionID]; exists {
		return ErrDuplicate
	}
	if rec.IsActive() {
		if _, taken := s.active[rec.Identity.Key()]; taken {
			return ErrDuplicate
		}
		s.active[rec.Identity.Key()] = rec.SessionID
	}

	s.records[rec.SessionID] = rec
	s.order = append(s.order, rec.SessionID)
	return nil
}

// UpdateOne patches the first matching record.
func (s *MemoryStore) UpdateOne(ctx context.Context, filter Filter, patch Patch) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.lookup(filter)
	if !ok {
		return 0, nil
	}

	before := s.records[id]
	after := patch.Apply(before)

	if after.IsActive() {
		if owner, taken := s.active[after.Identity.Key()]; taken && owner != id {
			return 0, ErrDuplicate
		}
	}
	if before.IsActive() {
		delete(s.active, before.Identity.Key())
	}
	if after.IsActive() {
		s.active[after.Identity.Key()] = id
	}

	s.records[id] = after
	return 1, nil
}

// Find returns every matching record in insertion order.
func (s *MemoryStore) Find(ctx context.Context, filter Filter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		if rec := s.records[id]; filter.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// DeleteMany removes every matching record.
func (s *MemoryStore) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	s.order = slices.DeleteFunc(s.order, func(id string) bool {
		rec := s.records[id]
		if !filter.Matches(rec) {
			return false
		}
		if rec.IsActive() {
			delete(s.active, rec.Identity.Key())
		}
		delete(s.records, id)
		deleted++
		return true
	})
	return deleted, nil
}

// lookup resolves a filter to a session id. Caller must hold s.mu.
func (s *MemoryStore) lookup(filter Filter) (string, bool) {
	if filter.SessionID != "" {
		rec, ok := s.records[filter.SessionID]
		return filter.SessionID, ok && filter.Matches(rec)
	}
	if filter.Identity != nil && filter.Status == StatusActive {
		id, ok := s.active[filter.Identity.Key()]
		return id, ok
	}
	for _, id := range s.order {
		if filter.Matches(s.records[id]) {
			return id, true
		}
	}
	return "", false
}
