package session

import (
	"context"
	"time"
)

// Store is the persistence contract used by the Registry.
// Implementations must be safe for concurrent use and must reject, atomically,
// any insert or update that would leave two Active records for one identity.
type Store interface {
	// FindOne returns the first record matching the filter or ErrNotFound.
	FindOne(ctx context.Context, filter Filter) (Record, error)
	// InsertOne stores a new record. Returns ErrDuplicate on a session id clash
	// or when the record is Active and another Active record holds its identity.
	InsertOne(ctx context.Context, rec Record) error
	// UpdateOne applies the patch to the first record matching the filter
	// and returns the number of matched records (0 or 1).
	UpdateOne(ctx context.Context, filter Filter, patch Patch) (int64, error)
	// Find returns every record matching the filter.
	Find(ctx context.Context, filter Filter) ([]Record, error)
	// DeleteMany removes every record matching the filter and returns the count.
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
}

// Transactor is implemented by stores that can group several calls into one
// transaction. The Registry runs each read-then-write step through InTx when the
// store supports it. fn must be called with the context InTx passes it;
// a non-nil error from fn rolls the transaction back and is returned unchanged.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Filter selects records. Zero-valued fields match anything,
// so the zero Filter matches every record.
type Filter struct {
	SessionID string
	Identity  *Identity
	Status    Status
}

// BySessionID returns a filter matching a single session id.
func BySessionID(id string) Filter {
	return Filter{SessionID: id}
}

// ActiveFor returns a filter matching the Active record of an identity.
func ActiveFor(identity Identity) Filter {
	return Filter{Identity: &identity, Status: StatusActive}
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return f.SessionID == "" && f.Identity == nil && f.Status == ""
}

// Matches reports whether rec satisfies the filter.
// Backends that cannot push filters down to the database use it to filter in process.
func (f Filter) Matches(rec Record) bool {
	if f.SessionID != "" && rec.SessionID != f.SessionID {
		return false
	}
	if f.Identity != nil && rec.Identity != *f.Identity {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	return true
}

// Patch lists the fields an update may change. Nil fields are left untouched.
type Patch struct {
	Email           *string
	Nickname        *string
	LastAccessed    *time.Time
	InactiveSeconds *int64
	Status          *Status
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Email == nil && p.Nickname == nil && p.LastAccessed == nil &&
		p.InactiveSeconds == nil && p.Status == nil
}

// Apply returns a copy of rec with the patch applied.
func (p Patch) Apply(rec Record) Record {
	if p.Email != nil {
		rec.Identity.Email = *p.Email
	}
	if p.Nickname != nil {
		rec.Identity.Nickname = *p.Nickname
	}
	if p.LastAccessed != nil {
		rec.LastAccessed = *p.LastAccessed
	}
	if p.InactiveSeconds != nil {
		rec.InactiveSeconds = *p.InactiveSeconds
	}
	if p.Status != nil {
		rec.Status = *p.Status
	}
	return rec
}

func ptr[T any](v T) *T {
	return &v
}
