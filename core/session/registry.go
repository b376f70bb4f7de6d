package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
)

// Observer receives lifecycle notifications. Calls happen synchronously
// after the corresponding write succeeded, so implementations must be fast.
type Observer interface {
	LoginCompleted(reactivated bool)
	Transitioned(from, to Status)
}

type nopObserver struct{}

func (nopObserver) LoginCompleted(bool)          {}
func (nopObserver) Transitioned(Status, Status) {}

// Registry owns session records and executes their lifecycle transitions.
// It never logs; every outcome is returned to the caller.
type Registry struct {
	store        Store
	locker       Locker
	monitor      Monitor
	observer     Observer
	validate     *validator.Validate
	server       ServerInfo
	now          func() time.Time
	newID        func() string
	storeTimeout time.Duration
	loginRetries int
}

// NewRegistry creates a registry over the given store.
func NewRegistry(store Store, opts ...Option) *Registry {
	cfg := DefaultConfig()
	r := &Registry{
		store:        store,
		locker:       NewKeyedMutex(),
		monitor:      NewMonitor(cfg.MaxInactivity),
		observer:     nopObserver{},
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		server:       ServerInfo{Address: UnknownServerValue, Hardware: UnknownServerValue},
		now:          time.Now,
		newID:        defaultIDGenerator,
		storeTimeout: cfg.StoreTimeout,
		loginRetries: cfg.LoginRetries,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Monitor returns the inactivity monitor used by status checks.
func (r *Registry) Monitor() Monitor {
	return r.monitor
}

// Login returns the Active session of the identity, reactivating it,
// or creates a new one when the identity has none.
func (r *Registry) Login(ctx context.Context, params LoginParams) (LoginResult, error) {
	params = params.normalize()
	if err := r.validateLogin(params); err != nil {
		return LoginResult{}, err
	}

	unlock, err := r.locker.Lock(ctx, identityLockKey(params.Identity))
	if err != nil {
		return LoginResult{}, lockError(err)
	}
	defer unlock()

	for range r.loginRetries {
		var res LoginResult
		err := r.atomically(ctx, func(ctx context.Context) error {
			var err error
			res, err = r.loginOnce(ctx, params)
			return err
		})
		if errors.Is(err, errRetry) {
			// Another writer inserted the Active record first; look it up again.
			continue
		}
		if err != nil {
			return LoginResult{}, err
		}
		r.observer.LoginCompleted(res.Reactivated)
		return res, nil
	}

	return LoginResult{}, ErrLoginConflict
}

func (r *Registry) loginOnce(ctx context.Context, params LoginParams) (LoginResult, error) {
	existing, err := r.findOne(ctx, ActiveFor(params.Identity))
	switch {
	case err == nil:
		res, ok, err := r.reactivate(ctx, existing)
		if err != nil {
			return LoginResult{}, err
		}
		if ok {
			return res, nil
		}
		// The record left Active or changed identity between the lookup and the patch.
	case errors.Is(err, ErrNotFound):
	default:
		return LoginResult{}, err
	}

	rec := r.newRecord(params)
	err = r.insertOne(ctx, rec)
	if errors.Is(err, ErrDuplicate) {
		return LoginResult{}, errRetry
	}
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Record: rec}, nil
}

func (r *Registry) reactivate(ctx context.Context, rec Record) (LoginResult, bool, error) {
	unlock, err := r.locker.Lock(ctx, sessionLockKey(rec.SessionID))
	if err != nil {
		return LoginResult{}, false, lockError(err)
	}
	defer unlock()

	now := r.clock()
	if now.Before(rec.LastAccessed) {
		now = rec.LastAccessed
	}
	patch := Patch{LastAccessed: &now, InactiveSeconds: ptr(int64(0))}

	identity := rec.Identity
	matched, err := r.updateOne(ctx, Filter{SessionID: rec.SessionID, Identity: &identity, Status: StatusActive}, patch)
	if err != nil {
		return LoginResult{}, false, err
	}
	if matched == 0 {
		return LoginResult{}, false, nil
	}

	return LoginResult{Record: patch.Apply(rec), Reactivated: true}, true, nil
}

func (r *Registry) newRecord(params LoginParams) Record {
	now := r.clock()
	return Record{
		SessionID:         r.newID(),
		Identity:          params.Identity,
		DeviceFingerprint: params.DeviceFingerprint,
		ClientAddress:     params.ClientAddress,
		Server:            r.server,
		CreatedAt:         now,
		LastAccessed:      now,
		InactiveSeconds:   0,
		Status:            StatusActive,
	}
}

// Logout moves an Active session to LoggedOut. Logging out a session that is
// no longer Active is a no-op; an unknown id yields ErrNotFound.
func (r *Registry) Logout(ctx context.Context, sessionID string) error {
	return r.finish(ctx, sessionID, StatusLoggedOut, false)
}

// Terminate moves a session to SystemTerminated regardless of its current state.
// An unknown id yields ErrNotFound.
func (r *Registry) Terminate(ctx context.Context, sessionID string) error {
	return r.finish(ctx, sessionID, StatusSystemTerminated, true)
}

func (r *Registry) finish(ctx context.Context, sessionID string, to Status, force bool) error {
	if sessionID == "" {
		return newFieldError("sessionId", "required")
	}

	unlock, err := r.locker.Lock(ctx, sessionLockKey(sessionID))
	if err != nil {
		return lockError(err)
	}
	defer unlock()

	var from Status
	err = r.atomically(ctx, func(ctx context.Context) error {
		rec, err := r.findOne(ctx, BySessionID(sessionID))
		if err != nil {
			return err
		}
		if rec.Status == to || (!force && !rec.IsActive()) {
			return nil
		}

		matched, err := r.updateOne(ctx, BySessionID(sessionID), Patch{Status: &to})
		if err != nil {
			return err
		}
		if matched == 0 {
			return ErrNotFound
		}
		from = rec.Status
		return nil
	})
	if err != nil {
		return err
	}

	if from != "" {
		r.observer.Transitioned(from, to)
	}
	return nil
}

// Update changes the identity fields supplied as non-empty and always refreshes LastAccessed.
// It does not change the status. A changed identity is validated like a login identity.
func (r *Registry) Update(ctx context.Context, sessionID string, params UpdateParams) (Record, error) {
	if sessionID == "" {
		return Record{}, newFieldError("sessionId", "required")
	}
	params = params.normalize()

	for range r.loginRetries {
		rec, err := r.findOne(ctx, BySessionID(sessionID))
		if err != nil {
			return Record{}, err
		}

		next := params.apply(rec.Identity)
		keys := []string{sessionLockKey(sessionID)}
		if next != rec.Identity {
			if err := r.validateIdentity(next); err != nil {
				return Record{}, err
			}
			// Both identities are serialized with their logins, in a fixed order.
			ids := []string{identityLockKey(rec.Identity), identityLockKey(next)}
			slices.Sort(ids)
			keys = append(ids, keys...)
		}

		out, err := r.updateLocked(ctx, sessionID, rec.Identity, params, keys)
		if errors.Is(err, errRetry) {
			continue
		}
		return out, err
	}

	return Record{}, ErrUpdateConflict
}

// updateLocked applies params once the given locks are held. It yields errRetry
// when the stored identity no longer equals the one the locks were chosen for.
func (r *Registry) updateLocked(ctx context.Context, sessionID string, identity Identity, params UpdateParams, keys []string) (Record, error) {
	unlock, err := r.lockAll(ctx, keys...)
	if err != nil {
		return Record{}, lockError(err)
	}
	defer unlock()

	var out Record
	err = r.atomically(ctx, func(ctx context.Context) error {
		rec, err := r.findOne(ctx, BySessionID(sessionID))
		if err != nil {
			return err
		}
		if rec.Identity != identity {
			return errRetry
		}

		now := r.clock()
		if now.Before(rec.LastAccessed) {
			now = rec.LastAccessed
		}
		patch := Patch{LastAccessed: &now}
		if params.Email != "" {
			patch.Email = &params.Email
		}
		if params.Nickname != "" {
			patch.Nickname = &params.Nickname
		}

		matched, err := r.updateOne(ctx, Filter{SessionID: sessionID, Identity: &identity}, patch)
		if err != nil {
			return err
		}
		if matched == 0 {
			return ErrNotFound
		}
		out = patch.Apply(rec)
		return nil
	})
	return out, err
}

// Status recomputes the session durations and persists the refreshed inactivity.
// A session past the inactivity threshold becomes Inactive and ErrExpired is returned,
// on this and every later check. Ended sessions yield ErrTerminated.
func (r *Registry) Status(ctx context.Context, sessionID string) (Snapshot, error) {
	if sessionID == "" {
		return Snapshot{}, newFieldError("sessionId", "required")
	}

	unlock, err := r.locker.Lock(ctx, sessionLockKey(sessionID))
	if err != nil {
		return Snapshot{}, lockError(err)
	}
	defer unlock()

	var (
		snap     Snapshot
		expiring bool
		from     Status
	)
	err = r.atomically(ctx, func(ctx context.Context) error {
		rec, err := r.findOne(ctx, BySessionID(sessionID))
		if err != nil {
			return err
		}
		if rec.Status.IsTerminal() {
			return ErrTerminated
		}

		now := r.clock()
		verdict := r.monitor.Evaluate(now, rec.LastAccessed)

		patch := Patch{InactiveSeconds: ptr(verdict.Seconds())}
		expiring = verdict.Expired && rec.IsActive()
		if expiring {
			patch.Status = ptr(StatusInactive)
		}
		if _, err := r.updateOne(ctx, BySessionID(sessionID), patch); err != nil {
			return err
		}

		from = rec.Status
		snap = Snapshot{
			Record:     patch.Apply(rec),
			Duration:   wholeSeconds(now.Sub(rec.CreatedAt)),
			Inactivity: verdict.Inactivity,
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	if expiring {
		r.observer.Transitioned(from, StatusInactive)
	}
	if snap.Status == StatusInactive {
		return Snapshot{}, ErrExpired
	}
	return snap, nil
}

// Get returns a record without side effects.
func (r *Registry) Get(ctx context.Context, sessionID string) (Record, error) {
	if sessionID == "" {
		return Record{}, newFieldError("sessionId", "required")
	}
	return r.findOne(ctx, BySessionID(sessionID))
}

// ListAll returns every record.
func (r *Registry) ListAll(ctx context.Context) ([]Record, error) {
	return r.find(ctx, Filter{})
}

// ListActive returns every Active record.
func (r *Registry) ListActive(ctx context.Context) ([]Record, error) {
	return r.find(ctx, Filter{Status: StatusActive})
}

// PurgeAll deletes every record and returns how many were removed. Irreversible.
func (r *Registry) PurgeAll(ctx context.Context) (int64, error) {
	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	n, err := r.store.DeleteMany(ctx, Filter{})
	return n, storeError(ctx, err)
}

func (r *Registry) validateLogin(params LoginParams) error {
	return r.fieldErrors(r.validate.Struct(params))
}

func (r *Registry) validateIdentity(id Identity) error {
	return r.fieldErrors(r.validate.Struct(id))
}

func (r *Registry) fieldErrors(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Join(ErrValidation, err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: loginFieldName(fe.StructField()), Rule: fe.Tag()})
	}
	return out
}

func loginFieldName(structField string) string {
	switch structField {
	case "Email":
		return "email"
	case "Nickname":
		return "nickname"
	case "DeviceFingerprint":
		return "macAddress"
	}
	return structField
}

// lockAll acquires keys in order and releases them in reverse.
func (r *Registry) lockAll(ctx context.Context, keys ...string) (func(), error) {
	unlocks := make([]func(), 0, len(keys))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, key := range keys {
		unlock, err := r.locker.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// atomically runs fn inside a store transaction when the store supports them.
// The whole unit is bounded by the store timeout.
func (r *Registry) atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, ok := r.store.(Transactor)
	if !ok {
		return fn(ctx)
	}
	tctx, cancel := r.storeContext(ctx)
	defer cancel()

	var fnErr error
	err := tx.InTx(tctx, func(ctx context.Context) error {
		fnErr = fn(ctx)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return storeError(tctx, err)
}

// clock returns the current instant in UTC with millisecond precision,
// the finest precision every backend round-trips.
func (r *Registry) clock() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *Registry) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.storeTimeout)
}

func (r *Registry) findOne(ctx context.Context, f Filter) (Record, error) {
	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	rec, err := r.store.FindOne(ctx, f)
	return rec, storeError(ctx, err)
}

func (r *Registry) find(ctx context.Context, f Filter) ([]Record, error) {
	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	recs, err := r.store.Find(ctx, f)
	if err != nil {
		return nil, storeError(ctx, err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

func (r *Registry) insertOne(ctx context.Context, rec Record) error {
	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	return storeError(ctx, r.store.InsertOne(ctx, rec))
}

func (r *Registry) updateOne(ctx context.Context, f Filter, p Patch) (int64, error) {
	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	n, err := r.store.UpdateOne(ctx, f, p)
	return n, storeError(ctx, err)
}

// storeError turns an expired store deadline into ErrStorageUnavailable.
func storeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return err
}

func lockError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return err
}
