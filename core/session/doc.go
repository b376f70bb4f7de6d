// Package session implements the login session lifecycle: creation, reactivation,
// update, inactivity expiry and termination of session records tied to a user
// identity, a device fingerprint and a client address.
//
// The Registry owns the lifecycle. It persists records through a pluggable Store
// and asks the Monitor whether a session crossed the inactivity threshold every
// time its status is checked. Expiry is evaluated lazily: nothing sweeps idle
// sessions in the background, so an Active record past the threshold stays Active
// in storage until the next status check.
//
// # Lifecycle
//
//	(start)  --login-->            Active
//	Active   --login-->            Active (reactivation, same session id)
//	Active   --status, idle-->     Inactive
//	Active   --logout-->           LoggedOut
//	any      --terminate-->        SystemTerminated
//
// LoggedOut and SystemTerminated are terminal. Logout only ends an Active session;
// on any other state it is a no-op. An Inactive session is never revived;
// a new login for the same identity creates a new session id.
//
// # Consistency
//
// Login holds a lock on the identity. Update holds the locks of the old and the
// new identity, sorted, whenever it changes identity fields, then the session
// lock. Reactivation only patches a record that is still Active for the same
// identity. Stores implementing Transactor run each read-then-write step inside
// one transaction.
//
// # Basic usage
//
//	registry := session.NewRegistry(
//		session.NewMemoryStore(),
//		session.WithMaxInactivity(10*time.Minute),
//	)
//
//	res, err := registry.Login(ctx, session.LoginParams{
//		Identity:          session.Identity{Email: "a@x.com", Nickname: "a"},
//		DeviceFingerprint: "AA:BB",
//		ClientAddress:     "203.0.113.7",
//	})
//	if err != nil {
//		return err
//	}
//
//	snap, err := registry.Status(ctx, res.Record.SessionID)
//	switch {
//	case errors.Is(err, session.ErrExpired):
//		// session became Inactive
//	case errors.Is(err, session.ErrNotFound):
//		// unknown or ended session (ErrTerminated matches ErrNotFound)
//	}
//
// # Concurrency
//
// Mutations on one session id are serialized through a Locker; logins also lock
// the identity. The in-process KeyedMutex is the default. Every Store must in
// addition reject an insert or update that would produce a second Active record
// for one identity with ErrDuplicate, which the Registry resolves by looking the
// winning record up again.
//
// # Errors
//
// ErrValidation (and *ValidationError), ErrNotFound, ErrTerminated, ErrExpired,
// ErrDuplicate, ErrStorageUnavailable and ErrLoginConflict are returned as-is for
// the presentation layer to translate.
package session
