package session

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a session record.
type Status string

const (
	StatusActive           Status = "Active"
	StatusInactive         Status = "Inactive"
	StatusLoggedOut        Status = "LoggedOut"
	StatusSystemTerminated Status = "SystemTerminated"
)

// IsTerminal reports whether no further lifecycle transition out of s is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusLoggedOut || s == StatusSystemTerminated
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusLoggedOut, StatusSystemTerminated:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Identity is the (email, nickname) pair used as the uniqueness key
// for the one-active-session rule.
type Identity struct {
	Email    string `validate:"required,email,max=254"`
	Nickname string `validate:"required,max=128"`
}

// Key returns a stable string form of the identity, suitable for lock names and index keys.
func (i Identity) Key() string {
	return i.Email + "\x00" + i.Nickname
}

// IsZero reports whether both identity fields are empty.
func (i Identity) IsZero() bool {
	return i.Email == "" && i.Nickname == ""
}

// UnknownServerValue is recorded when the serving host's address or hardware id cannot be determined.
const UnknownServerValue = "unknown"

// ServerInfo identifies the server instance that created a session.
type ServerInfo struct {
	Address  string
	Hardware string
}

// Record is a single session as persisted by a Store.
// All timestamps are absolute instants in UTC.
type Record struct {
	// SessionID is generated at creation and never changes.
	SessionID         string
	Identity          Identity
	DeviceFingerprint string
	ClientAddress     string
	Server            ServerInfo

	// CreatedAt never changes, even across reactivation.
	CreatedAt    time.Time
	LastAccessed time.Time

	// InactiveSeconds is the inactivity measured by the last status check.
	InactiveSeconds int64
	Status          Status
}

// IsActive reports whether the record is in the Active state.
func (r Record) IsActive() bool {
	return r.Status == StatusActive
}

// Snapshot is a record together with durations computed at the moment of a status check.
type Snapshot struct {
	Record

	// Duration is the whole-second time elapsed since CreatedAt.
	Duration time.Duration
	// Inactivity is the whole-second time elapsed since LastAccessed.
	Inactivity time.Duration
}

// LoginParams carries the trusted identity fields and client details of a login request.
type LoginParams struct {
	Identity          Identity
	DeviceFingerprint string `validate:"required,max=128"`
	ClientAddress     string
}

func (p LoginParams) normalize() LoginParams {
	p.Identity.Email = strings.TrimSpace(p.Identity.Email)
	p.Identity.Nickname = strings.TrimSpace(p.Identity.Nickname)
	p.DeviceFingerprint = strings.TrimSpace(p.DeviceFingerprint)
	p.ClientAddress = strings.TrimSpace(p.ClientAddress)
	return p
}

// LoginResult is the outcome of a login.
type LoginResult struct {
	Record Record
	// Reactivated is true when an existing Active session was resumed instead of created.
	Reactivated bool
}

// UpdateParams carries optional identity changes. Empty values leave the field unchanged.
type UpdateParams struct {
	Email    string
	Nickname string
}

func (p UpdateParams) normalize() UpdateParams {
	p.Email = strings.TrimSpace(p.Email)
	p.Nickname = strings.TrimSpace(p.Nickname)
	return p
}

// apply returns id with the supplied fields replaced.
func (p UpdateParams) apply(id Identity) Identity {
	if p.Email != "" {
		id.Email = p.Email
	}
	if p.Nickname != "" {
		id.Nickname = p.Nickname
	}
	return id
}
