package session

import "time"

// DefaultMaxInactivity is the inactivity threshold used when none is configured.
const DefaultMaxInactivity = 10 * time.Minute

// Verdict is the outcome of an inactivity evaluation.
type Verdict struct {
	// Inactivity is floor(now - lastAccessed) in whole seconds.
	Inactivity time.Duration
	Expired    bool
}

// Seconds returns the inactivity as whole seconds.
func (v Verdict) Seconds() int64 {
	return int64(v.Inactivity / time.Second)
}

// Monitor decides whether a session has been idle for too long.
// It holds no state besides the threshold and is safe for concurrent use.
type Monitor struct {
	maxInactivity time.Duration
}

// NewMonitor creates a monitor with the given threshold.
// A non-positive threshold falls back to DefaultMaxInactivity.
func NewMonitor(maxInactivity time.Duration) Monitor {
	if maxInactivity <= 0 {
		maxInactivity = DefaultMaxInactivity
	}
	return Monitor{maxInactivity: maxInactivity.Truncate(time.Second)}
}

// MaxInactivity returns the configured threshold.
func (m Monitor) MaxInactivity() time.Duration {
	return m.maxInactivity
}

// Evaluate measures inactivity between lastAccessed and now.
// A clock that moved backwards yields zero inactivity.
func (m Monitor) Evaluate(now, lastAccessed time.Time) Verdict {
	idle := wholeSeconds(now.Sub(lastAccessed))
	return Verdict{
		Inactivity: idle,
		Expired:    idle >= m.maxInactivity,
	}
}

func wholeSeconds(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}
