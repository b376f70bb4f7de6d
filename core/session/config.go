package session

import (
	"time"

	"github.com/google/uuid"
)

// Config holds registry settings loadable from the environment.
type Config struct {
	MaxInactivity time.Duration `env:"SESSION_MAX_INACTIVITY" envDefault:"600s"`
	StoreTimeout  time.Duration `env:"SESSION_STORE_TIMEOUT" envDefault:"5s"`
	LoginRetries  int           `env:"SESSION_LOGIN_RETRIES" envDefault:"3"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MaxInactivity: DefaultMaxInactivity,
		StoreTimeout:  5 * time.Second,
		LoginRetries:  3,
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfig applies every non-zero field of cfg.
func WithConfig(cfg Config) Option {
	return func(r *Registry) {
		if cfg.MaxInactivity > 0 {
			r.monitor = NewMonitor(cfg.MaxInactivity)
		}
		if cfg.StoreTimeout > 0 {
			r.storeTimeout = cfg.StoreTimeout
		}
		if cfg.LoginRetries > 0 {
			r.loginRetries = cfg.LoginRetries
		}
	}
}

// WithMaxInactivity sets the inactivity threshold.
func WithMaxInactivity(d time.Duration) Option {
	return func(r *Registry) {
		r.monitor = NewMonitor(d)
	}
}

// WithStoreTimeout bounds every storage call.
func WithStoreTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.storeTimeout = d
		}
	}
}

// WithLocker replaces the in-process keyed mutex, e.g. with a distributed lock.
func WithLocker(l Locker) Option {
	return func(r *Registry) {
		if l != nil {
			r.locker = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithServerInfo sets the server diagnostics stamped on new sessions.
func WithServerInfo(info ServerInfo) Option {
	return func(r *Registry) {
		if info.Address == "" {
			info.Address = UnknownServerValue
		}
		if info.Hardware == "" {
			info.Hardware = UnknownServerValue
		}
		r.server = info
	}
}

// WithObserver registers a hook for lifecycle events.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

func defaultIDGenerator() string {
	return uuid.NewString()
}
