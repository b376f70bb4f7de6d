package sessiond

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/sessiontrack/core/config"
	"github.com/dmitrymomot/sessiontrack/core/server"
	"github.com/dmitrymomot/sessiontrack/core/session"
)

// Backend names accepted by SESSION_STORE.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Locker names accepted by SESSION_LOCKER.
const (
	LockerLocal = "local"
	LockerRedis = "redis"
)

// Config is the service configuration. Connection settings of the selected
// backend (MONGODB_*, PG_*, REDIS_*) are loaded only when that backend is used.
type Config struct {
	Server  server.Config
	Session session.Config

	AppName  string `env:"APP_NAME" envDefault:"sessiond"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Store  string `env:"SESSION_STORE" envDefault:"mongo"`
	Locker string `env:"SESSION_LOCKER" envDefault:"local"`

	MongoDatabase   string `env:"MONGODB_DATABASE" envDefault:"sessiontrack"`
	MongoCollection string `env:"MONGODB_COLLECTION" envDefault:"sesiones"`
	RedisPrefix     string `env:"REDIS_KEY_PREFIX" envDefault:"sessiontrack:"`

	AdminToken      string `env:"ADMIN_TOKEN"`
	AllowPurge      bool   `env:"ALLOW_PURGE" envDefault:"false"`
	DisplayTimezone string `env:"DISPLAY_TIMEZONE" envDefault:"Local"`
}

// LoadConfig reads Config from the environment and .env.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMongo, StorePostgres, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("%w: SESSION_STORE=%q", ErrInvalidConfig, c.Store)
	}
	switch c.Locker {
	case LockerLocal, LockerRedis:
	default:
		return fmt.Errorf("%w: SESSION_LOCKER=%q", ErrInvalidConfig, c.Locker)
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("%w: DISPLAY_TIMEZONE=%q: %w", ErrInvalidConfig, c.DisplayTimezone, err)
	}
	return nil
}
