package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when the environment cannot be parsed into the target.
var ErrParsingConfig = errors.New("failed to parse config from environment")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any (value of T)
	loadMu     sync.Mutex
)

// Load fills cfg from the environment. The first call for a type parses the
// environment; later calls copy the cached value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil target", ErrParsingConfig)
	}

	dotenvOnce.Do(func() {
		// A missing .env file is not an error.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache.Store(key, parsed)
	*cfg = parsed
	return nil
}

// MustLoad is like Load but panics on failure. Intended for startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
