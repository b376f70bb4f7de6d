// Package config loads typed configuration from the environment.
//
// A .env file in the working directory is read once, on first use, and never
// overrides variables already set. Fields are parsed with caarlos0/env tags:
//
//	type Config struct {
//		MaxInactivity time.Duration `env:"SESSION_MAX_INACTIVITY" envDefault:"600s"`
//		ConnURL       string        `env:"PG_CONN_URL,required"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err // wraps ErrParsingConfig
//	}
//
// Each type is parsed once and cached, so backend configs can be loaded lazily
// by whichever component needs them without re-reading the environment. Use
// MustLoad at startup where a failure should abort the process.
package config
