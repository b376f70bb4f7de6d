package config

import "reflect"

// forget drops the cached value of T so tests can reload it.
func forget[T any]() {
	cache.Delete(reflect.TypeFor[T]())
}

var Forget = forget[testConfig]

type testConfig struct {
	Addr    string `env:"CONFIG_TEST_ADDR" envDefault:":8080"`
	Retries int    `env:"CONFIG_TEST_RETRIES" envDefault:"3"`
}

type TestConfig = testConfig

type RequiredConfig struct {
	Token string `env:"CONFIG_TEST_REQUIRED_TOKEN,required"`
}
