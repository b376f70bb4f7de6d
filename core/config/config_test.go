package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontrack/core/config"
)

func TestLoad(t *testing.T) {
	t.Setenv("CONFIG_TEST_RETRIES", "5")
	config.Forget()

	var first config.TestConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, ":8080", first.Addr)
	assert.Equal(t, 5, first.Retries)

	t.Setenv("CONFIG_TEST_RETRIES", "9")
	var second config.TestConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first, second, "values are cached per type")

	config.Forget()
	var third config.TestConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, 9, third.Retries)
}

func TestLoad_Errors(t *testing.T) {
	var missing config.RequiredConfig
	require.ErrorIs(t, config.Load(&missing), config.ErrParsingConfig)

	assert.Panics(t, func() {
		var again config.RequiredConfig
		config.MustLoad(&again)
	})

	require.ErrorIs(t, config.Load[config.TestConfig](nil), config.ErrParsingConfig)
}
