package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PSU3D0/cellgraph/config"
)

func TestIntFromEnv_ParsesOverride(t *testing.T) {
	t.Setenv(config.EnvMaxThreads, "16")
	assert.Equal(t, 16, config.IntFromEnv(config.EnvMaxThreads, 8))
}

func TestIntFromEnv_FallsBackOnUnparseable(t *testing.T) {
	t.Setenv(config.EnvMaxThreads, "not-a-number")
	assert.Equal(t, 8, config.IntFromEnv(config.EnvMaxThreads, 8))
}

func TestIntFromEnv_FallsBackWhenEnvVarNeverSet(t *testing.T) {
	assert.Equal(t, 42, config.IntFromEnv("CELLGRAPH_SOME_UNSET_VAR", 42))
}

func TestBoolFromEnv_ParsesOverride(t *testing.T) {
	t.Setenv(config.EnvEnableParallel, "false")
	assert.False(t, config.BoolFromEnv(config.EnvEnableParallel, true))
}
