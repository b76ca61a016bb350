package config

import (
	"os"
	"strconv"
)

// IntFromEnv reads name from the environment and parses it as an int,
// returning fallback when unset or unparseable. Engine callers use this to
// apply CELLGRAPH_*-prefixed overrides over the Default* constants above,
// mirroring the teacher's MCPXCEL_ALLOWED_DIRS-style env lookups.
func IntFromEnv(name string, fallback int) int {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// BoolFromEnv reads name from the environment and parses it as a bool,
// returning fallback when unset or unparseable.
func BoolFromEnv(name string, fallback bool) bool {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

// Env names read by internal/engine.ConfigFromEnv.
const (
	EnvMaxThreads          = "CELLGRAPH_MAX_THREADS"
	EnvMaxSpillCells       = "CELLGRAPH_MAX_SPILL_CELLS"
	EnvMaxChangelogEvents  = "CELLGRAPH_MAX_CHANGELOG_EVENTS"
	EnvEnableParallel      = "CELLGRAPH_ENABLE_PARALLEL"
)
