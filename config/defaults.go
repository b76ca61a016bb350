// Package config holds engine configuration defaults and environment
// overrides, in the teacher's (mcpxcel) config/defaults.go style: plain
// exported Default* constants consumed by internal/engine.Config, with
// CELLGRAPH_*-prefixed env vars (renamed from mcpxcel's MCPXCEL_* prefix)
// overriding them at process startup.
package config

import "time"

// Default guardrails for the spreadsheet engine. These are conservative
// starting points; internal/engine.Config lets callers override any of them
// per instance.
const (
	// Concurrency
	DefaultMaxThreads          = 8
	DefaultMaxConcurrentEvals  = 4

	// Spill / overlay guardrails
	DefaultMaxSpillCells       = 10_000
	DefaultMaxOverlayMemoryBytes = 64 * 1024 * 1024 // 64MB

	// Journal
	DefaultMaxChangelogEvents = 10_000

	// Bulk ingest
	DefaultBulkIngestBatchRows = 1_000
)

const (
	// Timeouts
	DefaultRecalcTimeout        = 30 * time.Second
	DefaultAcquireWorkerTimeout = 2 * time.Second
)
