package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PSU3D0/cellgraph/internal/graph"
)

func TestEpochTracker_AdvanceIncrementsCurrent(t *testing.T) {
	e := graph.NewEpochTracker()
	assert.Equal(t, uint64(0), e.Current())
	e.Advance()
	assert.Equal(t, uint64(1), e.Current())
}

func TestEpochTracker_SafeEpochPinsToOldestReader(t *testing.T) {
	e := graph.NewEpochTracker()
	tok := e.BeginRead()
	e.Advance()
	e.Advance()
	assert.Equal(t, uint64(0), e.SafeEpoch(), "pinned reader blocks the safe epoch from advancing")

	e.EndRead(tok)
	assert.Equal(t, uint64(2), e.SafeEpoch())
}

func TestEpochTracker_NoActiveReadersSafeEpochIsCurrent(t *testing.T) {
	e := graph.NewEpochTracker()
	e.Advance()
	assert.Equal(t, e.Current(), e.SafeEpoch())
}
