package valuestore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/internal/valuestore"
)

// chunk-level behavior is exercised indirectly through Store, since chunk
// itself is unexported; these focus on boundaries Store delegates to it.

func TestStore_Chunk_OccupancyTracksSetAndClear(t *testing.T) {
	s := valuestore.NewStore()
	ref := cell(0, 0)
	assert.True(t, s.Get(ref).IsEmpty())

	s.Set(ref, types.IntValue(7))
	assert.False(t, s.Get(ref).IsEmpty())

	s.Clear(ref)
	assert.True(t, s.Get(ref).IsEmpty())
}

func TestStore_Chunk_LocalIndexCoversFullTile(t *testing.T) {
	s := valuestore.NewStore()
	// corners of a single 256x256 tile
	corners := []types.Coord{
		types.NewCoord(0, 0),
		types.NewCoord(0, valuestore.ChunkCols-1),
		types.NewCoord(valuestore.ChunkRows-1, 0),
		types.NewCoord(valuestore.ChunkRows-1, valuestore.ChunkCols-1),
	}
	for i, co := range corners {
		ref := types.CellRef{Sheet: 1, Coord: co}
		s.Set(ref, types.IntValue(int64(i)))
	}
	for i, co := range corners {
		ref := types.CellRef{Sheet: 1, Coord: co}
		assert.Equal(t, types.IntValue(int64(i)), s.Get(ref))
	}
}

func TestStore_Chunk_ComputedOverlayIndependentOfLiteral(t *testing.T) {
	s := valuestore.NewStore()
	ref := cell(1, 1)
	s.Set(ref, types.IntValue(1))
	s.SetComputed(ref, types.IntValue(2))

	// literal lane still holds its own value
	assert.Equal(t, types.IntValue(1), s.Get(ref))
	v, ok := s.GetComputed(ref)
	assert.True(t, ok)
	assert.Equal(t, types.IntValue(2), v)

	s.ClearComputed(ref)
	_, ok = s.GetComputed(ref)
	assert.False(t, ok)
	assert.Equal(t, types.IntValue(1), s.Get(ref), "clearing the overlay must not touch the literal lane")
}

func TestStore_Chunk_TimeAndDurationKinds(t *testing.T) {
	s := valuestore.NewStore()
	d := cell(2, 0)
	dt := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	s.Set(d, types.Value{Kind: types.KindDate, Time: dt})
	got := s.Get(d)
	assert.Equal(t, types.KindDate, got.Kind)
	assert.True(t, dt.Equal(got.Time))

	dur := cell(2, 1)
	s.Set(dur, types.Value{Kind: types.KindDuration, Dur: 2 * time.Hour})
	gotDur := s.Get(dur)
	assert.Equal(t, types.KindDuration, gotDur.Kind)
	assert.Equal(t, 2*time.Hour, gotDur.Dur)
}

func TestStore_Chunk_ErrorKindRoundTrips(t *testing.T) {
	s := valuestore.NewStore()
	ref := cell(3, 3)
	e := types.NewError(types.ErrValue, "bad coercion")
	s.Set(ref, types.ErrorValue(e))

	got := s.Get(ref)
	assert.True(t, got.IsError())
	assert.Equal(t, types.ErrValue, got.Error.Kind)
}
