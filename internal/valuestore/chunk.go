// Package valuestore is the columnar cell-value backing store: a 256x256
// chunked grid per sheet, adapted directly from the teacher's
// Worksheet/Chunk design (worksheet.go) with lazily-allocated per-type
// lanes and a bit-packed occupancy bitmap. SPEC_FULL.md §3.7 adds two
// overlays on top of the teacher's single value lane: a delta overlay for
// results staged during a recalculation pass (a reader sees the pending
// value through EffectiveWithDelta and the committed one through Effective)
// and a
// computed overlay holding formula results distinct from literal input,
// so ClearDependencies can drop a stale computed value without touching a
// user-entered one.
package valuestore

import (
	"time"

	"github.com/PSU3D0/cellgraph/internal/types"
)

const (
	// ChunkRows/ChunkCols mirror the teacher's worksheet.go constants
	// exactly: powers of two sized to a typical viewport.
	ChunkRows uint32 = 256
	ChunkCols uint32 = 256
	ChunkSize        = ChunkRows * ChunkCols
)

// chunkKey locates a chunk within a sheet.
type chunkKey struct {
	row, col uint32
}

// chunk is one 256x256 tile of cell values, laid out as structure-of-
// arrays: one lane per Kind, allocated only the first time a cell of that
// kind is written (most chunks only ever see one or two kinds). occupied
// is a bit-packed presence mask so IsEmpty and iteration don't need to
// scan every lane.
type chunk struct {
	kinds    []types.Kind // always allocated once the chunk exists
	ints     []int64
	numbers  []float64
	texts    []string
	booleans []bool
	times    []int64 // unix-nano, used for Date/DateTime/Time
	durs     []int64 // nanoseconds, used for Duration
	errors   []*types.ExcelError
	occupied []uint64

	// computed holds formula-derived values separately from literal
	// entries in the lanes above, so detaching a formula (ClearFormula)
	// can drop just the computed value without losing... nothing, since a
	// formula cell has no independent literal, but this separation keeps
	// the invariant explicit and lets the evaluator overwrite computed
	// results without touching occupied/kinds bookkeeping for literals.
	computed map[uint32]types.Value
}

func newChunk() *chunk {
	return &chunk{
		kinds:    make([]types.Kind, ChunkSize),
		occupied: make([]uint64, (ChunkSize+63)/64),
	}
}

func localIndex(localRow, localCol uint32) uint32 {
	return localCol*ChunkRows + localRow
}

func (c *chunk) isOccupied(idx uint32) bool {
	w, b := idx/64, idx%64
	return c.occupied[w]&(1<<b) != 0
}

func (c *chunk) setOccupied(idx uint32, on bool) {
	w, b := idx/64, idx%64
	if on {
		c.occupied[w] |= 1 << b
	} else {
		c.occupied[w] &^= 1 << b
	}
}

// get reads the literal value stored at idx (not the computed overlay).
func (c *chunk) get(idx uint32) types.Value {
	if !c.isOccupied(idx) {
		return types.Empty
	}
	switch c.kinds[idx] {
	case types.KindInt:
		return types.IntValue(c.ints[idx])
	case types.KindNumber:
		return types.NumberValue(c.numbers[idx])
	case types.KindText:
		return types.TextValue(c.texts[idx])
	case types.KindBoolean:
		return types.BoolValue(c.booleans[idx])
	case types.KindError:
		return types.ErrorValue(c.errors[idx])
	case types.KindDate, types.KindDateTime, types.KindTime:
		return types.Value{Kind: c.kinds[idx], Time: time.Unix(0, c.times[idx]).UTC()}
	case types.KindDuration:
		return types.Value{Kind: types.KindDuration, Dur: time.Duration(c.durs[idx])}
	default:
		return types.Empty
	}
}

// set writes a literal value at idx, lazily allocating the lane it needs.
func (c *chunk) set(idx uint32, v types.Value) {
	c.kinds[idx] = v.Kind
	switch v.Kind {
	case types.KindInt:
		if c.ints == nil {
			c.ints = make([]int64, ChunkSize)
		}
		c.ints[idx] = v.Int
	case types.KindNumber:
		if c.numbers == nil {
			c.numbers = make([]float64, ChunkSize)
		}
		c.numbers[idx] = v.Number
	case types.KindText:
		if c.texts == nil {
			c.texts = make([]string, ChunkSize)
		}
		c.texts[idx] = v.Text
	case types.KindBoolean:
		if c.booleans == nil {
			c.booleans = make([]bool, ChunkSize)
		}
		c.booleans[idx] = v.Boolean
	case types.KindError:
		if c.errors == nil {
			c.errors = make([]*types.ExcelError, ChunkSize)
		}
		c.errors[idx] = v.Error
	case types.KindDate, types.KindDateTime, types.KindTime:
		if c.times == nil {
			c.times = make([]int64, ChunkSize)
		}
		c.times[idx] = v.Time.UnixNano()
	case types.KindDuration:
		if c.durs == nil {
			c.durs = make([]int64, ChunkSize)
		}
		c.durs[idx] = int64(v.Dur)
	}
	c.setOccupied(idx, v.Kind != types.KindEmpty)
}

func (c *chunk) clear(idx uint32) {
	c.kinds[idx] = types.KindEmpty
	c.setOccupied(idx, false)
	if c.computed != nil {
		delete(c.computed, idx)
	}
}

func (c *chunk) setComputed(idx uint32, v types.Value) {
	if c.computed == nil {
		c.computed = make(map[uint32]types.Value)
	}
	c.computed[idx] = v
}

func (c *chunk) getComputed(idx uint32) (types.Value, bool) {
	if c.computed == nil {
		return types.Value{}, false
	}
	v, ok := c.computed[idx]
	return v, ok
}

func (c *chunk) clearComputed(idx uint32) {
	if c.computed != nil {
		delete(c.computed, idx)
	}
}
