package graph

// VisibilitySource distinguishes a manually hidden row from one hidden by
// an active filter, so the two can be toggled independently (unhiding rows
// doesn't reveal filtered-out ones and vice versa).
type VisibilitySource uint8

const (
	VisibilityManual VisibilitySource = iota
	VisibilityFilter
)

// VisibilityMaskMode selects which hidden-row sources a query should treat
// as excluded, mirroring original_source's masks.rs VisibilityMaskMode.
type VisibilityMaskMode uint8

const (
	MaskIncludeAll VisibilityMaskMode = iota
	MaskExcludeManual
	MaskExcludeFilter
	MaskExcludeManualOrFilter
)

// rowBitSet is a growable bitset over row indices, grounded on
// original_source's row_visibility.rs RowBitSet.
type rowBitSet struct {
	words []uint64
}

func (b *rowBitSet) get(row uint32) bool {
	w := int(row / 64)
	if w >= len(b.words) {
		return false
	}
	return b.words[w]&(1<<(row%64)) != 0
}

// set returns whether the bit actually changed.
func (b *rowBitSet) set(row uint32, on bool) bool {
	w := int(row / 64)
	if w >= len(b.words) {
		if !on {
			return false
		}
		grown := make([]uint64, w+1)
		copy(grown, b.words)
		b.words = grown
	}
	mask := uint64(1) << (row % 64)
	old := b.words[w]&mask != 0
	if old == on {
		return false
	}
	if on {
		b.words[w] |= mask
	} else {
		b.words[w] &^= mask
	}
	return true
}

// RowVisibility tracks per-sheet row hidden state from two independent
// sources (manual hide and active filter), used by the editor's row
// insert/delete to know which rows a shift must carry visibility state
// for. No function reads it: SUBTOTAL's 101-109 codes count hidden rows
// the same as 1-9, and there is no AGGREGATE.
type RowVisibility struct {
	manual map[uint16]*rowBitSet
	filter map[uint16]*rowBitSet
}

func NewRowVisibility() *RowVisibility {
	return &RowVisibility{manual: map[uint16]*rowBitSet{}, filter: map[uint16]*rowBitSet{}}
}

func (v *RowVisibility) bitsetFor(sheet uint16, src VisibilitySource, create bool) *rowBitSet {
	m := v.manual
	if src == VisibilityFilter {
		m = v.filter
	}
	bs, ok := m[sheet]
	if !ok {
		if !create {
			return nil
		}
		bs = &rowBitSet{}
		m[sheet] = bs
	}
	return bs
}

// SetHidden marks row hidden/visible under src on sheet.
func (v *RowVisibility) SetHidden(sheet uint16, row uint32, src VisibilitySource, hidden bool) bool {
	return v.bitsetFor(sheet, src, true).set(row, hidden)
}

// IsHidden reports whether row is hidden under the given mode.
func (v *RowVisibility) IsHidden(sheet uint16, row uint32, mode VisibilityMaskMode) bool {
	switch mode {
	case MaskIncludeAll:
		return false
	case MaskExcludeManual:
		if bs := v.bitsetFor(sheet, VisibilityManual, false); bs != nil {
			return bs.get(row)
		}
		return false
	case MaskExcludeFilter:
		if bs := v.bitsetFor(sheet, VisibilityFilter, false); bs != nil {
			return bs.get(row)
		}
		return false
	default: // MaskExcludeManualOrFilter
		m := v.bitsetFor(sheet, VisibilityManual, false)
		f := v.bitsetFor(sheet, VisibilityFilter, false)
		return (m != nil && m.get(row)) || (f != nil && f.get(row))
	}
}

// ShiftRows inserts or removes n rows at/after `at`, carrying hidden bits
// along with the rows they belong to — mirroring the editor's formula
// reference rewriting for row insert/delete (spec.md §4.4).
func (v *RowVisibility) ShiftRows(sheet uint16, at uint32, delta int) {
	for _, m := range []map[uint16]*rowBitSet{v.manual, v.filter} {
		bs, ok := m[sheet]
		if !ok {
			continue
		}
		shifted := &rowBitSet{}
		maxRow := uint32(len(bs.words)) * 64
		for row := uint32(0); row < maxRow; row++ {
			if !bs.get(row) {
				continue
			}
			var newRow int64
			switch {
			case row < at:
				newRow = int64(row)
			case delta < 0 && row < at+uint32(-delta):
				continue // row deleted
			default:
				newRow = int64(row) + int64(delta)
			}
			if newRow >= 0 {
				shifted.set(uint32(newRow), true)
			}
		}
		m[sheet] = shifted
	}
}
