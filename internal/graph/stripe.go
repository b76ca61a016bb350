package graph

import (
	"sort"

	"github.com/PSU3D0/cellgraph/internal/types"
)

// stripeKey groups range subscriptions by sheet, since row intervals never
// cross sheets.
type stripeKey struct {
	sheet types.SheetId
}

// interval is a closed row interval [low, high] subscribed by a set of
// vertices, mirroring original_source's interval_tree.rs IntervalNode but
// without the BST: spreadsheet workloads keep this set small (spec.md notes
// sparse dependency width), so a sorted slice with linear-scan overlap
// lookup is simpler and just as fast in practice.
type interval struct {
	low, high uint32
	cols      [2]uint32 // [low, high] column bound, same treatment as rows
	subs      map[VertexId]struct{}
}

// StripeIndex answers "which vertices have a range precedent overlapping
// this edited rectangle" without a per-vertex range scan. It replaces the
// teacher's `rangeObservers map[RangeAddress]map[CellAddress]struct{}`
// (graph.go) with an interval index keyed by sheet, so a single-cell edit
// touches only the intervals whose row span contains it instead of every
// range ever referenced.
type StripeIndex struct {
	bySheet map[stripeKey][]*interval
}

func NewStripeIndex() *StripeIndex {
	return &StripeIndex{bySheet: make(map[stripeKey][]*interval)}
}

// Subscribe registers vertex as a dependent of rng; called whenever a
// formula's dependency extraction yields a Reference that spans a range.
func (s *StripeIndex) Subscribe(rng types.RangeRef, vertex VertexId) {
	key := stripeKey{sheet: rng.Sheet}
	for _, iv := range s.bySheet[key] {
		if iv.low == rng.Start.Row && iv.high == rng.End.Row &&
			iv.cols[0] == rng.Start.Col && iv.cols[1] == rng.End.Col {
			iv.subs[vertex] = struct{}{}
			return
		}
	}
	iv := &interval{
		low: rng.Start.Row, high: rng.End.Row,
		cols: [2]uint32{rng.Start.Col, rng.End.Col},
		subs: map[VertexId]struct{}{vertex: {}},
	}
	s.bySheet[key] = append(s.bySheet[key], iv)
}

// Unsubscribe removes vertex from every interval it was registered
// against, pruning intervals left with no subscribers.
func (s *StripeIndex) Unsubscribe(vertex VertexId) {
	for key, ivs := range s.bySheet {
		kept := ivs[:0]
		for _, iv := range ivs {
			delete(iv.subs, vertex)
			if len(iv.subs) > 0 {
				kept = append(kept, iv)
			}
		}
		s.bySheet[key] = kept
	}
}

// Overlapping returns, in ascending VertexId order for determinism, every
// vertex subscribed to a range overlapping coord on sheet.
func (s *StripeIndex) Overlapping(sheet types.SheetId, coord types.Coord) []VertexId {
	seen := make(map[VertexId]struct{})
	for _, iv := range s.bySheet[stripeKey{sheet: sheet}] {
		if coord.Row >= iv.low && coord.Row <= iv.high &&
			coord.Col >= iv.cols[0] && coord.Col <= iv.cols[1] {
			for v := range iv.subs {
				seen[v] = struct{}{}
			}
		}
	}
	out := make([]VertexId, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OverlappingRange returns every vertex subscribed to a range overlapping
// the edited rectangle rng, used when a row/column shift or a multi-cell
// write dirties a whole block at once.
func (s *StripeIndex) OverlappingRange(rng types.RangeRef) []VertexId {
	seen := make(map[VertexId]struct{})
	for _, iv := range s.bySheet[stripeKey{sheet: rng.Sheet}] {
		if iv.low <= rng.End.Row && iv.high >= rng.Start.Row &&
			iv.cols[0] <= rng.End.Col && iv.cols[1] >= rng.Start.Col {
			for v := range iv.subs {
				seen[v] = struct{}{}
			}
		}
	}
	out := make([]VertexId, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
