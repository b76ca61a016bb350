// Package evaluator drives a scheduled recalculation pass: for each layer
// the scheduler produces, it evaluates every vertex in the layer
// concurrently (bounded by a weighted semaphore, mirroring mcpxcel's
// runtime.Controller), commits results in deterministic vertex-id order,
// and propagates the resulting values into internal/valuestore. It owns
// AST-to-Value evaluation (walking internal/ast nodes and dispatching
// through internal/function) — a responsibility the teacher's ASTNode.Eval
// methods used to hold themselves.
package evaluator

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/function"
	"github.com/PSU3D0/cellgraph/internal/graph"
	"github.com/PSU3D0/cellgraph/internal/scheduler"
	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/internal/valuestore"
)

// Resolver supplies the cross-package lookups evaluation needs that don't
// belong to the graph or the store: sheet name resolution, named ranges,
// structured tables, and the date system in effect for the workbook.
type Resolver interface {
	ResolveSheet(name string) (types.SheetId, bool)
	ResolveNamedRange(name string) (types.RangeRef, bool)
	ResolveTableColumn(table string, sel ast.TableSelector) (types.RangeRef, bool)
	DateSystem() types.DateSystem
}

// Evaluator ties a Graph, a Store, a function Registry, and a Resolver
// together to run recalculation passes.
type Evaluator struct {
	Graph    *graph.Graph
	Store    *valuestore.Store
	Registry *function.Registry
	Resolver Resolver
	Spill    *SpillEngine

	// MaxConcurrency bounds how many vertices in one layer evaluate at
	// once; 0 means unbounded (still fanned out via errgroup, just with no
	// semaphore gate). Mirrors mcpxcel's Controller.requestSemaphore sizing
	// model (internal/runtime/runtime.go).
	MaxConcurrency int

	clock func() time.Time
	rand  func() float64
}

func New(g *graph.Graph, store *valuestore.Store, resolver Resolver) *Evaluator {
	return &Evaluator{
		Graph:          g,
		Store:          store,
		Registry:       function.Global(),
		Resolver:       resolver,
		Spill:          NewSpillEngine(store),
		MaxConcurrency: 8,
		clock:          time.Now,
		rand:           rand.Float64,
	}
}

// WithClock overrides the volatile-function clock (tests inject a fixed
// time the same way the teacher's BuiltInFunctions accepts a Clock).
func (e *Evaluator) WithClock(clock func() time.Time) *Evaluator {
	e.clock = clock
	return e
}

// WithRand overrides the volatile-function random source.
func (e *Evaluator) WithRand(r func() float64) *Evaluator {
	e.rand = r
	return e
}

// Recalculate runs one full pass: mark volatile vertices dirty, schedule
// the dirty closure into layers, evaluate each layer with bounded
// concurrency, and commit results in ascending vertex-id order for
// determinism. Returns the number of vertices evaluated and the vertices
// caught in a circular reference (assigned #CIRC!).
func (e *Evaluator) Recalculate(ctx context.Context) (evaluated int, circular []graph.VertexId, err error) {
	e.Graph.MarkAllVolatileDirty()
	dirty := map[graph.VertexId]bool{}
	for _, v := range e.Graph.DirtyIds() {
		dirty[v] = true
	}
	plan, err := scheduler.Schedule(e.Graph, scheduler.WithContext(ctx))
	if err != nil {
		return 0, nil, err
	}

	for _, v := range plan.Circular {
		ref := e.Graph.Vertices.Ref(v)
		e.Store.SetComputed(ref, types.ErrorValue(types.NewError(types.ErrCirc, "circular reference").WithOrigin(ref)))
		e.Graph.ClearDirty(v)
	}

	for _, layer := range plan.Layers {
		select {
		case <-ctx.Done():
			e.Store.DiscardDeltas()
			return evaluated, plan.Circular, ctx.Err()
		default:
		}
		// clean precedents pulled into the closure keep their committed values
		var todo scheduler.Layer
		for _, v := range layer.Vertices {
			if dirty[v] {
				todo.Vertices = append(todo.Vertices, v)
			}
		}
		if err := e.runLayer(ctx, todo); err != nil {
			e.Store.DiscardDeltas()
			return evaluated, plan.Circular, err
		}
		evaluated += len(todo.Vertices)
	}
	e.Store.CommitDeltas()
	for _, layer := range plan.Layers {
		for _, v := range layer.Vertices {
			e.Graph.ClearDirty(v)
		}
	}
	return evaluated, plan.Circular, nil
}

// runLayer evaluates every vertex in layer concurrently (bounded by
// MaxConcurrency) via errgroup, staging each result as a delta so sibling
// vertices in the same layer never observe a half-committed value, then
// commits in ascending id order once the whole layer finishes —
// determinism property spec.md §7 requires regardless of goroutine
// completion order.
func (e *Evaluator) runLayer(ctx context.Context, layer scheduler.Layer) error {
	ids := append([]graph.VertexId(nil), layer.Vertices...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sem *semaphore.Weighted
	if e.MaxConcurrency > 0 {
		sem = semaphore.NewWeighted(int64(e.MaxConcurrency))
	}

	results := make([]types.Value, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if sem != nil {
				if err := sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)
			}
			results[i] = e.evaluateVertex(gctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, id := range ids {
		ref := e.Graph.Vertices.Ref(id)
		e.Store.StageDelta(ref, results[i])
	}
	return nil
}

func (e *Evaluator) evaluateVertex(ctx context.Context, id graph.VertexId) types.Value {
	ref := e.Graph.Vertices.Ref(id)
	node := e.Graph.Vertices.Formula(id)
	if node == nil {
		return e.Store.Get(ref)
	}
	env := newLocalEnv(nil)
	fnCtx := &function.Context{
		Caller: ref,
		Now: func() types.Value {
			return types.Value{Kind: types.KindDateTime, Time: e.clock()}
		},
		Rand: e.rand,
	}
	v := e.eval(ctx, node, ref, env, fnCtx)
	rows, cols := v.Dims()
	if v.Kind == types.KindArray && (rows > 1 || cols > 1) {
		out := e.Spill.Apply(ref, v.Array, id)
		if out.Kind == types.KindArray {
			return v.Array[0][0] // the anchor shows the top-left element
		}
		return out
	}
	return v
}
