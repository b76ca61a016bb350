package journal

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PSU3D0/cellgraph/pkg/cellerr"
)

// Config bounds the journal's retained history.
type Config struct {
	// MaxChangelogEvents caps the linear audit log; past it, the oldest
	// events are evicted FIFO. Zero means config.DefaultMaxChangelogEvents.
	MaxChangelogEvents int
}

// ApplyFunc materializes an inverse event back into graph/store state. The
// journal itself owns no graph or value store — internal/editor supplies
// this callback at construction time, since only it knows how to turn a
// ValueSetPayload or VertexMovedPayload back into a mutation.
type ApplyFunc func(Event)

// Journal is the change log: a FIFO-evicted linear event history, plus
// undo/redo stacks of compound groups. Not safe to share across goroutines
// without external synchronization beyond what Journal itself provides —
// all public methods lock internally.
type Journal struct {
	mu     sync.Mutex
	cfg    Config
	apply  ApplyFunc
	logger zerolog.Logger

	seq    uint64
	events []Event

	// actionStarts tracks, for each currently-open ActionAtomic nesting
	// level, the index into events where that level's recording began —
	// nesting depth is len(actionStarts).
	actionStarts []int
	groupIDs     []uuid.UUID

	undoStack [][]Event
	redoStack [][]Event
}

// New builds a Journal. apply is invoked during rollback, Undo, and Redo to
// replay an event (or its inverse) into the live graph/store.
func New(cfg Config, apply ApplyFunc) *Journal {
	if cfg.MaxChangelogEvents <= 0 {
		cfg.MaxChangelogEvents = 10_000
	}
	return &Journal{cfg: cfg, apply: apply, logger: zerolog.Nop()}
}

// WithLogger attaches a structured logger, following the teacher's
// (mcpxcel) injected-logger-field idiom rather than a package-level global.
func (j *Journal) WithLogger(logger zerolog.Logger) *Journal {
	j.logger = logger.With().Str("component", "journal").Logger()
	return j
}

// Depth reports the current ActionAtomic nesting level (0 outside any
// action).
func (j *Journal) Depth() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.actionStarts)
}

// Record appends a new event under the innermost open action's group (or a
// fresh group of its own if no action is open), evicting the oldest events
// past cfg.MaxChangelogEvents.
func (j *Journal) Record(kind Kind, meta Meta, payload any) Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.recordLocked(kind, meta, payload)
}

func (j *Journal) recordLocked(kind Kind, meta Meta, payload any) Event {
	group := uuid.New()
	if n := len(j.groupIDs); n > 0 {
		group = j.groupIDs[n-1]
	}
	j.seq++
	ev := Event{Seq: j.seq, Kind: kind, GroupID: group, Meta: meta, Payload: payload}
	j.events = append(j.events, ev)
	j.evictLocked()

	// A top-level (non-nested) record is its own complete undo group.
	if len(j.actionStarts) == 0 && kind != EventCompoundStart && kind != EventCompoundEnd {
		j.undoStack = append(j.undoStack, []Event{ev})
		j.redoStack = nil
	}
	return ev
}

func (j *Journal) evictLocked() {
	over := len(j.events) - j.cfg.MaxChangelogEvents
	if over > 0 {
		j.events = j.events[over:]
	}
}

// Events returns a copy of the live audit log, oldest first.
func (j *Journal) Events() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Event, len(j.events))
	copy(out, j.events)
	return out
}

// Tx is the transaction handle passed to an ActionAtomic closure. Editor
// methods invoked against it record events tagged with the action's group
// id. A failure rolls back every event recorded since the action began,
// including any recorded concurrently by other edits.
type Tx struct {
	j    *Journal
	meta Meta
}

// Record appends an event to the enclosing action's group.
func (tx *Tx) Record(kind Kind, payload any) Event {
	tx.j.mu.Lock()
	defer tx.j.mu.Unlock()
	return tx.j.recordLocked(kind, tx.meta, payload)
}

// ActionAtomic begins a compound action named name, runs fn against a Tx,
// and either commits the whole group (fn returns nil) or rolls it back
// wholly (fn returns an error): every event fn recorded is inverted, in
// reverse order, via the journal's ApplyFunc, and a *cellerr.EditorError
// wrapping fn's error is returned. Nesting is supported — only the
// outermost action pushes an undo group.
func (j *Journal) ActionAtomic(name string, meta Meta, fn func(tx *Tx) error) error {
	j.mu.Lock()
	groupID := uuid.New()
	j.groupIDs = append(j.groupIDs, groupID)
	start := len(j.events)
	j.actionStarts = append(j.actionStarts, start)
	j.recordLocked(EventCompoundStart, meta, CompoundPayload{Name: name})
	j.mu.Unlock()

	err := fn(&Tx{j: j, meta: meta})

	j.mu.Lock()
	defer j.mu.Unlock()
	j.actionStarts = j.actionStarts[:len(j.actionStarts)-1]
	j.groupIDs = j.groupIDs[:len(j.groupIDs)-1]

	if err != nil {
		recorded := append([]Event(nil), j.events[start:]...)
		j.events = j.events[:start]
		for i := len(recorded) - 1; i >= 0; i-- {
			ev := recorded[i]
			if ev.Kind == EventCompoundStart || ev.Kind == EventCompoundEnd {
				continue
			}
			j.apply(ev.Inverse())
		}
		j.logger.Debug().Str("action", name).Int("events_rolled_back", len(recorded)).Msg("atomic action rolled back")
		return cellerr.Wrap(cellerr.ActionFailed, "action "+name+" rolled back", err)
	}

	j.recordLocked(EventCompoundEnd, meta, CompoundPayload{Name: name, Committed: true})

	if len(j.actionStarts) == 0 {
		group := append([]Event(nil), j.events[start:]...)
		j.undoStack = append(j.undoStack, group)
		j.redoStack = nil
	}
	return nil
}

// Undo pops the most recent compound group and applies its inverses in
// reverse order, moving the group to the redo stack.
func (j *Journal) Undo() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.undoStack) == 0 {
		return cellerr.New(cellerr.NothingToUndo, "")
	}
	n := len(j.undoStack) - 1
	group := j.undoStack[n]
	j.undoStack = j.undoStack[:n]

	for i := len(group) - 1; i >= 0; i-- {
		ev := group[i]
		if ev.Kind == EventCompoundStart || ev.Kind == EventCompoundEnd {
			continue
		}
		j.apply(ev.Inverse())
	}
	j.redoStack = append(j.redoStack, group)
	return nil
}

// Redo re-applies the most recently undone compound group in forward order,
// moving it back onto the undo stack.
func (j *Journal) Redo() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.redoStack) == 0 {
		return cellerr.New(cellerr.NothingToRedo, "")
	}
	n := len(j.redoStack) - 1
	group := j.redoStack[n]
	j.redoStack = j.redoStack[:n]

	for _, ev := range group {
		if ev.Kind == EventCompoundStart || ev.Kind == EventCompoundEnd {
			continue
		}
		j.apply(ev)
	}
	j.undoStack = append(j.undoStack, group)
	return nil
}
