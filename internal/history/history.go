// Package history provides the linear undo/redo log over file snapshots.
// Entries form a single sequence with one cursor; recording while the cursor
// is not at the tail discards everything after it, so history never branches.
package history

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/agentic-research/formwork/internal/source"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultCoalesceWindow bounds how far apart two edits may be and still
// merge into one entry. Consecutive attribute edits to the same node and
// attribute inside this window collapse; everything else records separately.
const DefaultCoalesceWindow = 750 * time.Millisecond

// Entry is one undoable unit of change. Before and After map each affected
// filename to its snapshot; a nil snapshot means the file did not exist on
// that side (file add/remove/rename).
type Entry struct {
	ID     string
	Label  string
	At     time.Time
	Before map[string]*source.Snapshot
	After  map[string]*source.Snapshot

	// CoalesceKey marks entries eligible for merging: same key on two
	// consecutive tail entries inside the window merges them. Empty
	// disables coalescing for this entry.
	CoalesceKey string
}

// NewEntry builds a tagged entry with the current time.
func NewEntry(label string) *Entry {
	return &Entry{
		ID:     uuid.NewString(),
		Label:  label,
		At:     time.Now(),
		Before: make(map[string]*source.Snapshot),
		After:  make(map[string]*source.Snapshot),
	}
}

// Log is the history state machine. The cursor counts applied entries:
// entries[:cursor] are undoable, entries[cursor:] are redoable.
type Log struct {
	entries []*Entry
	cursor  int
	window  time.Duration
}

// NewLog returns an empty log with the default coalescing window.
func NewLog() *Log {
	return &Log{window: DefaultCoalesceWindow}
}

// SetCoalesceWindow overrides the merge window; zero disables merging.
func (l *Log) SetCoalesceWindow(d time.Duration) { l.window = d }

// Len returns the number of recorded entries.
func (l *Log) Len() int { return len(l.entries) }

// CanUndo reports whether the cursor has entries behind it.
func (l *Log) CanUndo() bool { return l.cursor > 0 }

// CanRedo reports whether the cursor has entries ahead of it.
func (l *Log) CanRedo() bool { return l.cursor < len(l.entries) }

// Record appends an entry at the cursor, discarding any redoable tail.
// Eligible consecutive entries merge: the merged entry keeps the earliest
// Before and the latest After, so undo jumps over the whole burst.
func (l *Log) Record(e *Entry) {
	l.entries = l.entries[:l.cursor]

	if e.CoalesceKey != "" && l.cursor > 0 && l.window > 0 {
		top := l.entries[l.cursor-1]
		if top.CoalesceKey == e.CoalesceKey && e.At.Sub(top.At) <= l.window {
			top.After = e.After
			top.At = e.At
			return
		}
	}

	l.entries = append(l.entries, e)
	l.cursor++
}

// Undo moves the cursor back one entry and returns it; the caller applies
// the entry's Before state.
func (l *Log) Undo() (*Entry, error) {
	if !l.CanUndo() {
		return nil, ErrNothingToUndo
	}
	l.cursor--
	return l.entries[l.cursor], nil
}

// Redo advances the cursor over the next entry and returns it; the caller
// applies the entry's After state.
func (l *Log) Redo() (*Entry, error) {
	if !l.CanRedo() {
		return nil, ErrNothingToRedo
	}
	e := l.entries[l.cursor]
	l.cursor++
	return e, nil
}
