// Package workspace is the orchestrating façade over the project model.
// Every cross-cutting operation funnels through it so a single history
// entry is recorded per logical user action, selection/drag references are
// invalidated after destructive edits, and listeners learn which files
// changed.
package workspace

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agentic-research/formwork/internal/focus"
	"github.com/agentic-research/formwork/internal/history"
	"github.com/agentic-research/formwork/internal/proto"
	"github.com/agentic-research/formwork/internal/source"
)

var (
	// ErrFileNotFound means the filename is not registered.
	ErrFileNotFound = errors.New("file not found")
	// ErrNameConflict means a file or folder rename/add collides with an
	// existing name.
	ErrNameConflict = errors.New("name conflict")
	// ErrNoSelection means a selection-implicit operation ran with no
	// selected (or dragged) node.
	ErrNoSelection = errors.New("no node selected")
)

// Workspace is the process-wide aggregate for one open project. It owns the
// file registry, the prototype catalog, the history log, and the transient
// selection/drag slots. One Workspace serves one logical session; its mutex
// serializes the public operations so an event-driven host sees each logical
// operation run to completion.
type Workspace struct {
	mu sync.Mutex

	files  map[string]*source.File
	protos *proto.Registry
	log    *history.Log

	selection focus.Slot
	drag      focus.Slot
	clipboard *clipboardEntry

	activeFile  string
	activeRoute string

	refs *refIndex

	onFilesChange func([]string)
}

type clipboardEntry struct {
	spec    *source.NodeSpec
	imports []source.ImportRecord
}

// New constructs an empty workspace.
func New() *Workspace {
	return &Workspace{
		files:  make(map[string]*source.File),
		protos: proto.NewRegistry(),
		log:    history.NewLog(),
		refs:   newRefIndex(),
	}
}

// OnFilesChange installs the single outward push notification: fn is invoked
// once per committed logical operation with the files whose cached text
// changed, in no particular order.
func (w *Workspace) OnFilesChange(fn func(filenames []string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onFilesChange = fn
}

// SetComponentPrototypes replaces the catalog of available components.
func (w *Workspace) SetComponentPrototypes(protos map[string]*proto.Prototype) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.protos.SetAll(protos)
}

// GetPrototype resolves a prototype reference against the catalog.
func (w *Workspace) GetPrototype(ref proto.Ref) (*proto.Prototype, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ref.Resolve(w.protos)
}

// History exposes undo/redo availability for menu state.
func (w *Workspace) History() (canUndo, canRedo bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.log.CanUndo(), w.log.CanRedo()
}

// SetCoalesceWindow adjusts history coalescing for hosts with their own
// debounce; zero disables merging.
func (w *Workspace) SetCoalesceWindow(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.log.SetCoalesceWindow(d)
}

// Undo reverts the most recent logical operation.
func (w *Workspace) Undo() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.log.Undo()
	if err != nil {
		return err
	}
	w.finishRestore(w.applyState(entry.Before))
	return nil
}

// Redo re-applies the most recently undone operation.
func (w *Workspace) Redo() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.log.Redo()
	if err != nil {
		return err
	}
	w.finishRestore(w.applyState(entry.After))
	return nil
}

// applyState swaps the registry to one side of a history entry.
func (w *Workspace) applyState(state map[string]*source.Snapshot) []string {
	changed := make([]string, 0, len(state))
	for name, snap := range state {
		switch {
		case snap == nil:
			delete(w.files, name)
		default:
			if f, ok := w.files[name]; ok {
				f.Restore(snap)
			} else {
				w.files[name] = source.FromSnapshot(name, snap)
			}
		}
		changed = append(changed, name)
	}
	return changed
}

func (w *Workspace) finishRestore(changed []string) {
	w.invalidateFocus()
	w.fixActivePointers()
	w.reindex(changed)
	w.notify(changed)
}

// Select points the selection slot at a live node.
func (w *Workspace) Select(file string, node source.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkNode(file, node); err != nil {
		return err
	}
	w.selection.Set(focus.Ref{File: file, Node: node})
	return nil
}

// Selected returns the current selection.
func (w *Workspace) Selected() (focus.Ref, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.Get()
}

// ClearSelection empties the selection slot. Idempotent.
func (w *Workspace) ClearSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection.Clear()
}

// StartDrag points the drag slot at a live node.
func (w *Workspace) StartDrag(file string, node source.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkNode(file, node); err != nil {
		return err
	}
	w.drag.Set(focus.Ref{File: file, Node: node})
	return nil
}

// Dragged returns the current drag source.
func (w *Workspace) Dragged() (focus.Ref, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.drag.Get()
}

// CancelDrag empties the drag slot. Idempotent.
func (w *Workspace) CancelDrag() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drag.Clear()
}

// checkNode verifies (file, node) names a live node in a view file.
func (w *Workspace) checkNode(file string, node source.NodeID) error {
	v, err := w.viewOf(file)
	if err != nil {
		return err
	}
	if !v.Contains(node) {
		return fmt.Errorf("%w: %s node %d", source.ErrNodeNotFound, file, node)
	}
	return nil
}

// viewOf resolves a filename to its view module.
func (w *Workspace) viewOf(file string) (*source.ViewModule, error) {
	f, ok := w.files[file]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, file)
	}
	v, ok := f.View()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a view file", source.ErrInvalidTarget, file)
	}
	return v, nil
}

// invalidateFocus clears selection/drag references whose node no longer
// exists. Runs after every destructive mutation and after undo/redo; the
// file model itself knows nothing about selection.
func (w *Workspace) invalidateFocus() {
	stale := func(r focus.Ref) bool {
		f, ok := w.files[r.File]
		if !ok {
			return true
		}
		v, ok := f.View()
		if !ok {
			return true
		}
		return !v.Contains(r.Node)
	}
	w.selection.ClearIf(stale)
	w.drag.ClearIf(stale)
}

// fixActivePointers drops active file/route pointers at files that no
// longer exist.
func (w *Workspace) fixActivePointers() {
	if w.activeFile != "" {
		if _, ok := w.files[w.activeFile]; !ok {
			w.activeFile = ""
		}
	}
}

func (w *Workspace) notify(changed []string) {
	if w.onFilesChange == nil || len(changed) == 0 {
		return
	}
	sort.Strings(changed)
	w.onFilesChange(changed)
}

// --- transactional commit -------------------------------------------------

// txn accumulates per-operation before/after snapshots. A transaction only
// records history and notifies listeners when the operation fully succeeds;
// abandoning it on an error path costs nothing because every mutation
// validates before it writes.
type txn struct {
	w     *Workspace
	entry *history.Entry
}

func (w *Workspace) begin(label string) *txn {
	return &txn{w: w, entry: history.NewEntry(label)}
}

// touch snapshots a file's pre-state the first time it is named.
func (t *txn) touch(name string) {
	if _, done := t.entry.Before[name]; done {
		return
	}
	if f, ok := t.w.files[name]; ok {
		t.entry.Before[name] = f.Snapshot()
	} else {
		t.entry.Before[name] = nil
	}
}

// rollback restores every touched file to its pre-state without recording
// anything. Used by multi-step operations when a later step fails, so a
// failed operation leaves tree, imports, and history unchanged.
func (t *txn) rollback() {
	t.w.applyState(t.entry.Before)
}

// commit re-renders touched files, records one history entry, refreshes the
// dependency index, and fires the change notification.
func (t *txn) commit() {
	var changed []string
	for name, before := range t.entry.Before {
		f, ok := t.w.files[name]
		if ok {
			f.Refresh()
			t.entry.After[name] = f.Snapshot()
		} else {
			t.entry.After[name] = nil
		}
		if fileChanged(before, t.entry.After[name]) {
			changed = append(changed, name)
		}
	}
	t.w.log.Record(t.entry)
	t.w.invalidateFocus()
	t.w.fixActivePointers()
	t.w.reindex(changed)
	t.w.notify(changed)
}

func fileChanged(before, after *source.Snapshot) bool {
	switch {
	case before == nil && after == nil:
		return false
	case before == nil || after == nil:
		return true
	}
	return before.Text != after.Text
}
