package workspace

import (
	"fmt"
	"sort"

	"github.com/agentic-research/formwork/internal/focus"
	"github.com/agentic-research/formwork/internal/proto"
	"github.com/agentic-research/formwork/internal/source"
)

// InsertNode creates a node from a prototype and attaches it under parentID
// in the named view file. The prototype's import reference is registered so
// the rendered component resolves; its prop defaults become the initial
// attributes. Returns the new node's id.
func (w *Workspace) InsertNode(file string, parentID source.NodeID, ref proto.Ref, pos source.Position) (source.NodeID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.insertNode(file, parentID, ref, pos)
}

func (w *Workspace) insertNode(file string, parentID source.NodeID, ref proto.Ref, pos source.Position) (source.NodeID, error) {
	v, err := w.viewOf(file)
	if err != nil {
		return 0, err
	}
	p, err := ref.Resolve(w.protos)
	if err != nil {
		return 0, err
	}
	if err := w.checkAcceptsChildren(v, parentID); err != nil {
		return 0, err
	}
	if err := v.CanInsert(parentID, pos); err != nil {
		return 0, err
	}

	t := w.begin("insert " + p.Name)
	t.touch(file)
	if p.Import != nil {
		if err := v.Imports().Add(p.Import.Source, p.Import.Specifier(p.Name)); err != nil {
			return 0, err
		}
	}
	n := v.NewNode(p.Name, p.DefaultAttrs()...)
	if err := v.InsertChild(parentID, n, pos); err != nil {
		return 0, err
	}
	t.commit()
	return n.ID(), nil
}

// checkAcceptsChildren rejects insertion into a component whose prototype
// declares it leaf-only. Unregistered components (the scaffold root, text
// handled by the file model) are permissive.
func (w *Workspace) checkAcceptsChildren(v *source.ViewModule, parentID source.NodeID) error {
	parent, err := v.GetNode(parentID)
	if err != nil {
		return err
	}
	if p, ok := w.protos.Lookup(parent.Component); ok && !p.AcceptsChildren {
		return fmt.Errorf("%w: %s does not accept children", source.ErrInvalidTarget, parent.Component)
	}
	return nil
}

// RemoveNode destroys the subtree rooted at id in the named view file.
// Selection and drag references into the destroyed subtree are cleared.
func (w *Workspace) RemoveNode(file string, id source.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, err := w.viewOf(file)
	if err != nil {
		return err
	}
	t := w.begin("remove node")
	t.touch(file)
	if _, err := v.RemoveNode(id); err != nil {
		return err
	}
	t.commit()
	return nil
}

// ReplaceNode swaps the subtree at id for a fresh node built from a
// prototype, preserving the position among siblings.
func (w *Workspace) ReplaceNode(file string, id source.NodeID, ref proto.Ref) (source.NodeID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, err := w.viewOf(file)
	if err != nil {
		return 0, err
	}
	p, err := ref.Resolve(w.protos)
	if err != nil {
		return 0, err
	}
	if _, err := v.GetNode(id); err != nil {
		return 0, err
	}

	t := w.begin("replace with " + p.Name)
	t.touch(file)
	if p.Import != nil {
		if err := v.Imports().Add(p.Import.Source, p.Import.Specifier(p.Name)); err != nil {
			return 0, err
		}
	}
	n := v.NewNode(p.Name, p.DefaultAttrs()...)
	if _, err := v.ReplaceNode(id, n); err != nil {
		t.rollback()
		return 0, err
	}
	t.commit()
	return n.ID(), nil
}

// UpdateNodeAttribute sets (value != nil) or removes (value == nil) one
// attribute expression. relatedImports are registered first so the written
// expression's external references resolve. Consecutive edits to the same
// attribute coalesce into one history entry.
func (w *Workspace) UpdateNodeAttribute(file string, id source.NodeID, name string, value *source.Value, relatedImports ...source.ImportRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, err := w.viewOf(file)
	if err != nil {
		return err
	}
	t := w.begin("set " + name)
	t.entry.CoalesceKey = fmt.Sprintf("attr|%s|%d|%s", file, id, name)
	t.touch(file)
	if err := v.UpdateAttribute(id, name, value, relatedImports...); err != nil {
		return err
	}
	t.commit()
	return nil
}

// UpdateSelectedNodeAttributes applies a batch of attribute edits to the
// selected node as one history entry. This is the write half of the form
// editor contract.
func (w *Workspace) UpdateSelectedNodeAttributes(attrs map[string]*source.Value) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	sel, ok := w.selection.Get()
	if !ok {
		return ErrNoSelection
	}
	v, err := w.viewOf(sel.File)
	if err != nil {
		return err
	}
	if _, err := v.GetNode(sel.Node); err != nil {
		return err
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	t := w.begin("edit attributes")
	t.touch(sel.File)
	for _, name := range names {
		if err := v.UpdateAttribute(sel.Node, name, attrs[name]); err != nil {
			t.rollback()
			return err
		}
	}
	t.commit()
	return nil
}

// AddImportSpecifiers registers import specifiers on a view file.
// Idempotent for identical bindings; alias collisions fail with
// ErrImportConflict.
func (w *Workspace) AddImportSpecifiers(file, sourceModule string, specs ...source.Specifier) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, err := w.viewOf(file)
	if err != nil {
		return err
	}
	t := w.begin("add imports")
	t.touch(file)
	if err := v.Imports().Add(sourceModule, specs...); err != nil {
		return err
	}
	t.commit()
	return nil
}

// InsertToSelectedNode appends a prototype instance under the selected node.
func (w *Workspace) InsertToSelectedNode(ref proto.Ref) (source.NodeID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sel, ok := w.selection.Get()
	if !ok {
		return 0, ErrNoSelection
	}
	return w.insertNode(sel.File, sel.Node, ref, source.Append())
}

// CloneSelectedNode duplicates the selected subtree as its next sibling and
// moves the selection to the clone. Cloning the root is disallowed.
func (w *Workspace) CloneSelectedNode() (source.NodeID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sel, ok := w.selection.Get()
	if !ok {
		return 0, ErrNoSelection
	}
	v, err := w.viewOf(sel.File)
	if err != nil {
		return 0, err
	}
	n, err := v.GetNode(sel.Node)
	if err != nil {
		return 0, err
	}
	if n.Parent() == nil {
		return 0, fmt.Errorf("%w: cannot clone the root node", source.ErrInvalidTarget)
	}

	t := w.begin("clone node")
	t.touch(sel.File)
	cp, err := v.Clone(sel.Node)
	if err != nil {
		return 0, err
	}
	if err := v.InsertChild(n.Parent().ID(), cp, source.After(sel.Node)); err != nil {
		return 0, err
	}
	t.commit()
	w.selection.Set(focus.Ref{File: sel.File, Node: cp.ID()})
	return cp.ID(), nil
}

// CopySelectedNode captures the selected subtree (and the imports its
// components need) onto the clipboard. Pure read: no history entry.
func (w *Workspace) CopySelectedNode() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	sel, ok := w.selection.Get()
	if !ok {
		return ErrNoSelection
	}
	v, err := w.viewOf(sel.File)
	if err != nil {
		return err
	}
	n, err := v.GetNode(sel.Node)
	if err != nil {
		return err
	}
	spec := source.Spec(n)
	w.clipboard = &clipboardEntry{spec: spec, imports: w.importsForSpec(v, spec)}
	return nil
}

// PasteSelectedNode materializes the clipboard subtree under the selected
// node with fresh ids, carrying over the imports it needs.
func (w *Workspace) PasteSelectedNode() (source.NodeID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sel, ok := w.selection.Get()
	if !ok {
		return 0, ErrNoSelection
	}
	if w.clipboard == nil {
		return 0, fmt.Errorf("%w: clipboard is empty", ErrNoSelection)
	}
	v, err := w.viewOf(sel.File)
	if err != nil {
		return 0, err
	}
	if err := w.checkAcceptsChildren(v, sel.Node); err != nil {
		return 0, err
	}
	if err := v.CanInsert(sel.Node, source.Append()); err != nil {
		return 0, err
	}

	t := w.begin("paste node")
	t.touch(sel.File)
	for _, rec := range w.clipboard.imports {
		if err := v.Imports().Add(rec.Source, rec.Specs...); err != nil {
			t.rollback()
			return 0, err
		}
	}
	n := v.Materialize(w.clipboard.spec)
	if err := v.InsertChild(sel.Node, n, source.Append()); err != nil {
		t.rollback()
		return 0, err
	}
	t.commit()
	return n.ID(), nil
}

// DropNode completes a drag: the dragged node moves under parentID in the
// target file. Same-file drops preserve node ids; cross-file drops recreate
// the subtree with fresh ids and carry its imports. The drag slot is
// cleared on success.
func (w *Workspace) DropNode(targetFile string, parentID source.NodeID, pos source.Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	drag, ok := w.drag.Get()
	if !ok {
		return ErrNoSelection
	}
	target, err := w.viewOf(targetFile)
	if err != nil {
		return err
	}
	if err := w.checkAcceptsChildren(target, parentID); err != nil {
		return err
	}

	if drag.File == targetFile {
		t := w.begin("move node")
		t.touch(targetFile)
		if err := target.MoveNode(drag.Node, parentID, pos); err != nil {
			return err
		}
		t.commit()
		w.drag.Clear()
		return nil
	}

	origin, err := w.viewOf(drag.File)
	if err != nil {
		return err
	}
	n, err := origin.GetNode(drag.Node)
	if err != nil {
		return err
	}
	if n.Parent() == nil {
		return fmt.Errorf("%w: cannot move the root node across files", source.ErrInvalidTarget)
	}
	if err := target.CanInsert(parentID, pos); err != nil {
		return err
	}
	spec := source.Spec(n)
	imports := w.importsForSpec(origin, spec)

	t := w.begin("move node")
	t.touch(drag.File)
	t.touch(targetFile)
	for _, rec := range imports {
		if err := target.Imports().Add(rec.Source, rec.Specs...); err != nil {
			t.rollback()
			return err
		}
	}
	moved := target.Materialize(spec)
	if err := target.InsertChild(parentID, moved, pos); err != nil {
		t.rollback()
		return err
	}
	if _, err := origin.RemoveNode(drag.Node); err != nil {
		t.rollback()
		return err
	}
	t.commit()
	w.drag.Clear()
	return nil
}

// importsForSpec collects the import records backing every component name in
// a subtree: the origin file's import map wins, the prototype catalog fills
// the gaps for components the origin declared locally.
func (w *Workspace) importsForSpec(origin *source.ViewModule, spec *source.NodeSpec) []source.ImportRecord {
	needed := make(map[string]bool)
	var walk func(*source.NodeSpec)
	walk = func(s *source.NodeSpec) {
		if s.Component != source.TextComponent {
			needed[s.Component] = true
		}
		for _, c := range s.Children {
			walk(c)
		}
	}
	walk(spec)

	var names []string
	for name := range needed {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []source.ImportRecord
	for _, name := range names {
		if src, specifier, ok := origin.Imports().Lookup(name); ok {
			out = append(out, source.ImportRecord{Source: src, Specs: []source.Specifier{specifier}})
			continue
		}
		if p, ok := w.protos.Lookup(name); ok && p.Import != nil {
			out = append(out, source.ImportRecord{Source: p.Import.Source, Specs: []source.Specifier{p.Import.Specifier(name)}})
		}
	}
	return out
}

// UpdateDataValue writes a JSONPath-addressed value in a data file.
func (w *Workspace) UpdateDataValue(file, pathExpr string, value any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[file]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, file)
	}
	d, ok := f.Data()
	if !ok {
		return fmt.Errorf("%w: %s is not a data file", source.ErrInvalidTarget, file)
	}
	t := w.begin("update data")
	t.entry.CoalesceKey = fmt.Sprintf("data|%s|%s", file, pathExpr)
	t.touch(file)
	if err := d.Set(pathExpr, value); err != nil {
		return err
	}
	t.commit()
	return nil
}

// DeleteDataValue removes JSONPath-addressed values from a data file.
func (w *Workspace) DeleteDataValue(file, pathExpr string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[file]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, file)
	}
	d, ok := f.Data()
	if !ok {
		return fmt.Errorf("%w: %s is not a data file", source.ErrInvalidTarget, file)
	}
	t := w.begin("delete data")
	t.touch(file)
	if err := d.Delete(pathExpr); err != nil {
		return err
	}
	t.commit()
	return nil
}
