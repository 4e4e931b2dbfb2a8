package source

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/formwork/api"
)

// File is a named source unit. After the first parse the tree (view) or
// document (data) is the source of truth and the cached text is re-derived
// from it; direct text updates force a re-parse.
type File struct {
	name string
	kind api.FileKind
	text string
	view *ViewModule // view kind only
	data *DataDoc    // data kind only
}

// NewFile builds a File from an import config. Empty view content yields a
// fresh module with a bare root element; empty data content yields an empty
// object. Route/store/service modules keep text only but are syntax-checked.
func NewFile(cfg api.FileConfig) (*File, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = api.KindForFilename(cfg.Filename)
	}
	f := &File{name: cfg.Filename, kind: kind}

	switch kind {
	case api.KindView:
		if cfg.Content == "" {
			f.view = NewViewModule(ComponentName(cfg.Filename), "Page")
		} else {
			m, err := ParseView(cfg.Filename, []byte(cfg.Content))
			if err != nil {
				return nil, err
			}
			f.view = m
		}
		f.text = f.view.Render()
	case api.KindData:
		d, err := ParseData(cfg.Filename, []byte(cfg.Content))
		if err != nil {
			return nil, err
		}
		f.data = d
		f.text = d.Render()
	default:
		if cfg.Content != "" {
			if err := ValidateModule(cfg.Filename, []byte(cfg.Content)); err != nil {
				return nil, err
			}
		}
		f.text = cfg.Content
	}
	return f, nil
}

// Name returns the file's registry key.
func (f *File) Name() string { return f.name }

// Kind returns the file kind.
func (f *File) Kind() api.FileKind { return f.kind }

// Text returns the cached rendering.
func (f *File) Text() string { return f.text }

// View returns the structural tree for view files.
func (f *File) View() (*ViewModule, bool) { return f.view, f.view != nil }

// Data returns the parsed document for data files.
func (f *File) Data() (*DataDoc, bool) { return f.data, f.data != nil }

// SetText replaces the file content wholesale, forcing a re-parse.
// On parse failure the previous tree and text are untouched.
func (f *File) SetText(text string) error {
	switch f.kind {
	case api.KindView:
		m, err := ParseView(f.name, []byte(text))
		if err != nil {
			return err
		}
		f.view = m
		f.text = m.Render()
	case api.KindData:
		d, err := ParseData(f.name, []byte(text))
		if err != nil {
			return err
		}
		f.data = d
		f.text = d.Render()
	default:
		if err := ValidateModule(f.name, []byte(text)); err != nil {
			return err
		}
		f.text = text
	}
	return nil
}

// Refresh re-derives the cached text from the tree after a structural
// mutation. Reports whether the text changed.
func (f *File) Refresh() bool {
	old := f.text
	switch {
	case f.view != nil:
		f.text = f.view.Render()
	case f.data != nil:
		f.text = f.data.Render()
	}
	return f.text != old
}

// Renamed returns the same file contents under a new key. For view files the
// exported component name follows the filename. The receiver must be
// discarded afterwards: rename is destroy-and-recreate.
func (f *File) Renamed(newName string) *File {
	nf := &File{name: newName, kind: f.kind, text: f.text, view: f.view, data: f.data}
	if nf.view != nil {
		nf.view.component = ComponentName(newName)
		nf.Refresh()
	}
	return nf
}

// Snapshot captures an immutable copy of the file state: kind, text, and a
// deep copy of the tree with node ids preserved. Used by the history engine;
// later in-place edits cannot corrupt it.
type Snapshot struct {
	Kind api.FileKind
	Text string

	view *viewState
	data *DataDoc
}

type viewState struct {
	component string
	root      *Node
	imports   *ImportMap
	nextID    uint32
}

// Snapshot captures the current file state.
func (f *File) Snapshot() *Snapshot {
	s := &Snapshot{Kind: f.kind, Text: f.text}
	if f.view != nil {
		s.view = &viewState{
			component: f.view.component,
			root:      clonePreserveIDs(f.view.root),
			imports:   f.view.imports.clone(),
			nextID:    f.view.nextID,
		}
	}
	if f.data != nil {
		s.data = f.data.clone()
	}
	return s
}

// Restore replaces the file state from a snapshot. The snapshot itself stays
// reusable: restored trees are fresh copies.
func (f *File) Restore(s *Snapshot) {
	f.kind = s.Kind
	f.text = s.Text
	f.view = nil
	f.data = nil
	if s.view != nil {
		m := &ViewModule{
			component: s.view.component,
			imports:   s.view.imports.clone(),
			nodes:     make(map[NodeID]*Node),
			live:      roaring.New(),
			nextID:    s.view.nextID,
		}
		m.root = clonePreserveIDs(s.view.root)
		m.register(m.root)
		f.view = m
	}
	if s.data != nil {
		f.data = s.data.clone()
	}
}

// FromSnapshot recreates a destroyed file from its snapshot.
func FromSnapshot(name string, s *Snapshot) *File {
	f := &File{name: name}
	f.Restore(s)
	return f
}

// clonePreserveIDs deep-copies a subtree keeping node ids, so undo restores
// the exact identities the caller may still hold.
func clonePreserveIDs(n *Node) *Node {
	cp := &Node{id: n.id, Component: n.Component, attrs: append([]Attr(nil), n.attrs...)}
	for _, c := range n.children {
		cc := clonePreserveIDs(c)
		cc.parent = cp
		cp.children = append(cp.children, cc)
	}
	return cp
}

// String implements fmt.Stringer for debug output.
func (f *File) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", f.name, f.kind, len(f.text))
}
