package workspace

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// refIndex maps import source modules to the set of files depending on
// them. Files get stable internal uint32 ids so the per-module sets are
// roaring bitmaps instead of name slices.
type refIndex struct {
	fileIDs map[string]uint32
	names   []string // reverse: id -> filename
	modules map[string]*roaring.Bitmap
}

func newRefIndex() *refIndex {
	return &refIndex{
		fileIDs: make(map[string]uint32),
		modules: make(map[string]*roaring.Bitmap),
	}
}

func (ix *refIndex) idFor(name string) uint32 {
	if id, ok := ix.fileIDs[name]; ok {
		return id
	}
	id := uint32(len(ix.names))
	ix.fileIDs[name] = id
	ix.names = append(ix.names, name)
	return id
}

// update replaces a file's outgoing module references.
func (ix *refIndex) update(name string, sources []string) {
	id := ix.idFor(name)
	for module, bm := range ix.modules {
		bm.Remove(id)
		if bm.IsEmpty() {
			delete(ix.modules, module)
		}
	}
	for _, module := range sources {
		bm, ok := ix.modules[module]
		if !ok {
			bm = roaring.New()
			ix.modules[module] = bm
		}
		bm.Add(id)
	}
}

// remove drops a file from every module set.
func (ix *refIndex) remove(name string) {
	id, ok := ix.fileIDs[name]
	if !ok {
		return
	}
	for module, bm := range ix.modules {
		bm.Remove(id)
		if bm.IsEmpty() {
			delete(ix.modules, module)
		}
	}
}

// dependents returns the files importing from a module, sorted.
func (ix *refIndex) dependents(module string) []string {
	bm, ok := ix.modules[module]
	if !ok {
		return nil
	}
	var out []string
	it := bm.Iterator()
	for it.HasNext() {
		id := it.Next()
		if int(id) < len(ix.names) {
			out = append(out, ix.names[id])
		}
	}
	sort.Strings(out)
	return out
}

// reindex refreshes the dependency index for the named files.
func (w *Workspace) reindex(changed []string) {
	for _, name := range changed {
		f, ok := w.files[name]
		if !ok {
			w.refs.remove(name)
			continue
		}
		v, ok := f.View()
		if !ok {
			w.refs.update(name, nil)
			continue
		}
		var sources []string
		for _, rec := range v.Imports().Records() {
			sources = append(sources, rec.Source)
		}
		w.refs.update(name, sources)
	}
}

// DependentsOf returns the files that import from the given module, sorted
// by name.
func (w *Workspace) DependentsOf(module string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refs.dependents(module)
}
