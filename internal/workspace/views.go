package workspace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentic-research/formwork/api"
	"github.com/agentic-research/formwork/internal/proto"
	"github.com/agentic-research/formwork/internal/source"
)

// The derived read views below are pure projections over current workspace
// state. They are recomputed on every call and never separately mutated.

// Pages returns the view files under pages/, sorted.
func (w *Workspace) Pages() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for name, f := range w.files {
		if f.Kind() == api.KindView && strings.HasPrefix(name, "pages/") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// LocalComps returns the view files under components/: components defined
// inside the project itself, sorted.
func (w *Workspace) LocalComps() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for name, f := range w.files {
		if f.Kind() == api.KindView && strings.HasPrefix(name, "components/") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// BaseComps returns the registered base-library prototypes, sorted by name.
func (w *Workspace) BaseComps() []*proto.Prototype {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.protos.OfKind(proto.KindBase)
}

// BizComps returns the registered business-component prototypes, sorted by
// name.
func (w *Workspace) BizComps() []*proto.Prototype {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.protos.OfKind(proto.KindBiz)
}

// SetActiveFile points the active-file cursor at a registered file.
func (w *Workspace) SetActiveFile(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[name]; !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	w.activeFile = name
	return nil
}

// ActiveFile returns the active-file cursor, if set.
func (w *Workspace) ActiveFile() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeFile, w.activeFile != ""
}

// SetActiveRoute records the route the host is currently showing.
func (w *Workspace) SetActiveRoute(route string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activeRoute = route
}

// ActiveRoute returns the active route, if set.
func (w *Workspace) ActiveRoute() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeRoute, w.activeRoute != ""
}

// ActiveViewModule returns the structural tree of the active file when that
// file is a view.
func (w *Workspace) ActiveViewModule() (*source.ViewModule, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.activeFile == "" {
		return nil, false
	}
	f, ok := w.files[w.activeFile]
	if !ok {
		return nil, false
	}
	v, ok := f.View()
	return v, ok
}
