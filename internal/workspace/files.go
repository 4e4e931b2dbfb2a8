package workspace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentic-research/formwork/api"
	"github.com/agentic-research/formwork/internal/source"
)

// AddFile registers a new file. Fails with ErrNameConflict when the name is
// taken and with ErrParse when the content does not parse.
func (w *Workspace) AddFile(cfg api.FileConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addFiles("add file", []api.FileConfig{cfg})
}

// AddFiles is the canonical bulk import at the persistence boundary. The
// whole batch lands as one history entry; any invalid file fails the batch
// before anything is registered.
func (w *Workspace) AddFiles(configs []api.FileConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addFiles("add files", configs)
}

func (w *Workspace) addFiles(label string, configs []api.FileConfig) error {
	seen := make(map[string]bool, len(configs))
	parsed := make([]*source.File, 0, len(configs))
	for _, cfg := range configs {
		if _, exists := w.files[cfg.Filename]; exists || seen[cfg.Filename] {
			return fmt.Errorf("%w: %s", ErrNameConflict, cfg.Filename)
		}
		seen[cfg.Filename] = true
		f, err := source.NewFile(cfg)
		if err != nil {
			return err
		}
		parsed = append(parsed, f)
	}

	t := w.begin(label)
	for _, f := range parsed {
		t.touch(f.Name())
		w.files[f.Name()] = f
	}
	t.commit()
	return nil
}

// RemoveFile destroys a file and every node it owns.
func (w *Workspace) RemoveFile(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[name]; !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	t := w.begin("remove file")
	t.touch(name)
	delete(w.files, name)
	t.commit()
	return nil
}

// RenameFile moves a file under a new key, preserving tree contents and
// node ids. Rename is destroy-and-recreate: the old key disappears from the
// registry in the same history entry that introduces the new one.
func (w *Workspace) RenameFile(oldName, newName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renameFiles("rename file", map[string]string{oldName: newName})
}

// RenameFolder rewrites every filename sharing the old path prefix. The
// rename is all-or-nothing: if any target name already exists, nothing
// changes and the call fails with ErrNameConflict.
func (w *Workspace) RenameFolder(oldPrefix, newPrefix string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	oldPrefix = strings.TrimSuffix(oldPrefix, "/") + "/"
	newPrefix = strings.TrimSuffix(newPrefix, "/") + "/"

	renames := make(map[string]string)
	for name := range w.files {
		if strings.HasPrefix(name, oldPrefix) {
			renames[name] = newPrefix + strings.TrimPrefix(name, oldPrefix)
		}
	}
	if len(renames) == 0 {
		return fmt.Errorf("%w: no files under %s", ErrFileNotFound, oldPrefix)
	}
	return w.renameFiles("rename folder", renames)
}

// renameFiles applies a rename set atomically. Every target must be free.
func (w *Workspace) renameFiles(label string, renames map[string]string) error {
	for oldName, newName := range renames {
		if _, ok := w.files[oldName]; !ok {
			return fmt.Errorf("%w: %s", ErrFileNotFound, oldName)
		}
		if oldName == newName {
			return fmt.Errorf("%w: %s", ErrNameConflict, newName)
		}
		if _, taken := w.files[newName]; taken {
			if _, alsoMoving := renames[newName]; !alsoMoving {
				return fmt.Errorf("%w: %s", ErrNameConflict, newName)
			}
		}
	}

	t := w.begin(label)
	moved := make(map[string]*source.File, len(renames))
	for oldName, newName := range renames {
		t.touch(oldName)
		t.touch(newName)
		moved[newName] = w.files[oldName].Renamed(newName)
		delete(w.files, oldName)
	}
	for newName, f := range moved {
		w.files[newName] = f
	}
	if newName, ok := renames[w.activeFile]; ok {
		w.activeFile = newName
	}
	t.commit()
	return nil
}

// UpdateFile replaces a file's content wholesale, forcing a re-parse. On
// parse failure the previous tree and text are retained.
func (w *Workspace) UpdateFile(name, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	t := w.begin("update file")
	t.touch(name)
	if err := f.SetText(text); err != nil {
		return err
	}
	t.commit()
	return nil
}

// GetFile returns a registered file.
func (w *Workspace) GetFile(name string) (*source.File, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return f, nil
}

// ListFiles is the canonical export at the persistence boundary: the
// current filename -> text mapping.
func (w *Workspace) ListFiles() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.files))
	for name, f := range w.files {
		out[name] = f.Text()
	}
	return out
}

// Filenames returns the registered names, sorted.
func (w *Workspace) Filenames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.files))
	for name := range w.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
