package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/formwork/api"
)

// projectExts are the file extensions that belong to a project tree.
// Anything else under the root is ignored on import.
var projectExts = map[string]bool{
	".tsx":  true,
	".ts":   true,
	".json": true,
}

// ImportTree reads a project from a billy filesystem rooted at root and
// returns file configs keyed by slash-separated paths relative to root.
func ImportTree(fs billy.Filesystem, root string) ([]api.FileConfig, error) {
	var configs []api.FileConfig
	err := util.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !projectExts[filepath.Ext(path)] {
			return nil
		}
		data, err := util.ReadFile(fs, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)
		configs = append(configs, api.FileConfig{
			Filename: name,
			Content:  string(data),
			Kind:     api.KindForFilename(name),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Filename < configs[j].Filename })
	return configs, nil
}

// ExportTree writes a filename -> text mapping under root on a billy
// filesystem, creating directories as needed.
func ExportTree(fs billy.Filesystem, root string, files map[string]string) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.Contains(name, "..") {
			return fmt.Errorf("refusing to write outside root: %s", name)
		}
		target := filepath.Join(root, filepath.FromSlash(name))
		if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("mkdir for %s: %w", name, err)
		}
		if err := util.WriteFile(fs, target, []byte(files[name]), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
