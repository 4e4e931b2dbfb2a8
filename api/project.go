package api

import (
	"path"
	"strings"
)

// FileKind classifies a project file and selects the capability set the
// workspace exposes for it.
type FileKind string

const (
	// KindView is a component-tree source file backed by a structural tree.
	KindView FileKind = "view"
	// KindData is a plain JSON data/config file.
	KindData FileKind = "data"
	// KindRoute is the route table module.
	KindRoute FileKind = "route"
	// KindStore is a state store module.
	KindStore FileKind = "store"
	// KindService is a service (API wrapper) module.
	KindService FileKind = "service"
)

// FileConfig is the canonical import/export unit at the persistence boundary.
// Storage and packaging layers exchange plain filename -> text mappings and
// nothing else.
type FileConfig struct {
	Filename string   `json:"filename"`
	Content  string   `json:"content"`
	Kind     FileKind `json:"kind,omitempty"`
}

// KindForFilename infers a file kind from its path.
// Convention mirrors the generated project layout: views are .tsx files,
// data/config is .json, and .ts modules are classified by their directory.
func KindForFilename(name string) FileKind {
	switch path.Ext(name) {
	case ".tsx":
		return KindView
	case ".json":
		return KindData
	case ".ts":
		switch {
		case strings.HasPrefix(name, "routes/") || path.Base(name) == "routes.ts":
			return KindRoute
		case strings.HasPrefix(name, "stores/"):
			return KindStore
		case strings.HasPrefix(name, "services/"):
			return KindService
		}
		return KindService
	}
	return KindData
}
