package source

import "fmt"

// ImportStyle is how a symbol is bound from its source module.
type ImportStyle int

const (
	// ImportDefault binds the module's default export.
	ImportDefault ImportStyle = iota
	// ImportNamed binds one named export, optionally under an alias.
	ImportNamed
	// ImportNamespace binds the whole module under one name.
	ImportNamespace
)

func (s ImportStyle) String() string {
	switch s {
	case ImportDefault:
		return "default"
	case ImportNamed:
		return "named"
	case ImportNamespace:
		return "namespace"
	}
	return fmt.Sprintf("ImportStyle(%d)", int(s))
}

// Specifier is one symbol binding within an import statement.
// For default and namespace imports, Imported is empty.
type Specifier struct {
	Imported string
	Local    string
	Style    ImportStyle
}

// ImportRecord is one import statement: a source module plus its bindings,
// in document order.
type ImportRecord struct {
	Source string
	Specs  []Specifier
}

// ImportMap records, per file, which external module every referenced symbol
// comes from. Records render in insertion order so the map round-trips
// through parse/render unchanged.
type ImportMap struct {
	records  []*ImportRecord
	bySource map[string]*ImportRecord
	byLocal  map[string]localBinding
}

type localBinding struct {
	source string
	spec   Specifier
}

// NewImportMap returns an empty import map.
func NewImportMap() *ImportMap {
	return &ImportMap{
		bySource: make(map[string]*ImportRecord),
		byLocal:  make(map[string]localBinding),
	}
}

// Len returns the number of import records.
func (m *ImportMap) Len() int { return len(m.records) }

// Records returns the import statements in render order. The slice is
// shared; callers must not mutate it.
func (m *ImportMap) Records() []*ImportRecord { return m.records }

// Lookup resolves a local name to its source module and specifier.
func (m *ImportMap) Lookup(local string) (string, Specifier, bool) {
	b, ok := m.byLocal[local]
	return b.source, b.spec, ok
}

// Add registers specifiers for a source module. Re-adding an identical
// specifier is a no-op; a specifier whose local name is already bound to a
// different symbol fails with ErrImportConflict. On failure nothing is added.
func (m *ImportMap) Add(sourceModule string, specs ...Specifier) error {
	// Validate everything before touching state, including locals claimed
	// earlier in this same call.
	claimed := make(map[string]Specifier, len(specs))
	for _, s := range specs {
		local := s.Local
		if local == "" {
			local = s.Imported
		}
		if local == "" {
			return fmt.Errorf("%w: specifier for %q has no local name", ErrImportConflict, sourceModule)
		}
		if prev, ok := claimed[local]; ok && !sameBinding(prev, s) {
			return fmt.Errorf("%w: %q bound twice in one import", ErrImportConflict, local)
		}
		claimed[local] = s
		if b, ok := m.byLocal[local]; ok {
			if b.source != sourceModule || !sameBinding(b.spec, s) {
				return fmt.Errorf("%w: %q already imported from %q", ErrImportConflict, local, b.source)
			}
		}
	}

	rec := m.bySource[sourceModule]
	for _, s := range specs {
		if s.Local == "" {
			s.Local = s.Imported
		}
		if _, ok := m.byLocal[s.Local]; ok {
			continue // identical binding already present
		}
		if rec == nil {
			rec = &ImportRecord{Source: sourceModule}
			m.records = append(m.records, rec)
			m.bySource[sourceModule] = rec
		}
		rec.Specs = append(rec.Specs, s)
		m.byLocal[s.Local] = localBinding{source: sourceModule, spec: s}
	}
	return nil
}

// sameBinding reports whether two specifiers bind the same symbol the same way.
func sameBinding(a, b Specifier) bool {
	if a.Style != b.Style {
		return false
	}
	ai, bi := a.Imported, b.Imported
	return ai == bi
}

// clone returns a deep copy, used by snapshots.
func (m *ImportMap) clone() *ImportMap {
	out := NewImportMap()
	for _, rec := range m.records {
		cp := &ImportRecord{Source: rec.Source, Specs: append([]Specifier(nil), rec.Specs...)}
		out.records = append(out.records, cp)
		out.bySource[cp.Source] = cp
		for _, s := range cp.Specs {
			local := s.Local
			if local == "" {
				local = s.Imported
			}
			out.byLocal[local] = localBinding{source: cp.Source, spec: s}
		}
	}
	return out
}
