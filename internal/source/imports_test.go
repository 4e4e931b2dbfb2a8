package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportMap_AddAndLookup(t *testing.T) {
	m := NewImportMap()
	require.NoError(t, m.Add("antd",
		Specifier{Imported: "Button", Style: ImportNamed},
		Specifier{Imported: "Input", Style: ImportNamed},
	))
	require.NoError(t, m.Add("react", Specifier{Local: "React", Style: ImportDefault}))

	src, spec, ok := m.Lookup("Button")
	require.True(t, ok)
	assert.Equal(t, "antd", src)
	assert.Equal(t, "Button", spec.Imported)

	src, _, ok = m.Lookup("React")
	require.True(t, ok)
	assert.Equal(t, "react", src)

	_, _, ok = m.Lookup("Table")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestImportMap_IdempotentAdd(t *testing.T) {
	m := NewImportMap()
	spec := Specifier{Imported: "Button", Style: ImportNamed}
	require.NoError(t, m.Add("antd", spec))
	require.NoError(t, m.Add("antd", spec))
	require.NoError(t, m.Add("antd", spec))

	require.Equal(t, 1, m.Len())
	assert.Len(t, m.Records()[0].Specs, 1)
}

func TestImportMap_Conflicts(t *testing.T) {
	m := NewImportMap()
	require.NoError(t, m.Add("antd", Specifier{Imported: "Button", Style: ImportNamed}))

	t.Run("same local from another module", func(t *testing.T) {
		err := m.Add("./local", Specifier{Imported: "Button", Style: ImportNamed})
		assert.ErrorIs(t, err, ErrImportConflict)
	})
	t.Run("same local different symbol", func(t *testing.T) {
		err := m.Add("antd", Specifier{Imported: "IconButton", Local: "Button", Style: ImportNamed})
		assert.ErrorIs(t, err, ErrImportConflict)
	})
	t.Run("no local name", func(t *testing.T) {
		err := m.Add("antd", Specifier{Style: ImportDefault})
		assert.ErrorIs(t, err, ErrImportConflict)
	})
}

func TestImportMap_DuplicateLocalWithinOneAdd(t *testing.T) {
	m := NewImportMap()
	err := m.Add("antd",
		Specifier{Imported: "Button", Local: "B", Style: ImportNamed},
		Specifier{Imported: "Badge", Local: "B", Style: ImportNamed},
	)
	require.ErrorIs(t, err, ErrImportConflict)

	_, _, ok := m.Lookup("B")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())

	// Repeating an identical binding inside one call is still a no-op.
	require.NoError(t, m.Add("antd",
		Specifier{Imported: "Button", Local: "B", Style: ImportNamed},
		Specifier{Imported: "Button", Local: "B", Style: ImportNamed},
	))
	assert.Len(t, m.Records()[0].Specs, 1)
}

func TestImportMap_ConflictAddsNothing(t *testing.T) {
	m := NewImportMap()
	require.NoError(t, m.Add("antd", Specifier{Imported: "Button", Style: ImportNamed}))

	// Table is new, Button conflicts: the whole batch must be rejected.
	err := m.Add("./local",
		Specifier{Imported: "Table", Style: ImportNamed},
		Specifier{Imported: "Button", Style: ImportNamed},
	)
	require.ErrorIs(t, err, ErrImportConflict)

	_, _, ok := m.Lookup("Table")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestImportMap_RecordsKeepInsertionOrder(t *testing.T) {
	m := NewImportMap()
	require.NoError(t, m.Add("zlib", Specifier{Local: "z", Style: ImportDefault}))
	require.NoError(t, m.Add("antd", Specifier{Imported: "Button", Style: ImportNamed}))
	require.NoError(t, m.Add("zlib", Specifier{Local: "ns", Style: ImportNamespace}))

	var sources []string
	for _, rec := range m.Records() {
		sources = append(sources, rec.Source)
	}
	assert.Equal(t, []string{"zlib", "antd"}, sources)
	assert.Len(t, m.Records()[0].Specs, 2)
}

func TestImportMap_CloneIsIndependent(t *testing.T) {
	m := NewImportMap()
	require.NoError(t, m.Add("antd", Specifier{Imported: "Button", Style: ImportNamed}))

	cp := m.clone()
	require.NoError(t, m.Add("react", Specifier{Local: "React", Style: ImportDefault}))

	assert.Equal(t, 1, cp.Len())
	_, _, ok := cp.Lookup("React")
	assert.False(t, ok)
	_, _, ok = cp.Lookup("Button")
	assert.True(t, ok)
}
