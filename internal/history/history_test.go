package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/formwork/api"
	"github.com/agentic-research/formwork/internal/source"
)

func snap(t *testing.T, text string) *source.Snapshot {
	t.Helper()
	f, err := source.NewFile(api.FileConfig{Filename: "routes.ts", Content: text})
	require.NoError(t, err)
	return f.Snapshot()
}

func entry(t *testing.T, label, before, after string) *Entry {
	t.Helper()
	e := NewEntry(label)
	e.Before["routes.ts"] = snap(t, before)
	e.After["routes.ts"] = snap(t, after)
	return e
}

func TestLog_Empty(t *testing.T) {
	l := NewLog()
	assert.False(t, l.CanUndo())
	assert.False(t, l.CanRedo())

	_, err := l.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = l.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestLog_UndoRedoCycle(t *testing.T) {
	l := NewLog()
	l.Record(entry(t, "first", "export const a = 1;\n", "export const a = 2;\n"))
	l.Record(entry(t, "second", "export const a = 2;\n", "export const a = 3;\n"))
	require.Equal(t, 2, l.Len())

	e, err := l.Undo()
	require.NoError(t, err)
	assert.Equal(t, "second", e.Label)
	assert.True(t, l.CanUndo())
	assert.True(t, l.CanRedo())

	e, err = l.Undo()
	require.NoError(t, err)
	assert.Equal(t, "first", e.Label)
	assert.False(t, l.CanUndo())

	e, err = l.Redo()
	require.NoError(t, err)
	assert.Equal(t, "first", e.Label)
	e, err = l.Redo()
	require.NoError(t, err)
	assert.Equal(t, "second", e.Label)
	assert.False(t, l.CanRedo())
}

func TestLog_RecordDiscardsRedoTail(t *testing.T) {
	l := NewLog()
	l.Record(entry(t, "first", "a", "b"))
	l.Record(entry(t, "second", "b", "c"))

	_, err := l.Undo()
	require.NoError(t, err)
	l.Record(entry(t, "branch", "b", "d"))

	assert.Equal(t, 2, l.Len())
	assert.False(t, l.CanRedo(), "history never branches")

	e, err := l.Undo()
	require.NoError(t, err)
	assert.Equal(t, "branch", e.Label)
}

func TestLog_Coalescing(t *testing.T) {
	l := NewLog()

	e1 := entry(t, "set title", "a", "b")
	e1.CoalesceKey = "attr|home.tsx|2|title"
	l.Record(e1)

	e2 := entry(t, "set title", "b", "c")
	e2.CoalesceKey = "attr|home.tsx|2|title"
	l.Record(e2)

	require.Equal(t, 1, l.Len(), "same key inside the window merges")

	e, err := l.Undo()
	require.NoError(t, err)
	assert.Equal(t, e1.ID, e.ID)
	assert.Equal(t, e2.After, e.After, "merged entry keeps the latest After")
	assert.Equal(t, e1.Before, e.Before, "merged entry keeps the earliest Before")
}

func TestLog_CoalescingRespectsKeyAndWindow(t *testing.T) {
	t.Run("different keys", func(t *testing.T) {
		l := NewLog()
		e1 := entry(t, "set title", "a", "b")
		e1.CoalesceKey = "attr|home.tsx|2|title"
		e2 := entry(t, "set size", "b", "c")
		e2.CoalesceKey = "attr|home.tsx|2|size"
		l.Record(e1)
		l.Record(e2)
		assert.Equal(t, 2, l.Len())
	})

	t.Run("outside the window", func(t *testing.T) {
		l := NewLog()
		e1 := entry(t, "set title", "a", "b")
		e1.CoalesceKey = "attr|home.tsx|2|title"
		e1.At = time.Now().Add(-time.Second)
		e2 := entry(t, "set title", "b", "c")
		e2.CoalesceKey = "attr|home.tsx|2|title"
		l.Record(e1)
		l.Record(e2)
		assert.Equal(t, 2, l.Len())
	})

	t.Run("empty key never merges", func(t *testing.T) {
		l := NewLog()
		l.Record(entry(t, "one", "a", "b"))
		l.Record(entry(t, "two", "b", "c"))
		assert.Equal(t, 2, l.Len())
	})

	t.Run("zero window disables merging", func(t *testing.T) {
		l := NewLog()
		l.SetCoalesceWindow(0)
		e1 := entry(t, "set title", "a", "b")
		e1.CoalesceKey = "attr|home.tsx|2|title"
		e2 := entry(t, "set title", "b", "c")
		e2.CoalesceKey = "attr|home.tsx|2|title"
		l.Record(e1)
		l.Record(e2)
		assert.Equal(t, 2, l.Len())
	})
}

func TestLog_NoCoalesceAcrossUndo(t *testing.T) {
	l := NewLog()
	e1 := entry(t, "set title", "a", "b")
	e1.CoalesceKey = "attr|home.tsx|2|title"
	l.Record(e1)

	_, err := l.Undo()
	require.NoError(t, err)

	e2 := entry(t, "set title", "a", "c")
	e2.CoalesceKey = "attr|home.tsx|2|title"
	l.Record(e2)

	assert.Equal(t, 1, l.Len())
	e, err := l.Undo()
	require.NoError(t, err)
	assert.Equal(t, e2.ID, e.ID, "an undone entry is gone, not a merge target")
}

func TestNewEntry_DistinctIDs(t *testing.T) {
	a, b := NewEntry("a"), NewEntry("b")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
