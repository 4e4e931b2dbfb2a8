package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlot_ZeroValueEmpty(t *testing.T) {
	var s Slot
	_, ok := s.Get()
	assert.False(t, ok)
}

func TestSlot_SetGetClear(t *testing.T) {
	var s Slot
	s.Set(Ref{File: "pages/home/index.tsx", Node: 3})

	r, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, Ref{File: "pages/home/index.tsx", Node: 3}, r)

	s.Set(Ref{File: "pages/home/index.tsx", Node: 7})
	r, _ = s.Get()
	assert.Equal(t, Ref{File: "pages/home/index.tsx", Node: 7}, r)

	s.Clear()
	_, ok = s.Get()
	assert.False(t, ok)
	s.Clear() // idempotent
}

func TestSlot_ClearIf(t *testing.T) {
	var s Slot
	s.Set(Ref{File: "a.tsx", Node: 1})

	cleared := s.ClearIf(func(r Ref) bool { return r.File == "b.tsx" })
	assert.False(t, cleared)
	_, ok := s.Get()
	assert.True(t, ok)

	cleared = s.ClearIf(func(r Ref) bool { return r.File == "a.tsx" })
	assert.True(t, cleared)
	_, ok = s.Get()
	assert.False(t, ok)

	assert.False(t, s.ClearIf(func(Ref) bool { return true }), "empty slot never clears")
}
