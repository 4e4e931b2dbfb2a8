// Package focus holds the transient interaction state: the selection and
// drag sources. Each is a single slot holding at most one (file, node)
// reference. Slots are never persisted and carry no knowledge of the file
// model; the workspace invalidates them when referenced nodes are destroyed.
package focus

import "github.com/agentic-research/formwork/internal/source"

// Ref points at one node in one file.
type Ref struct {
	File string
	Node source.NodeID
}

// Slot is a single-slot reference. The zero value is empty.
type Slot struct {
	ref *Ref
}

// Set replaces the current reference unconditionally.
func (s *Slot) Set(r Ref) { s.ref = &r }

// Get returns the current reference, if any.
func (s *Slot) Get() (Ref, bool) {
	if s.ref == nil {
		return Ref{}, false
	}
	return *s.ref, true
}

// Clear empties the slot. Idempotent.
func (s *Slot) Clear() { s.ref = nil }

// ClearIf empties the slot when the predicate matches the held reference.
// Reports whether the slot was cleared.
func (s *Slot) ClearIf(pred func(Ref) bool) bool {
	if s.ref != nil && pred(*s.ref) {
		s.ref = nil
		return true
	}
	return false
}
