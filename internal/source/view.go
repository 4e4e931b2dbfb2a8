package source

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// PositionKind selects where an inserted node lands among its new siblings.
type PositionKind int

const (
	// PosAppend inserts after the last child.
	PosAppend PositionKind = iota
	// PosPrepend inserts before the first child.
	PosPrepend
	// PosBefore inserts immediately before the anchor sibling.
	PosBefore
	// PosAfter inserts immediately after the anchor sibling.
	PosAfter
)

// Position is an insertion point. Anchor is only meaningful for
// PosBefore/PosAfter.
type Position struct {
	Kind   PositionKind
	Anchor NodeID
}

// Append returns the append position.
func Append() Position { return Position{Kind: PosAppend} }

// Prepend returns the prepend position.
func Prepend() Position { return Position{Kind: PosPrepend} }

// Before returns a position immediately before the given sibling.
func Before(anchor NodeID) Position { return Position{Kind: PosBefore, Anchor: anchor} }

// After returns a position immediately after the given sibling.
func After(anchor NodeID) Position { return Position{Kind: PosAfter, Anchor: anchor} }

// ViewModule is the structural tree behind a view file: one root element,
// an import map, and an id-addressed node index. The tree is the source of
// truth; the owning File re-renders text after every successful mutation.
type ViewModule struct {
	component string // exported component name, derived from the filename
	root      *Node
	imports   *ImportMap
	nodes     map[NodeID]*Node
	live      *roaring.Bitmap // set of live ids, for cheap subtree checks
	nextID    uint32
}

// NewViewModule builds an empty module: a root element with no children.
func NewViewModule(component, rootComponent string) *ViewModule {
	m := &ViewModule{
		component: component,
		imports:   NewImportMap(),
		nodes:     make(map[NodeID]*Node),
		live:      roaring.New(),
	}
	m.root = m.newDetached(rootComponent, nil)
	m.register(m.root)
	return m
}

// Component returns the exported component name.
func (m *ViewModule) Component() string { return m.component }

// Root returns the root node.
func (m *ViewModule) Root() *Node { return m.root }

// Imports returns the module's import map.
func (m *ViewModule) Imports() *ImportMap { return m.imports }

// Size returns the number of live nodes.
func (m *ViewModule) Size() int { return len(m.nodes) }

// allocID hands out the next id. IDs are never reused, even when the
// mutation that consumed one fails.
func (m *ViewModule) allocID() NodeID {
	m.nextID++
	return NodeID(m.nextID)
}

// newDetached builds an unregistered node owned by this module.
func (m *ViewModule) newDetached(component string, attrs []Attr) *Node {
	return &Node{id: m.allocID(), Component: component, attrs: attrs}
}

// NewNode builds a detached node ready for insertion. It is not addressable
// via GetNode until an insert attaches it.
func (m *ViewModule) NewNode(component string, attrs ...Attr) *Node {
	return m.newDetached(component, attrs)
}

// NewTextNode builds a detached raw-text child.
func (m *ViewModule) NewTextNode(text string) *Node {
	return m.newDetached(TextComponent, []Attr{{Name: "value", Value: Str(text)}})
}

// register indexes a subtree as live.
func (m *ViewModule) register(n *Node) {
	n.walk(func(d *Node) {
		m.nodes[d.id] = d
		m.live.Add(uint32(d.id))
	})
}

// unregister drops a subtree from the index and returns the removed ids.
func (m *ViewModule) unregister(n *Node) []NodeID {
	var removed []NodeID
	n.walk(func(d *Node) {
		delete(m.nodes, d.id)
		m.live.Remove(uint32(d.id))
		removed = append(removed, d.id)
	})
	return removed
}

// GetNode resolves an id to its live node.
func (m *ViewModule) GetNode(id NodeID) (*Node, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNodeNotFound, id)
	}
	return n, nil
}

// Contains reports whether id names a live node.
func (m *ViewModule) Contains(id NodeID) bool {
	return m.live.Contains(uint32(id))
}

// InsertChild attaches a detached node under parentID at the given position.
// Text nodes cannot accept children. The operation is atomic: on failure the
// tree is unchanged (the detached node's id stays burned).
func (m *ViewModule) InsertChild(parentID NodeID, n *Node, pos Position) error {
	parent, err := m.GetNode(parentID)
	if err != nil {
		return err
	}
	if parent.IsText() {
		return fmt.Errorf("%w: text nodes cannot have children", ErrInvalidTarget)
	}
	if n == nil || n.parent != nil {
		return fmt.Errorf("%w: node must be detached", ErrInvalidTarget)
	}
	if m.nodes[n.id] != nil {
		return fmt.Errorf("%w: node %d is already attached", ErrInvalidTarget, n.id)
	}

	idx, err := m.resolveIndex(parent, pos)
	if err != nil {
		return err
	}

	parent.children = append(parent.children, nil)
	copy(parent.children[idx+1:], parent.children[idx:])
	parent.children[idx] = n
	n.parent = parent
	m.register(n)
	return nil
}

// resolveIndex turns a Position into a slice index into parent.children.
func (m *ViewModule) resolveIndex(parent *Node, pos Position) (int, error) {
	switch pos.Kind {
	case PosAppend:
		return len(parent.children), nil
	case PosPrepend:
		return 0, nil
	case PosBefore, PosAfter:
		anchor, err := m.GetNode(pos.Anchor)
		if err != nil {
			return 0, err
		}
		i := anchor.indexIn(parent)
		if i < 0 {
			return 0, fmt.Errorf("%w: anchor %d is not a child of %d", ErrInvalidTarget, pos.Anchor, parent.id)
		}
		if pos.Kind == PosAfter {
			i++
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: unknown position kind %d", ErrInvalidTarget, pos.Kind)
}

// CanInsert validates an insertion target without mutating anything:
// the parent must exist, accept children, and any anchor must be its child.
func (m *ViewModule) CanInsert(parentID NodeID, pos Position) error {
	parent, err := m.GetNode(parentID)
	if err != nil {
		return err
	}
	if parent.IsText() {
		return fmt.Errorf("%w: text nodes cannot have children", ErrInvalidTarget)
	}
	_, err = m.resolveIndex(parent, pos)
	return err
}

// MoveNode repositions a live subtree under a new parent, preserving every
// node id. Moving a node into its own subtree or moving the root fails with
// ErrInvalidTarget. The operation is atomic.
func (m *ViewModule) MoveNode(id, newParentID NodeID, pos Position) error {
	n, err := m.GetNode(id)
	if err != nil {
		return err
	}
	if n == m.root {
		return fmt.Errorf("%w: cannot move the root node", ErrInvalidTarget)
	}
	newParent, err := m.GetNode(newParentID)
	if err != nil {
		return err
	}
	if newParent.IsText() {
		return fmt.Errorf("%w: text nodes cannot have children", ErrInvalidTarget)
	}
	for p := newParent; p != nil; p = p.parent {
		if p == n {
			return fmt.Errorf("%w: cannot move node %d into its own subtree", ErrInvalidTarget, id)
		}
	}

	oldParent := n.parent
	oldIdx := n.indexIn(oldParent)

	// Resolve the target index against the tree with n still attached, then
	// adjust if the detach point precedes it within the same parent.
	idx, err := m.resolveIndex(newParent, pos)
	if err != nil {
		return err
	}
	oldParent.children = append(oldParent.children[:oldIdx], oldParent.children[oldIdx+1:]...)
	if newParent == oldParent && idx > oldIdx {
		idx--
	}
	newParent.children = append(newParent.children, nil)
	copy(newParent.children[idx+1:], newParent.children[idx:])
	newParent.children[idx] = n
	n.parent = newParent
	return nil
}

// RemoveNode detaches and destroys the subtree rooted at id.
// The root cannot be removed. Returns the destroyed ids so the orchestrator
// can invalidate selection/drag references.
func (m *ViewModule) RemoveNode(id NodeID) ([]NodeID, error) {
	n, err := m.GetNode(id)
	if err != nil {
		return nil, err
	}
	if n == m.root {
		return nil, fmt.Errorf("%w: cannot remove the root node", ErrInvalidTarget)
	}
	parent := n.parent
	i := n.indexIn(parent)
	parent.children = append(parent.children[:i], parent.children[i+1:]...)
	n.parent = nil
	return m.unregister(n), nil
}

// ReplaceNode swaps the subtree at id for a detached node, preserving the
// position among siblings. The replaced subtree is destroyed. Replacing the
// root is allowed. Returns the destroyed ids.
func (m *ViewModule) ReplaceNode(id NodeID, repl *Node) ([]NodeID, error) {
	old, err := m.GetNode(id)
	if err != nil {
		return nil, err
	}
	if repl == nil || repl.parent != nil || m.nodes[repl.id] != nil {
		return nil, fmt.Errorf("%w: replacement must be detached", ErrInvalidTarget)
	}
	if old == m.root {
		removed := m.unregister(old)
		m.root = repl
		m.register(repl)
		return removed, nil
	}
	parent := old.parent
	i := old.indexIn(parent)
	removed := m.unregister(old)
	old.parent = nil
	parent.children[i] = repl
	repl.parent = parent
	m.register(repl)
	return removed, nil
}

// UpdateAttribute sets (value != nil) or removes (value == nil) one attribute
// expression. relatedImports, if given, are registered first so the written
// expression's external references resolve; an import conflict aborts the
// whole operation with the attribute and the import map untouched.
func (m *ViewModule) UpdateAttribute(id NodeID, name string, value *Value, relatedImports ...ImportRecord) error {
	n, err := m.GetNode(id)
	if err != nil {
		return err
	}
	if len(relatedImports) > 0 {
		// Stage on a copy so a conflict in any record leaves the map intact.
		staged := m.imports.clone()
		for _, rec := range relatedImports {
			if err := staged.Add(rec.Source, rec.Specs...); err != nil {
				return err
			}
		}
		m.imports = staged
	}
	n.setAttr(name, value)
	return nil
}

// Clone deep-copies the subtree at id into a detached node with fresh ids.
func (m *ViewModule) Clone(id NodeID) (*Node, error) {
	n, err := m.GetNode(id)
	if err != nil {
		return nil, err
	}
	return m.cloneFresh(n), nil
}

func (m *ViewModule) cloneFresh(n *Node) *Node {
	cp := m.newDetached(n.Component, append([]Attr(nil), n.attrs...))
	for _, c := range n.children {
		cc := m.cloneFresh(c)
		cc.parent = cp
		cp.children = append(cp.children, cc)
	}
	return cp
}

// Materialize builds a detached subtree in this module from a
// module-independent spec, allocating fresh ids. Used for paste.
func (m *ViewModule) Materialize(spec *NodeSpec) *Node {
	n := m.newDetached(spec.Component, append([]Attr(nil), spec.Attrs...))
	for _, c := range spec.Children {
		cc := m.Materialize(c)
		cc.parent = n
		n.children = append(n.children, cc)
	}
	return n
}

// NodeSpec is a module-independent description of a subtree, used to carry
// copied nodes across files (clipboard, prototypes with preset children).
type NodeSpec struct {
	Component string
	Attrs     []Attr
	Children  []*NodeSpec
}

// Spec extracts a NodeSpec from a live subtree.
func Spec(n *Node) *NodeSpec {
	s := &NodeSpec{Component: n.Component, Attrs: append([]Attr(nil), n.attrs...)}
	for _, c := range n.children {
		s.Children = append(s.Children, Spec(c))
	}
	return s
}
