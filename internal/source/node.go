package source

// NodeID identifies a node within its owning view module. IDs are assigned
// from a per-module monotonic counter and are never reused, so an ID held
// across edits either still names the same node or names nothing.
type NodeID uint32

// TextComponent is the pseudo-component for raw text children
// (e.g. the "Hi" in <Button>Hi</Button>).
const TextComponent = "#text"

// ValueKind discriminates how an attribute value is written back to source.
type ValueKind int

const (
	// StringValue renders as name="literal".
	StringValue ValueKind = iota
	// ExprValue renders as name={expression}.
	ExprValue
)

// Value is a single attribute value expression.
type Value struct {
	Kind ValueKind
	Text string
}

// Str builds a string-literal attribute value.
func Str(s string) Value { return Value{Kind: StringValue, Text: s} }

// Expr builds a raw-expression attribute value.
func Expr(s string) Value { return Value{Kind: ExprValue, Text: s} }

// Attr is one attribute of a node, in document order.
type Attr struct {
	Name  string
	Value Value
}

// Node is an addressable element of a view module's tree. A node is
// exclusively owned by the module that created it and never outlives it.
type Node struct {
	id        NodeID
	Component string
	attrs     []Attr
	children  []*Node
	parent    *Node
}

// ID returns the node's stable identifier.
func (n *Node) ID() NodeID { return n.id }

// Parent returns the node's parent, or nil for the root and detached nodes.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in order. The slice is shared;
// callers must not mutate it.
func (n *Node) Children() []*Node { return n.children }

// Attrs returns the node's attributes in document order. The slice is
// shared; callers must not mutate it.
func (n *Node) Attrs() []Attr { return n.attrs }

// Attr returns the named attribute value.
func (n *Node) Attr(name string) (Value, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// IsText reports whether the node is a raw text child.
func (n *Node) IsText() bool { return n.Component == TextComponent }

// Text returns the content of a text node.
func (n *Node) Text() string {
	if v, ok := n.Attr("value"); ok {
		return v.Text
	}
	return ""
}

// setAttr sets or removes (value == nil) an attribute in place, preserving
// the position of an existing attribute among its siblings.
func (n *Node) setAttr(name string, value *Value) {
	for i, a := range n.attrs {
		if a.Name == name {
			if value == nil {
				n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			} else {
				n.attrs[i].Value = *value
			}
			return
		}
	}
	if value != nil {
		n.attrs = append(n.attrs, Attr{Name: name, Value: *value})
	}
}

// indexIn returns the node's index among parent's children, or -1.
func (n *Node) indexIn(parent *Node) int {
	for i, c := range parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// walk visits n and every descendant in document order.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}
