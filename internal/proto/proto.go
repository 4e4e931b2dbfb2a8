// Package proto holds the component prototype catalog: the externally
// supplied schema of available building blocks and their configurable
// properties. The core only resolves against this catalog; it never defines
// prototypes itself.
package proto

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agentic-research/formwork/internal/source"
)

var ErrUnknownComponent = errors.New("unknown component")

// Kind groups prototypes for the palette views.
type Kind string

const (
	// KindBase is a stock component from the base component library.
	KindBase Kind = "base"
	// KindBiz is a packaged business component.
	KindBiz Kind = "biz"
	// KindLocal is a component defined inside the project itself.
	KindLocal Kind = "local"
)

// PropGetter derives a live property value from current form/model state.
// Supplied by the consuming editor layer; nil for static schemas.
type PropGetter func(state any) any

// PropSchema describes one configurable property.
type PropSchema struct {
	Name    string
	Type    string
	Default string
	Group   string
	Getter  PropGetter
}

// ImportRef tells the workspace which import to register when a node of
// this prototype is inserted into a view. Name is the exported symbol; it
// defaults to the prototype name for named imports.
type ImportRef struct {
	Source string
	Style  source.ImportStyle
	Name   string
}

// Specifier converts the reference into an import specifier for the given
// component name.
func (r *ImportRef) Specifier(component string) source.Specifier {
	switch r.Style {
	case source.ImportDefault, source.ImportNamespace:
		return source.Specifier{Local: component, Style: r.Style}
	default:
		imported := r.Name
		if imported == "" {
			imported = component
		}
		return source.Specifier{Imported: imported, Local: component, Style: source.ImportNamed}
	}
}

// Prototype is the schema of one available component.
type Prototype struct {
	Name            string
	Title           string
	Kind            Kind
	AcceptsChildren bool
	Import          *ImportRef
	Props           []PropSchema
}

// DefaultAttrs returns the attributes a freshly inserted node starts with:
// every prop with a non-empty default.
func (p *Prototype) DefaultAttrs() []source.Attr {
	var attrs []source.Attr
	for _, prop := range p.Props {
		if prop.Default == "" {
			continue
		}
		attrs = append(attrs, source.Attr{Name: prop.Name, Value: source.Str(prop.Default)})
	}
	return attrs
}

// Registry is the catalog of registered prototypes, keyed by component name.
type Registry struct {
	m map[string]*Prototype
}

// NewRegistry returns an empty catalog.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]*Prototype)}
}

// Register adds or replaces a prototype.
func (r *Registry) Register(p *Prototype) { r.m[p.Name] = p }

// SetAll replaces the whole catalog.
func (r *Registry) SetAll(protos map[string]*Prototype) {
	r.m = make(map[string]*Prototype, len(protos))
	for name, p := range protos {
		r.m[name] = p
	}
}

// Resolve looks up a prototype by component name.
func (r *Registry) Resolve(name string) (*Prototype, error) {
	p, ok := r.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	return p, nil
}

// Lookup is Resolve without the error wrap.
func (r *Registry) Lookup(name string) (*Prototype, bool) {
	p, ok := r.m[name]
	return p, ok
}

// OfKind returns the registered prototypes of one kind, sorted by name.
func (r *Registry) OfKind(kind Kind) []*Prototype {
	var out []*Prototype
	for _, p := range r.m {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Ref names a prototype either by component name or by value. A single
// explicit match in Resolve replaces runtime type probing.
type Ref struct {
	name  string
	proto *Prototype
}

// ByName builds a reference resolved against the registry.
func ByName(name string) Ref { return Ref{name: name} }

// ByValue builds a pass-through reference.
func ByValue(p *Prototype) Ref { return Ref{proto: p} }

// Resolve returns the referenced prototype. By-name references fail with
// ErrUnknownComponent when unregistered; by-value references pass through.
func (ref Ref) Resolve(r *Registry) (*Prototype, error) {
	switch {
	case ref.proto != nil:
		return ref.proto, nil
	case ref.name != "":
		return r.Resolve(ref.name)
	}
	return nil, fmt.Errorf("%w: empty reference", ErrUnknownComponent)
}
