package source

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/RoaringBitmap/roaring"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ParseView parses view source text into a structural tree. The module name
// is derived from the filename. Node ids are assigned in document order
// starting at the root.
func ParseView(filename string, src []byte) (*ViewModule, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsx.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s at byte %d", ErrParse, filename, firstErrorByte(root))
	}

	m := &ViewModule{
		component: ComponentName(filename),
		imports:   NewImportMap(),
		nodes:     make(map[NodeID]*Node),
		live:      roaring.New(),
	}

	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		child := root.NamedChild(i)
		if child.Type() != "import_statement" {
			continue
		}
		if err := m.readImport(child, src); err != nil {
			return nil, err
		}
	}

	jsxRoot := findJSXRoot(root)
	if jsxRoot == nil {
		return nil, fmt.Errorf("%w: %s has no component tree", ErrParse, filename)
	}
	elem, err := m.readElement(jsxRoot, src)
	if err != nil {
		return nil, err
	}
	m.root = elem
	m.register(elem)
	return m, nil
}

// ValidateModule syntax-checks a plain TypeScript module (route table,
// store, service). Returns ErrParse on syntactically invalid input.
func ValidateModule(filename string, src []byte) error {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()
	if tree.RootNode().HasError() {
		return fmt.Errorf("%w: %s at byte %d", ErrParse, filename, firstErrorByte(tree.RootNode()))
	}
	return nil
}

// firstErrorByte descends into the subtree that carries the error flag and
// returns the start byte of the first ERROR or missing node.
func firstErrorByte(n *sitter.Node) uint32 {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n.StartByte()
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c != nil && c.HasError() {
			return firstErrorByte(c)
		}
	}
	return n.StartByte()
}

// findJSXRoot locates the first JSX element in the module, wherever the
// component function nests it.
func findJSXRoot(n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case "jsx_element", "jsx_self_closing_element":
		return n
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		if found := findJSXRoot(n.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

func (m *ViewModule) readImport(stmt *sitter.Node, src []byte) error {
	var source string
	var specs []Specifier

	count := int(stmt.NamedChildCount())
	for i := 0; i < count; i++ {
		child := stmt.NamedChild(i)
		switch child.Type() {
		case "string":
			source = stripQuotes(child.Content(src))
		case "import_clause":
			specs = append(specs, readImportClause(child, src)...)
		}
	}
	if source == "" {
		return fmt.Errorf("%w: import statement has no source", ErrParse)
	}
	if err := m.imports.Add(source, specs...); err != nil {
		return err
	}
	return nil
}

func readImportClause(clause *sitter.Node, src []byte) []Specifier {
	var specs []Specifier
	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			specs = append(specs, Specifier{Local: child.Content(src), Style: ImportDefault})
		case "namespace_import":
			inner := int(child.NamedChildCount())
			for j := 0; j < inner; j++ {
				if id := child.NamedChild(j); id.Type() == "identifier" {
					specs = append(specs, Specifier{Local: id.Content(src), Style: ImportNamespace})
				}
			}
		case "named_imports":
			inner := int(child.NamedChildCount())
			for j := 0; j < inner; j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				s := Specifier{Style: ImportNamed}
				if name := spec.ChildByFieldName("name"); name != nil {
					s.Imported = name.Content(src)
					s.Local = s.Imported
				}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					s.Local = alias.Content(src)
				}
				specs = append(specs, s)
			}
		}
	}
	return specs
}

// readElement converts a jsx_element or jsx_self_closing_element subtree
// into detached Nodes with ids assigned in document order.
func (m *ViewModule) readElement(el *sitter.Node, src []byte) (*Node, error) {
	var tag *sitter.Node
	var contentStart, contentEnd int

	switch el.Type() {
	case "jsx_self_closing_element":
		tag = el
	case "jsx_element":
		tag = el.NamedChild(0) // jsx_opening_element
		contentStart, contentEnd = 1, int(el.NamedChildCount())-1
	default:
		return nil, fmt.Errorf("%w: unexpected element %s", ErrParse, el.Type())
	}

	node := m.newDetached("", nil)
	count := int(tag.NamedChildCount())
	for i := 0; i < count; i++ {
		child := tag.NamedChild(i)
		switch child.Type() {
		case "identifier", "member_expression", "nested_identifier", "jsx_namespace_name":
			if node.Component == "" {
				node.Component = child.Content(src)
			}
		case "jsx_attribute":
			node.attrs = append(node.attrs, readAttribute(child, src))
		}
	}
	if node.Component == "" {
		return nil, fmt.Errorf("%w: element without a component name", ErrParse)
	}

	for i := contentStart; i < contentEnd; i++ {
		child := el.NamedChild(i)
		var kid *Node
		switch child.Type() {
		case "jsx_element", "jsx_self_closing_element":
			converted, err := m.readElement(child, src)
			if err != nil {
				return nil, err
			}
			kid = converted
		case "jsx_expression":
			expr := strings.TrimSpace(trimBraces(child.Content(src)))
			if expr == "" {
				continue
			}
			kid = m.newDetached(TextComponent, []Attr{{Name: "value", Value: Expr(expr)}})
		case "jsx_text":
			text := strings.TrimSpace(child.Content(src))
			if text == "" {
				continue
			}
			kid = m.newDetached(TextComponent, []Attr{{Name: "value", Value: Str(unescapeText(text))}})
		default:
			continue
		}
		kid.parent = node
		node.children = append(node.children, kid)
	}
	return node, nil
}

func readAttribute(attr *sitter.Node, src []byte) Attr {
	out := Attr{Value: Expr("true")} // bare attribute shorthand
	count := int(attr.NamedChildCount())
	for i := 0; i < count; i++ {
		child := attr.NamedChild(i)
		switch child.Type() {
		case "property_identifier":
			out.Name = child.Content(src)
		case "string":
			out.Value = Str(unescapeText(stripQuotes(child.Content(src))))
		case "jsx_expression":
			out.Value = Expr(strings.TrimSpace(trimBraces(child.Content(src))))
		}
	}
	return out
}

func stripQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}

func trimBraces(s string) string {
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1]
	}
	return s
}

// ComponentName derives the exported component identifier from a filename:
// "pages/home/index.tsx" -> "Home", "widgets/nav-bar.tsx" -> "NavBar".
func ComponentName(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	if base == "index" {
		if dir := path.Base(path.Dir(filename)); dir != "." && dir != "/" {
			base = dir
		}
	}
	var b strings.Builder
	upper := true
	for _, r := range base {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteByte('V')
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "View"
	}
	return b.String()
}
