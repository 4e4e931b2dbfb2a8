package source

import (
	"fmt"
	"strings"
)

// Render prints the module back to source text. The output is deterministic
// and stable under no-op round trips: render(parse(render(m))) == render(m).
func (m *ViewModule) Render() string {
	var b strings.Builder
	for _, rec := range m.imports.Records() {
		renderImport(&b, rec)
	}
	if m.imports.Len() > 0 {
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "export default function %s() {\n  return (\n", m.component)
	renderNode(&b, m.root, 2)
	b.WriteString("  );\n}\n")
	return b.String()
}

func renderImport(b *strings.Builder, rec *ImportRecord) {
	var def, ns string
	var named []string
	for _, s := range rec.Specs {
		switch s.Style {
		case ImportDefault:
			def = s.Local
		case ImportNamespace:
			ns = s.Local
		case ImportNamed:
			if s.Local != "" && s.Local != s.Imported {
				named = append(named, s.Imported+" as "+s.Local)
			} else {
				named = append(named, s.Imported)
			}
		}
	}
	var parts []string
	if def != "" {
		parts = append(parts, def)
	}
	if ns != "" {
		parts = append(parts, "* as "+ns)
	}
	if len(named) > 0 {
		parts = append(parts, "{ "+strings.Join(named, ", ")+" }")
	}
	if len(parts) == 0 {
		fmt.Fprintf(b, "import '%s';\n", rec.Source)
		return
	}
	fmt.Fprintf(b, "import %s from '%s';\n", strings.Join(parts, ", "), rec.Source)
}

func renderNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.IsText() {
		b.WriteString(indent)
		if v, ok := n.Attr("value"); ok && v.Kind == ExprValue {
			b.WriteString("{" + v.Text + "}")
		} else {
			b.WriteString(escapeText(n.Text()))
		}
		b.WriteByte('\n')
		return
	}

	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(n.Component)
	for _, a := range n.attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		switch a.Value.Kind {
		case StringValue:
			b.WriteString(`="` + escapeAttr(a.Value.Text) + `"`)
		case ExprValue:
			b.WriteString("={" + a.Value.Text + "}")
		}
	}
	if len(n.children) == 0 {
		b.WriteString(" />\n")
		return
	}
	b.WriteString(">\n")
	for _, c := range n.children {
		renderNode(b, c, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("</" + n.Component + ">\n")
}

// JSX text may not contain <, > or braces; attribute literals may not
// contain the quote. Entity-escape on the way out, unescape on parse.
var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", "{", "&#123;", "}", "&#125;",
	)
	textUnescaper = strings.NewReplacer(
		"&lt;", "<", "&gt;", ">", "&#123;", "{", "&#125;", "}", "&quot;", `"`, "&amp;", "&",
	)
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

func escapeText(s string) string   { return textEscaper.Replace(s) }
func unescapeText(s string) string { return textUnescaper.Replace(s) }
func escapeAttr(s string) string   { return attrEscaper.Replace(s) }
