package proto

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/agentic-research/formwork/internal/source"
)

// Catalog files declare prototypes in HCL:
//
//	component "Button" {
//	  title            = "Button"
//	  kind             = "base"
//	  accepts_children = false
//
//	  import {
//	    source = "antd"
//	    style  = "named"
//	  }
//
//	  prop "text" {
//	    type    = "string"
//	    default = "Button"
//	    group   = "basic"
//	  }
//	}
type catalogFile struct {
	Components []*componentBlock `hcl:"component,block"`
}

type componentBlock struct {
	Name            string       `hcl:"name,label"`
	Title           string       `hcl:"title,optional"`
	Kind            string       `hcl:"kind,optional"`
	AcceptsChildren bool         `hcl:"accepts_children,optional"`
	Import          *importBlock `hcl:"import,block"`
	Props           []*propBlock `hcl:"prop,block"`
}

type importBlock struct {
	Source string `hcl:"source"`
	Style  string `hcl:"style,optional"`
	Name   string `hcl:"name,optional"`
}

type propBlock struct {
	Name    string `hcl:"name,label"`
	Type    string `hcl:"type"`
	Default string `hcl:"default,optional"`
	Group   string `hcl:"group,optional"`
}

// LoadCatalog parses one HCL catalog file into prototypes.
func LoadCatalog(path string) (map[string]*Prototype, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse catalog %s: %w", path, diags)
	}
	var decoded catalogFile
	if diags := gohcl.DecodeBody(file.Body, nil, &decoded); diags.HasErrors() {
		return nil, fmt.Errorf("decode catalog %s: %w", path, diags)
	}
	return buildCatalog(&decoded)
}

// LoadCatalogSource parses catalog HCL from memory; filename is only used
// in diagnostics.
func LoadCatalogSource(filename string, src []byte) (map[string]*Prototype, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse catalog %s: %w", filename, diags)
	}
	var decoded catalogFile
	if diags := gohcl.DecodeBody(file.Body, nil, &decoded); diags.HasErrors() {
		return nil, fmt.Errorf("decode catalog %s: %w", filename, diags)
	}
	return buildCatalog(&decoded)
}

func buildCatalog(decoded *catalogFile) (map[string]*Prototype, error) {
	out := make(map[string]*Prototype, len(decoded.Components))
	for _, c := range decoded.Components {
		if _, dup := out[c.Name]; dup {
			return nil, fmt.Errorf("duplicate component %q in catalog", c.Name)
		}
		p := &Prototype{
			Name:            c.Name,
			Title:           c.Title,
			Kind:            Kind(c.Kind),
			AcceptsChildren: c.AcceptsChildren,
		}
		if p.Title == "" {
			p.Title = c.Name
		}
		if p.Kind == "" {
			p.Kind = KindBase
		}
		if c.Import != nil {
			style, err := parseStyle(c.Import.Style)
			if err != nil {
				return nil, fmt.Errorf("component %q: %w", c.Name, err)
			}
			p.Import = &ImportRef{Source: c.Import.Source, Style: style, Name: c.Import.Name}
		}
		for _, prop := range c.Props {
			p.Props = append(p.Props, PropSchema{
				Name:    prop.Name,
				Type:    prop.Type,
				Default: prop.Default,
				Group:   prop.Group,
			})
		}
		out[c.Name] = p
	}
	return out, nil
}

func parseStyle(s string) (source.ImportStyle, error) {
	switch s {
	case "", "named":
		return source.ImportNamed, nil
	case "default":
		return source.ImportDefault, nil
	case "namespace":
		return source.ImportNamespace, nil
	}
	return 0, fmt.Errorf("unknown import style %q", s)
}
