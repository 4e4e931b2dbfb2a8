package source

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// DataDoc is the parsed form of a plain JSON data/config file. Values are
// addressed by JSONPath, matching how the data is consumed downstream.
type DataDoc struct {
	value any
}

// ParseData parses a JSON data file. Empty input yields an empty object.
func ParseData(filename string, src []byte) (*DataDoc, error) {
	if len(src) == 0 {
		return &DataDoc{value: map[string]any{}}, nil
	}
	v, err := oj.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, filename, err)
	}
	return &DataDoc{value: v}, nil
}

// Value returns the document root.
func (d *DataDoc) Value() any { return d.value }

// Sorted keys keep renders byte-comparable across runs.
var dataWriteOptions = oj.Options{Indent: 2, Sort: true}

// Render prints the document with stable two-space indentation.
func (d *DataDoc) Render() string {
	return oj.JSON(d.value, &dataWriteOptions) + "\n"
}

// Get evaluates a JSONPath against the document.
func (d *DataDoc) Get(pathExpr string) ([]any, error) {
	x, err := jp.ParseString(pathExpr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid path %q: %v", ErrInvalidTarget, pathExpr, err)
	}
	return x.Get(d.value), nil
}

// Set writes a value at a JSONPath, creating intermediate containers.
func (d *DataDoc) Set(pathExpr string, value any) error {
	x, err := jp.ParseString(pathExpr)
	if err != nil {
		return fmt.Errorf("%w: invalid path %q: %v", ErrInvalidTarget, pathExpr, err)
	}
	if err := x.Set(d.value, value); err != nil {
		return fmt.Errorf("set %q: %w", pathExpr, err)
	}
	return nil
}

// Delete removes all values matched by a JSONPath.
func (d *DataDoc) Delete(pathExpr string) error {
	x, err := jp.ParseString(pathExpr)
	if err != nil {
		return fmt.Errorf("%w: invalid path %q: %v", ErrInvalidTarget, pathExpr, err)
	}
	if err := x.Del(d.value); err != nil {
		return fmt.Errorf("delete %q: %w", pathExpr, err)
	}
	return nil
}

// clone deep-copies the document through a render/parse round trip.
func (d *DataDoc) clone() *DataDoc {
	v, err := oj.Parse([]byte(oj.JSON(d.value)))
	if err != nil {
		// A document that rendered cannot fail to re-parse.
		panic(fmt.Sprintf("data clone round trip: %v", err))
	}
	return &DataDoc{value: v}
}
