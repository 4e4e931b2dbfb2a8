package api

// EditScript is a batch of scripted edits applied against a workspace, used
// by CLI-driven and agent-driven callers.
type EditScript struct {
	Ops []EditOp `json:"ops"`
}

// EditOp is one scripted operation. Fields are interpreted per Op; unused
// fields are ignored.
type EditOp struct {
	// Op is one of: add-file, update-file, remove-file, rename-file,
	// rename-folder, insert, remove, set-attr, set-data, select, undo, redo.
	Op string `json:"op"`

	File    string `json:"file,omitempty"`
	NewName string `json:"new_name,omitempty"`
	Content string `json:"content,omitempty"`

	Parent    uint32 `json:"parent,omitempty"`
	Node      uint32 `json:"node,omitempty"`
	Component string `json:"component,omitempty"`
	Position  string `json:"position,omitempty"` // append | prepend | before | after
	Anchor    uint32 `json:"anchor,omitempty"`

	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
	Expr   bool   `json:"expr,omitempty"`
	Remove bool   `json:"remove,omitempty"`

	Path string `json:"path,omitempty"` // JSONPath, for set-data
}
