package source

import "errors"

var (
	// ErrParse means the source text is syntactically invalid. The file's
	// previous tree is left untouched.
	ErrParse = errors.New("source is not parseable")

	// ErrNodeNotFound means the node id does not exist in the file's tree.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidTarget means the mutation is structurally disallowed,
	// e.g. inserting relative to an anchor that is not a sibling, or
	// removing the root node.
	ErrInvalidTarget = errors.New("invalid mutation target")

	// ErrImportConflict means an import specifier would rebind a local
	// name that already resolves to a different symbol.
	ErrImportConflict = errors.New("import alias conflict")
)
