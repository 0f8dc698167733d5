package analysis

import "errors"

// ErrNotFound indicates a load/delete/export referencing an unknown id.
var ErrNotFound = errors.New("analysis not found")

// ErrInvalidImport indicates an imported document missing required fields
// or with a malformed structure. Nothing is stored when it is returned.
var ErrInvalidImport = errors.New("invalid analysis file format")
