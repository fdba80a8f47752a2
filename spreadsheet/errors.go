package spreadsheet

import "errors"

// Edit-time errors. They abort the edit synchronously and leave the
// grid unchanged. Evaluation-time failures are Value errors, never Go
// errors.
var (
	ErrInvalidPosition    = errors.New("invalid position")
	ErrFormulaSyntax      = errors.New("formula is syntactically incorrect")
	ErrCircularDependency = errors.New("circular dependency detected")
)
