package types

import "errors"

// Statement-safety and sandbox errors. Both abort before any I/O.
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrPathOutsideRoot   = errors.New("path escapes the managed root")
)

// Project resolution errors.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectExists    = errors.New("project already exists")
	ErrDatabaseNotFound = errors.New("project database not found")
)

// Archive import errors. ErrStructuralImport covers archives with zero
// or more than one candidate database location.
var (
	ErrStructuralImport = errors.New("archive has no unambiguous project layout")
)

// Attachment validation errors.
var (
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrSourceOutsideUserArea = errors.New("source file outside user area")
)
