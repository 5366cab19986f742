package guestimport

import (
	"errors"
	"fmt"
)

// ErrTenantMissing is returned when an import is attempted without an
// active couple. Nothing is parsed or persisted in that case.
var ErrTenantMissing = errors.New("no active couple selected")

// ErrImportNotFound is returned when looking up an import run that never
// existed or has already been cleaned up.
var ErrImportNotFound = errors.New("import not found")

// FormatError reports an unreadable or structurally unparseable file.
// The preview is never partially populated when one is returned.
type FormatError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *FormatError) Error() string {
	if e.FileName != "" {
		return fmt.Sprintf("cannot read %s: %s", e.FileName, e.Reason)
	}
	return fmt.Sprintf("cannot read file: %s", e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError blocks an import whose rows failed validation. The user
// recovers by correcting the source file and importing again.
type ValidationError struct {
	Result ImportValidationResult
}

func (e *ValidationError) Error() string {
	n := len(e.Result.Errors)
	if n == 1 {
		return "import blocked: 1 invalid row"
	}
	return fmt.Sprintf("import blocked: %d invalid rows", n)
}

// RepositoryError wraps a store failure during reconciliation. Mutations
// already applied before the failure are not rolled back.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("guest store %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }
