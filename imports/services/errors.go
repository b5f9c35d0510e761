package services

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"org-registry-backend/db/models"
)

// StorageError wraps a failure of the object store. When it occurs before any
// relational write the saga aborts without compensation.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for object %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ParseError indicates the uploaded file could not be read as CSV, or carried
// no data rows.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import file parse failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("import file parse failed: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransactionError indicates the relational transaction failed for a reason
// other than row validation: an injected fault, or a genuine begin/commit
// error.
type TransactionError struct {
	Reason string
	Err    error
}

func (e *TransactionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import transaction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("import transaction failed: %s", e.Reason)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// RootMessage walks the cause chain and returns the innermost error's
// message. This is the only error detail surfaced to callers.
func RootMessage(err error) string {
	if err == nil {
		return ""
	}
	root := err
	for {
		next := errors.Unwrap(root)
		if next == nil {
			return root.Error()
		}
		root = next
	}
}

// TruncateErrorMessage enforces the audit column limit: keep the first N
// bytes rather than rejecting the write. The cut never splits a rune, so the
// result stays valid UTF-8 for the database.
func TruncateErrorMessage(msg string) string {
	if len(msg) <= models.ErrorMessageMaxLen {
		return msg
	}
	cut := msg[:models.ErrorMessageMaxLen]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
