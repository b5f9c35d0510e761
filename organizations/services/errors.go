package services

import (
	"fmt"

	"org-registry-backend/db/models"
)

// ValidationError is a field-level rejection. Field names the offending
// input column/attribute so the failure message pinpoints it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// UniqueConstraintError is a business-key collision: an organization with the
// same (name, type) already exists.
type UniqueConstraintError struct {
	Name string
	Type models.OrganizationType
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("organization with name='%s' and type='%s' already exists", e.Name, e.Type)
}
