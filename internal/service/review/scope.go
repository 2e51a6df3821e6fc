package review

import (
	"fmt"

	"docportal/internal/domain"
	"docportal/internal/domain/models"
)

// DepartmentScope restricts which documents and users an admin may see or act
// on, derived from the admin's own profile. An admin with no department
// assignment sees nothing: nil means fail closed, never "sees everything".
type DepartmentScope struct {
	departmentID *string
}

// ScopeForAdmin derives the department scope from a profile. Archived
// accounts and non-admin roles are refused outright.
func ScopeForAdmin(p *models.Profile) (DepartmentScope, error) {
	if p.Archived {
		return DepartmentScope{}, &domain.ForbiddenError{Message: "account is archived"}
	}
	if p.Role != models.RoleAdmin {
		return DepartmentScope{}, &domain.ForbiddenError{
			Message: fmt.Sprintf("role %q may not review documents", p.Role),
		}
	}
	return DepartmentScope{departmentID: p.DepartmentID}, nil
}

// DepartmentID returns the scoped department, nil when the scope is empty.
func (s DepartmentScope) DepartmentID() *string {
	return s.departmentID
}

// Allows reports whether a row in the given department is visible to this
// scope. An empty scope allows nothing.
func (s DepartmentScope) Allows(departmentID string) bool {
	return s.departmentID != nil && *s.departmentID == departmentID
}

// Apply narrows a document filter to this scope. The second return value is
// false when the scope can see nothing at all, in which case the caller must
// return an empty result set without querying.
func (s DepartmentScope) Apply(filter models.DocumentFilter) (models.DocumentFilter, bool) {
	if s.departmentID == nil {
		return filter, false
	}
	filter.DepartmentID = s.departmentID
	return filter, true
}
