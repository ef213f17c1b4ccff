package policy

import (
	"fmt"

	apperrors "casedesk/internal/errors"
	"casedesk/internal/model"
)

// Operation names a guarded action of the case desk.
type Operation string

const (
	OpCreateCase       Operation = "case.create"
	OpListOwnCases     Operation = "case.list_own"
	OpListTechCases    Operation = "case.list_tech"
	OpUpdateResolution Operation = "case.update_resolution"
	OpListAllCases     Operation = "case.list_all"
	OpListCaseLogs     Operation = "case.list_logs"
	OpExportCases      Operation = "case.export"
	OpCreateUser       Operation = "user.create"
)

var capabilities = map[Operation][]model.Role{
	OpCreateCase:       {model.RoleAgent},
	OpListOwnCases:     {model.RoleAgent},
	OpListTechCases:    {model.RoleTech},
	OpUpdateResolution: {model.RoleTech},
	OpListAllCases:     {model.RoleAdmin},
	OpListCaseLogs:     {model.RoleAdmin},
	OpExportCases:      {model.RoleAdmin, model.RoleTech, model.RoleAgent},
	OpCreateUser:       {model.RoleAdmin},
}

// Allowed reports whether role may perform op. Unknown operations are denied.
func Allowed(op Operation, role model.Role) bool {
	for _, r := range capabilities[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize returns a Forbidden error when role may not perform op.
func Authorize(op Operation, role model.Role) error {
	if !Allowed(op, role) {
		return fmt.Errorf("%w: %s cannot %s", apperrors.ErrForbidden, role, op)
	}
	return nil
}
