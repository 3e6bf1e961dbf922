// Package roles stores roles and the binding of each employee to one role.
package roles

import (
	"context"
)

type Repository interface {
	// EnsureRole returns the id of the role named name, creating it if needed.
	EnsureRole(ctx context.Context, name string) (int64, error)
	// BindEmployee assigns roleID to employeeID, replacing any previous role.
	BindEmployee(ctx context.Context, employeeID, roleID int64) error
	// GetRoleIDForEmployee returns common.ErrorNotFound when no role is bound.
	GetRoleIDForEmployee(ctx context.Context, employeeID int64) (int64, error)
}
