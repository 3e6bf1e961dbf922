package models

import (
	"time"

	"github.com/dmitrijs2005/hradmin/internal/server/auth"
)

// Employee is a row of t_employee. SessionSecret is empty when the employee
// has no active session.
type Employee struct {
	ID            int64
	LoginName     string
	PasswordHash  string
	RealName      string
	Phone         string
	DepartmentID  int64
	Disabled      bool
	SessionSecret auth.SessionSecret
	LoginAt       *time.Time
	CreateTime    time.Time
	UpdateTime    time.Time
}

// Role is a row of t_role.
type Role struct {
	ID   int64
	Name string
}
