package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/hradmin/internal/dbx"
	"github.com/dmitrijs2005/hradmin/internal/server/repositories/employees"
	"github.com/dmitrijs2005/hradmin/internal/server/repositories/roles"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Employees(db dbx.DBTX) employees.Repository
	Roles(db dbx.DBTX) roles.Repository
}
