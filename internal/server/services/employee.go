package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/dmitrijs2005/hradmin/internal/cryptox"
	"github.com/dmitrijs2005/hradmin/internal/dbx"
	"github.com/dmitrijs2005/hradmin/internal/server/models"
	"github.com/dmitrijs2005/hradmin/internal/server/repositories/repomanager"
)

// AdminRole is the role bound to accounts created by CreateAdmin.
const AdminRole = "admin"

// EmployeeService exposes employee records to authorized callers and
// bootstraps accounts.
type EmployeeService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	queryTimeout time.Duration
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(db *sql.DB, m repomanager.RepositoryManager, queryTimeout time.Duration) *EmployeeService {
	return &EmployeeService{db: db, repomanager: m, queryTimeout: queryTimeout}
}

// Info returns the employee with the given id, or common.ErrorNotFound.
func (s *EmployeeService) Info(ctx context.Context, id int64) (*models.Employee, error) {
	if id <= 0 {
		return nil, common.ErrorValidation
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	e, err := s.repomanager.Employees(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return e, nil
}

// CreateAdmin inserts an enabled employee bound to AdminRole in a single
// transaction.
func (s *EmployeeService) CreateAdmin(ctx context.Context, loginName, realName, password string) (*models.Employee, error) {
	loginName = strings.TrimSpace(loginName)
	if loginName == "" {
		return nil, common.ErrorValidation
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var created *models.Employee
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		e, err := s.repomanager.Employees(tx).Create(ctx, &models.Employee{
			LoginName:    loginName,
			PasswordHash: hash,
			RealName:     realName,
		})
		if err != nil {
			return err
		}

		roles := s.repomanager.Roles(tx)
		roleID, err := roles.EnsureRole(ctx, AdminRole)
		if err != nil {
			return err
		}
		if err := roles.BindEmployee(ctx, e.ID, roleID); err != nil {
			return err
		}

		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
