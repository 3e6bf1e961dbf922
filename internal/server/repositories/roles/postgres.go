package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/dmitrijs2005/hradmin/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EnsureRole(ctx context.Context, name string) (int64, error) {
	query :=
		`INSERT INTO t_role (role_name) VALUES ($1)
		 ON CONFLICT (role_name) DO UPDATE SET role_name = EXCLUDED.role_name
		 RETURNING role_id
		 `

	var id int64
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) BindEmployee(ctx context.Context, employeeID, roleID int64) error {
	query :=
		`INSERT INTO t_role_employee (role_id, employee_id) VALUES ($1, $2)
		 ON CONFLICT (employee_id) DO UPDATE SET role_id = EXCLUDED.role_id
		 `

	if _, err := r.db.ExecContext(ctx, query, roleID, employeeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetRoleIDForEmployee(ctx context.Context, employeeID int64) (int64, error) {
	query :=
		`SELECT role_id FROM t_role_employee
		 WHERE employee_id = $1
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query, employeeID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}
