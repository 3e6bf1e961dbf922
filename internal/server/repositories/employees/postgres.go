package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/dmitrijs2005/hradmin/internal/dbx"
	"github.com/dmitrijs2005/hradmin/internal/server/auth"
	"github.com/dmitrijs2005/hradmin/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectEmployee = `SELECT employee_id, login_name, login_pwd, realname, phone, department_id,
		 disabled_flag, login_token, login_at, create_time, update_time
		 FROM t_employee
		 `

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	query :=
		`INSERT INTO t_employee (login_name, login_pwd, realname, phone, department_id, disabled_flag)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING employee_id, create_time, update_time
		 `

	err := r.db.QueryRowContext(ctx, query,
		e.LoginName, e.PasswordHash, e.RealName, e.Phone, e.DepartmentID, e.Disabled,
	).Scan(&e.ID, &e.CreateTime, &e.UpdateTime)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	return r.getOne(ctx, selectEmployee+`WHERE employee_id = $1`, id)
}

func (r *PostgresRepository) GetByLoginName(ctx context.Context, loginName string) (*models.Employee, error) {
	return r.getOne(ctx, selectEmployee+`WHERE login_name = $1`, loginName)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Employee, error) {
	var (
		e       models.Employee
		secret  string
		loginAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&e.ID, &e.LoginName, &e.PasswordHash, &e.RealName, &e.Phone, &e.DepartmentID,
		&e.Disabled, &secret, &loginAt, &e.CreateTime, &e.UpdateTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	e.SessionSecret = auth.SessionSecret(secret)
	if loginAt.Valid {
		t := loginAt.Time
		e.LoginAt = &t
	}
	return &e, nil
}

func (r *PostgresRepository) SetSession(ctx context.Context, id int64, secret auth.SessionSecret, at time.Time) error {
	query :=
		`UPDATE t_employee SET login_token = $2, login_at = $3, update_time = $3
		 WHERE employee_id = $1
		 `
	return r.exec(ctx, query, id, string(secret), at)
}

func (r *PostgresRepository) ClearSession(ctx context.Context, id int64, at time.Time) error {
	query :=
		`UPDATE t_employee SET login_token = '', update_time = $2
		 WHERE employee_id = $1
		 `
	return r.exec(ctx, query, id, at)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
