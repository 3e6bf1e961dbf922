package roles

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestEnsureRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+t_role\s*\(role_name\)\s*VALUES\s*\(\$1\)\s*ON\s+CONFLICT\s*\(role_name\).*RETURNING\s+role_id\s*$`
	mock.ExpectQuery(q).WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(int64(1)))

	id, err := repo.EnsureRole(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBindEmployee(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+t_role_employee\s*\(role_id,\s*employee_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(employee_id\).*$`
	mock.ExpectExec(q).WithArgs(int64(1), int64(42)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.BindEmployee(context.Background(), 42, 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBindEmployee_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+t_role_employee`).WillReturnError(errors.New("fk violation"))

	err := repo.BindEmployee(context.Background(), 42, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestGetRoleIDForEmployee(t *testing.T) {
	q := `(?s)^SELECT\s+role_id\s+FROM\s+t_role_employee\s+WHERE\s+employee_id\s*=\s*\$1\s*$`

	t.Run("found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(int64(3)))

		id, err := repo.GetRoleIDForEmployee(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
	})

	t.Run("not bound", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs(int64(42)).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetRoleIDForEmployee(context.Background(), 42)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs(int64(42)).WillReturnError(errors.New("boom"))

		_, err := repo.GetRoleIDForEmployee(context.Background(), 42)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	admin, err := repo.EnsureRole(ctx, "admin")
	require.NoError(t, err)
	again, err := repo.EnsureRole(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin, again)

	_, err = repo.GetRoleIDForEmployee(ctx, 42)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.BindEmployee(ctx, 42, admin))
	id, err := repo.GetRoleIDForEmployee(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, admin, id)
}
