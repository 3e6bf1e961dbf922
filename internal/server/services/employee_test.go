package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/dmitrijs2005/hradmin/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestEmployeeService_Info(t *testing.T) {
	f := newFixture(t)
	e := f.addEmployee(t, "alice", "pw", "admin", false)
	svc := NewEmployeeService(nil, &fakeManager{employees: f.emps, roles: f.roles}, time.Second)
	ctx := context.Background()

	got, err := svc.Info(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.LoginName)

	_, err = svc.Info(ctx, 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = svc.Info(ctx, 0)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestEmployeeService_InfoStoreFailure(t *testing.T) {
	svc := NewEmployeeService(nil, &fakeManager{employees: &failingEmployees{err: errors.New("db down")}}, time.Second)

	_, err := svc.Info(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestCreateAdmin_CommitsAllRows(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+t_employee`).
		WithArgs("root", sqlmock.AnyArg(), "Root", "", int64(0), false).
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "create_time", "update_time"}).AddRow(int64(1), now, now))
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+t_role\s`).
		WithArgs(AdminRole).
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(int64(5)))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+t_role_employee`).
		WithArgs(int64(5), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewEmployeeService(db, repomanager.NewPostgresRepositoryManager(), time.Second)
	e, err := svc.CreateAdmin(context.Background(), " root ", "Root", "pw")
	require.NoError(t, err)

	assert.Equal(t, int64(1), e.ID)
	assert.NotEqual(t, "pw", e.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAdmin_RollsBackOnRoleFailure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+t_employee`).
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "create_time", "update_time"}).AddRow(int64(1), now, now))
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+t_role\s`).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	svc := NewEmployeeService(db, repomanager.NewPostgresRepositoryManager(), time.Second)
	_, err := svc.CreateAdmin(context.Background(), "root", "Root", "pw")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAdmin_Validation(t *testing.T) {
	svc := NewEmployeeService(nil, repomanager.NewPostgresRepositoryManager(), time.Second)

	_, err := svc.CreateAdmin(context.Background(), "", "Root", "pw")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = svc.CreateAdmin(context.Background(), "root", "Root", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}
