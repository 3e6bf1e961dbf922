package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/cryptox"
	"github.com/dmitrijs2005/hradmin/internal/dbx"
	"github.com/dmitrijs2005/hradmin/internal/logging"
	"github.com/dmitrijs2005/hradmin/internal/server/auth"
	"github.com/dmitrijs2005/hradmin/internal/server/models"
	"github.com/dmitrijs2005/hradmin/internal/server/repositories/employees"
	"github.com/dmitrijs2005/hradmin/internal/server/repositories/roles"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

// fakeManager hands out the same repositories regardless of the handle.
type fakeManager struct {
	employees employees.Repository
	roles     roles.Repository
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Employees(dbx.DBTX) employees.Repository      { return m.employees }
func (m *fakeManager) Roles(dbx.DBTX) roles.Repository              { return m.roles }

type fixture struct {
	svc   *SessionService
	emps  *employees.MemoryRepository
	roles *roles.MemoryRepository
	codec *auth.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codec, err := auth.NewCodec([]byte("test-key"), "hradmin")
	require.NoError(t, err)

	f := &fixture{
		emps:  employees.NewMemoryRepository(),
		roles: roles.NewMemoryRepository(),
		codec: codec,
	}
	m := &fakeManager{employees: f.emps, roles: f.roles}
	f.svc = NewSessionService(nil, m, codec, time.Second, nopLogger{})
	return f
}

// addEmployee stores an employee with the given password and, if role is not
// empty, binds it to that role.
func (f *fixture) addEmployee(t *testing.T, login, password, role string, disabled bool) *models.Employee {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	e, err := f.emps.Create(ctx, &models.Employee{
		LoginName:    login,
		PasswordHash: hash,
		RealName:     "Real " + login,
		Disabled:     disabled,
	})
	require.NoError(t, err)

	if role != "" {
		roleID, err := f.roles.EnsureRole(ctx, role)
		require.NoError(t, err)
		require.NoError(t, f.roles.BindEmployee(ctx, e.ID, roleID))
	}
	return e
}

// identityFor mimics the credential extractor.
func (f *fixture) identityFor(t *testing.T, cred auth.Credential) auth.Identity {
	t.Helper()
	claims, err := f.codec.Verify(cred)
	require.NoError(t, err)
	return auth.NewIdentity(claims.UserID(), cred)
}
