// Package employees stores employee accounts and the per-employee session
// secret that decides which credential is currently active.
package employees

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/server/auth"
	"github.com/dmitrijs2005/hradmin/internal/server/models"
)

// Repository is the session record store. Lookups return
// common.ErrorNotFound for unknown ids and login names.
type Repository interface {
	Create(ctx context.Context, e *models.Employee) (*models.Employee, error)
	GetByID(ctx context.Context, id int64) (*models.Employee, error)
	GetByLoginName(ctx context.Context, loginName string) (*models.Employee, error)

	// SetSession records secret as the active session and stamps login time.
	SetSession(ctx context.Context, id int64, secret auth.SessionSecret, at time.Time) error
	// ClearSession removes the active session, if any.
	ClearSession(ctx context.Context, id int64, at time.Time) error
}
