// Package services contains server-side business logic. This file implements
// SessionService, which logs employees in, admits requests that carry the
// credential of the active session, and ends sessions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/dmitrijs2005/hradmin/internal/cryptox"
	"github.com/dmitrijs2005/hradmin/internal/logging"
	"github.com/dmitrijs2005/hradmin/internal/server/auth"
	"github.com/dmitrijs2005/hradmin/internal/server/models"
	"github.com/dmitrijs2005/hradmin/internal/server/repositories/repomanager"
)

// dummyHash is compared against when the login name is unknown so that
// missing accounts cost the same as wrong passwords.
var dummyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("hradmin")
	return h
})

// LoginResult is returned by a successful login.
type LoginResult struct {
	Name       string
	RoleID     int64
	Credential auth.Credential
}

// SessionService keeps exactly one active session per employee. A login
// replaces the stored session secret, so every earlier credential of that
// employee stops being admitted.
type SessionService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	codec        *auth.Codec
	queryTimeout time.Duration
	log          logging.Logger
	now          func() time.Time
}

// NewSessionService constructs a SessionService. Every store call is bounded
// by queryTimeout.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec,
	queryTimeout time.Duration, log logging.Logger) *SessionService {
	return &SessionService{
		db:           db,
		repomanager:  m,
		codec:        codec,
		queryTimeout: queryTimeout,
		log:          log,
		now:          time.Now,
	}
}

// Login checks the password of loginName and, on success, issues a new
// credential and records it as the employee's only active session.
func (s *SessionService) Login(ctx context.Context, loginName, password string) (*LoginResult, error) {
	loginName = strings.TrimSpace(loginName)
	if loginName == "" || password == "" {
		return nil, common.ErrorValidation
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	employee, err := s.repomanager.Employees(s.db).GetByLoginName(ctx, loginName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.CheckPassword(dummyHash(), password)
			return nil, common.ErrBadCredentials
		}
		s.log.Error(ctx, "login lookup failed", "login_name", loginName, "error", err)
		return nil, common.ErrorInternal
	}

	if employee.Disabled {
		return nil, common.ErrAccountDisabled
	}
	if !cryptox.CheckPassword(employee.PasswordHash, password) {
		return nil, common.ErrBadCredentials
	}

	roleID, err := s.repomanager.Roles(s.db).GetRoleIDForEmployee(ctx, employee.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRoleMissing
		}
		s.log.Error(ctx, "role lookup failed", "user_id", employee.ID, "error", err)
		return nil, common.ErrorInternal
	}

	cred, err := s.codec.Issue(employee.ID)
	if err != nil {
		s.log.Error(ctx, "credential issue failed", "user_id", employee.ID, "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.Employees(s.db).SetSession(ctx, employee.ID, auth.SessionSecretFor(cred), s.now()); err != nil {
		s.log.Error(ctx, "session store failed", "user_id", employee.ID, "error", err)
		return nil, common.ErrorInternal
	}

	return &LoginResult{Name: employee.RealName, RoleID: roleID, Credential: cred}, nil
}

// Authorize admits id only if it names an existing employee whose stored
// session secret was derived from the presented credential.
//
// Rejections are common.ErrUnauthenticated, common.ErrAccountMissing and
// common.ErrSessionInvalid; store failures are common.ErrorInternal.
func (s *SessionService) Authorize(ctx context.Context, id auth.Identity) (*models.Employee, error) {
	if id.IsAnonymous() {
		return nil, common.ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	employee, err := s.repomanager.Employees(s.db).GetByID(ctx, id.UserID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountMissing
		}
		s.log.Error(ctx, "session lookup failed", "user_id", id.UserID(), "error", err)
		return nil, common.ErrorInternal
	}

	if employee.SessionSecret.Empty() || !employee.SessionSecret.Matches(id.Credential()) {
		return nil, common.ErrSessionInvalid
	}
	return employee, nil
}

// Logout ends the session of id. Callers without an active session get a
// no-op success, so repeated logouts and logouts with superseded credentials
// never touch the current session.
func (s *SessionService) Logout(ctx context.Context, id auth.Identity) error {
	if id.IsAnonymous() {
		return nil
	}

	if _, err := s.Authorize(ctx, id); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.repomanager.Employees(s.db).ClearSession(ctx, id.UserID(), s.now()); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		s.log.Error(ctx, "session clear failed", "user_id", id.UserID(), "error", err)
		return common.ErrorInternal
	}
	return nil
}
