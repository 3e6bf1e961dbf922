package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/dmitrijs2005/hradmin/internal/server/auth"
	"github.com/julienschmidt/httprouter"
)

const maxBodySize = 1 << 20

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Name      string `json:"name"`
	Role      int64  `json:"role"`
	AuthToken string `json:"auth_token"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type sessionResponse struct {
	UserID int64 `json:"user_id"`
}

type employeeResponse struct {
	EmployeeID   int64      `json:"employee_id"`
	LoginName    string     `json:"login_name"`
	RealName     string     `json:"realname"`
	Phone        string     `json:"phone"`
	DepartmentID int64      `json:"department_id"`
	Disabled     bool       `json:"disabled"`
	LoginAt      *time.Time `json:"login_at,omitempty"`
}

func (s *HTTPServer) handleWelcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Welcome to hradmin\n")
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrBadCredentials)
		return
	}

	res, err := s.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			err = common.ErrBadCredentials
		}
		if errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Info(r.Context(), "login rejected", "request_id", requestIDFrom(r.Context()), "login_name", req.Username, "reason", err.Error())
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Name:      res.Name,
		Role:      res.RoleID,
		AuthToken: string(res.Credential),
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context(), auth.IdentityFromContext(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{UserID: auth.IdentityFromContext(r.Context()).UserID()})
}

func (s *HTTPServer) handleEmployeeInfo(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("employee_id"), 10, 64)
	if err != nil {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	e, err := s.employees.Info(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, employeeResponse{
		EmployeeID:   e.ID,
		LoginName:    e.LoginName,
		RealName:     e.RealName,
		Phone:        e.Phone,
		DepartmentID: e.DepartmentID,
		Disabled:     e.Disabled,
		LoginAt:      e.LoginAt,
	})
}
