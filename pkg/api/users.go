package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/netlens/netlens/pkg/manager"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.logins.allow(r) {
		writeJSON(w, http.StatusTooManyRequests, apiError{
			Code:    "RATE_LIMITED",
			Message: "too many login attempts",
		})
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.mgr.Authenticate(req.Username, req.Password)
	if err != nil {
		// Do not reveal whether the username exists.
		writeError(w, fmt.Errorf("%w: invalid credentials", errUnauthorized))
		return
	}
	session, err := s.tokens.Issue(user.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		ExpiresAt: session.ExpiresAt.Format(timeFormat),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		s.tokens.Revoke(token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c := callerFrom(r.Context())
	if err := s.mgr.ChangePassword(c.Username, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	// Old sessions die with the old password.
	s.tokens.RevokeUser(c.Username)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userResponse struct {
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.mgr.ListUsers()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			Username:  u.Username,
			IsAdmin:   u.IsAdmin,
			CreatedAt: u.CreatedAt.Format(timeFormat),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.mgr.CreateUser(req.Username, req.Password, req.IsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt.Format(timeFormat),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == callerFrom(r.Context()).Username {
		writeError(w, fmt.Errorf("%w: cannot delete yourself", manager.ErrValidation))
		return
	}
	if err := s.mgr.DeleteUser(username); err != nil {
		writeError(w, err)
		return
	}
	s.tokens.RevokeUser(username)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
