package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/server/auth"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeOK(w, http.StatusCreated, "registered", user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.metrics.AuthFailure("invalid_credentials")
		}
		s.fail(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, "logged in", res)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	user, err := s.users.VerifySession(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			s.metrics.AuthFailure("user_not_found")
		}
		s.fail(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, "token valid", user)
}
