// ABOUTME: Account handlers: registration, login and the current-user view.
// ABOUTME: Login exchanges email/password for a bearer token.
package server

import (
	"net/http"

	"github.com/velolab/velo/internal/auth"
	"github.com/velolab/velo/internal/models"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	IsStaff   bool   `json:"is_staff"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	hashed, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := models.NewUser(req.Email, hashed).WithName(req.FirstName, req.LastName)
	if req.Username != "" {
		user.WithUsername(req.Username)
	}
	if req.IsStaff {
		user.AsStaff()
	}

	if err := s.repo.CreateUser(user); err != nil {
		writeStorageError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.repo.GetUserByEmail(req.Email)
	if err != nil || !auth.CheckPassword(user.HashedPassword, req.Password) {
		writeError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user *models.User) {
	writeJSON(w, http.StatusOK, user)
}
