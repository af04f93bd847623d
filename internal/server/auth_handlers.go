package server

import (
	"net/http"
	"strings"

	"dropshipManagement/internal/auth"
	"dropshipManagement/models"
)

type credentialsRequest struct {
	Username string `json:"username"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// handleSignup registers a new customer account and issues a token.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	existing, err := s.Users.GetByUsername(r.Context(), username)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	u, err := s.Users.Create(r.Context(), username, models.RoleCustomer)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	tok, err := auth.SignToken(s.Secret, u.Username, u.Role, tokenTTL)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: tok, User: u})
}

// handleLogin issues a token for an existing account. The role baked into
// the token always comes from the users table, never from the request.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	u, err := s.Users.GetByUsername(r.Context(), username)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	tok, err := auth.SignToken(s.Secret, u.Username, u.Role, tokenTTL)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok, User: u})
}
