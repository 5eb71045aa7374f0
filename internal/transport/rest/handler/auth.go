package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"callmood/internal/model"
	"callmood/internal/service"
	"callmood/internal/transport/rest/middleware"
)

// Authenticator issues dashboard tokens
type Authenticator interface {
	Login(username, password string) (*model.LoginResponse, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc Authenticator) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	case err != nil:
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Verify handles GET /v1/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.VerifyResponse{
		Success:       true,
		Authenticated: true,
		Username:      middleware.GetUsername(r.Context()),
	})
}

// Logout handles POST /v1/auth/logout. Tokens are stateless; the client
// discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}
