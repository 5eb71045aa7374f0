package model

import "github.com/golang-jwt/jwt/v5"

// DashboardClaims are JWT claims for a dashboard session
type DashboardClaims struct {
	Username  string `json:"username"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for dashboard login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// VerifyResponse reports the identity behind a valid token
type VerifyResponse struct {
	Success       bool   `json:"success"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
}
