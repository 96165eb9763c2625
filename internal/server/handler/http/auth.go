package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/qpay/securegate/internal/errs"
	"github.com/qpay/securegate/internal/models"
)

// AuthService defines the authentication operations required by the
// HTTP handlers.
type AuthService interface {
	// Register creates a new account with an encrypted credential blob.
	Register(ctx context.Context, name, email, mobile, password string) error
	// Login verifies credentials and issues a session token.
	Login(ctx context.Context, identifier, password string) (string, *models.User, error)
}

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile_number"`
	Password string `json:"password"`
}

// LoginRequest represents the JSON payload for login. Identifier is
// the email or the mobile number.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Register handles user registration requests. Duplicate email or
// mobile numbers are rejected with 400.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request"))
		return
	}

	if err := h.AuthService.Register(r.Context(), req.Name, req.Email, req.Mobile, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User registered successfully! You can now log in.",
	})
}

// Login handles login requests and returns a bearer token together with
// the resolved user profile.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request"))
		return
	}

	accessToken, user, err := h.AuthService.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": accessToken,
		"token_type":   "bearer",
		"message":      "Login successful",
		"user": map[string]string{
			"name":          user.Name,
			"identifier":    req.Identifier,
			"mobile_number": user.Mobile,
		},
	})
}
