package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/playlist/internal/auth"
	"github.com/erazemk/playlist/internal/store"
)

// AuthHandler handles authentication endpoints of the owner account.
type AuthHandler struct {
	DB          *sql.DB
	JWTSecret   string
	TokenExpiry time.Duration
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		jsonError(w, http.StatusBadRequest, "password required")
		return
	}

	hash, err := store.GetPasswordHash(r.Context(), h.DB)
	if err != nil {
		slog.Error("loading password hash", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := auth.CheckPassword(hash, req.Password); err != nil {
		slog.Warn("login failed", "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, h.TokenExpiry)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	claims, err := auth.ValidateToken(h.JWTSecret, token)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("owner logged in", "remote", r.RemoteAddr)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}

	current, err := store.GetPasswordHash(r.Context(), h.DB)
	if err != nil {
		slog.Error("loading password hash", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := auth.CheckPassword(current, req.CurrentPassword); err != nil {
		if !errors.Is(err, auth.ErrWrongPassword) {
			slog.Error("checking password", "error", err)
		}
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.SetPasswordHash(r.Context(), h.DB, hash); err != nil {
		slog.Error("storing password hash", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("owner changed password")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		slog.Error("revoking token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
