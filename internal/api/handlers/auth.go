// internal/api/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/baharkarakas/hbnb-api/internal/api/httpx"
	"github.com/baharkarakas/hbnb-api/internal/auth"
	"github.com/baharkarakas/hbnb-api/internal/metrics"
	"github.com/baharkarakas/hbnb-api/internal/middleware"
	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/services"
)

type AuthHandler struct {
	TM      *auth.TokenManager
	Catalog *services.Catalog
}

func NewAuthHandler(tm *auth.TokenManager, c *services.Catalog) *AuthHandler {
	return &AuthHandler{TM: tm, Catalog: c}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteBadRequest(w, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "email and password are required", nil)
		return
	}

	u, err := h.Catalog.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteServiceError(w, err, true)
		return
	}
	if u == nil {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	h.writePair(w, *u)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh reissues both tokens with the user's current email and admin flag.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "refresh_token is required", nil)
		return
	}
	claims, err := h.TM.ParseRefresh(req.RefreshToken)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid refresh token", nil)
		return
	}
	u, err := h.Catalog.GetUser(r.Context(), claims.Subject)
	if errors.Is(err, services.ErrNotFound) {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid refresh token", nil)
		return
	} else if err != nil {
		httpx.WriteServiceError(w, err, true)
		return
	}
	h.writePair(w, u)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	a := middleware.ActorFrom(r.Context())
	u, err := h.Catalog.GetUser(r.Context(), a.ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) writePair(w http.ResponseWriter, u models.User) {
	pair, err := h.TM.GeneratePair(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.TM.AccessTTL().Seconds()),
	})
}
