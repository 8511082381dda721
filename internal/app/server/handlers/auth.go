package handlers

import (
	"chatwire/internal/core/domain"
	"chatwire/internal/core/services"
	"chatwire/pkg/logging"
	"chatwire/pkg/middleware"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

type AuthHandler struct {
	userSvc  *services.UserService
	tokenSvc *services.TokenService
	guard    *services.RevocationGuard
}

func NewAuthHandler(u *services.UserService, t *services.TokenService, g *services.RevocationGuard) *AuthHandler {
	return &AuthHandler{userSvc: u, tokenSvc: t, guard: g}
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := ctxLogger(r)
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.userSvc.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - register failed", slog.String("email", req.Email), logging.Err(err))
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrUsernameTaken) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	h.issueToken(w, r, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := ctxLogger(r)
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.userSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - login failed", slog.String("email", req.Email))
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	h.issueToken(w, r, user)
}

// Logout denylists the presented token for its remaining validity,
// with a one-minute floor for tokens about to expire anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := ctxLogger(r)
	token, ok := middleware.RawToken(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ttl := time.Minute
	if exp := h.tokenSvc.Expiry(token); exp != nil {
		ttl = time.Until(*exp)
	}
	if err := h.guard.Blacklist(r.Context(), token, ttl); err != nil {
		log.ErrorContext(r.Context(), "auth handler - logout - blacklist failed", logging.Err(err))
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request, user *domain.User) {
	log := ctxLogger(r)
	token, err := h.tokenSvc.Generate(user)
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - generate token failed", logging.User(user.ID), logging.Err(err))
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
	log.InfoContext(r.Context(), "auth handler - token issued", logging.User(user.ID))
}
