package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/handler"
	"github.com/iablee/iablee/internal/middleware"
	"github.com/iablee/iablee/internal/telemetry"
)

// AuthHandler implements registration, login and logout.
type AuthHandler struct {
	users  domain.UserService
	logger *slog.Logger
	secure bool
}

// NewAuthHandler creates the auth handler. secure controls the session
// cookie's Secure flag and should be true outside local development.
func NewAuthHandler(users domain.UserService, logger *slog.Logger, secure bool) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{users: users, logger: logger, secure: secure}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=10"`
	FullName string `json:"full_name" validate:"required"`
}

type accountResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	account, err := h.users.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.Signups.Inc()
	}

	h.startSession(w, r, account, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	account, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if telemetry.Business != nil {
			telemetry.Business.LoginFailed.Inc()
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.Logins.Inc()
	}

	h.startSession(w, r, account, http.StatusOK)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.users.DeleteSession(r.Context(), cookie.Value); err != nil {
			h.logger.WarnContext(r.Context(), "failed to delete session", slog.Any("error", err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}
	handler.JSON(w, http.StatusOK, accountResponse{
		ID:       account.ID.String(),
		Email:    account.Email,
		FullName: account.FullName,
	})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, account *domain.Account, status int) {
	token, err := h.users.CreateSession(r.Context(), account.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	handler.JSON(w, status, accountResponse{
		ID:       account.ID.String(),
		Email:    account.Email,
		FullName: account.FullName,
	})
}
