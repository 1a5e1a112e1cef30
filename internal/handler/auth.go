package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"scribbles/internal/httputil"
	"scribbles/internal/model"
	"scribbles/internal/service"
	"scribbles/internal/transport/http/middleware"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	accounts *service.AccountService
	tokens   *service.TokenService
	log      *zap.Logger
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(accounts *service.AccountService, tokens *service.TokenService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
		log:      log.Named("AuthHandler"),
	}
}

// Signup registers an account and logs it in
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	session, err := h.accounts.Signup(r.Context(), strings.TrimSpace(req.Username), req.Password, req.DisplayName)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	h.writeSession(w, http.StatusCreated, session)
}

// Login handles user login
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	session, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	h.writeSession(w, http.StatusOK, session)
}

// Logout clears the session. It succeeds even when nobody is logged in.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context()); err != nil {
		// Memory is already cleared; the stale key is dropped on the next login
		h.log.Warn("Failed to clear persisted session", zap.Error(err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// Me returns the current session
// GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := h.accounts.CurrentSession()
	if !ok {
		httputil.WriteUnauthorizedWithCode(w, model.CodeNoSession, "Not logged in")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, status int, session *model.Session) {
	accessToken, err := h.tokens.Issue(session.Username)
	if err != nil {
		h.log.Error("Failed to issue access token", zap.String("username", session.Username), zap.Error(err))
		httputil.WriteInternalError(w, "Failed to generate tokens")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.tokens.MaxAgeSeconds(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, status, model.SessionResponse{
		Session:     *session,
		AccessToken: accessToken,
		ExpiresIn:   h.tokens.MaxAgeSeconds(),
	})
}
