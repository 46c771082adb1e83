package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

// SessionAdmin is the subset of session administration the HTTP layer drives.
type SessionAdmin interface {
	RevokeSession(ctx context.Context, sessionID string) error
	DisableUser(ctx context.Context, userID string) error
	EnableUser(ctx context.Context, userID string) error
	RevokeUserSessions(ctx context.Context, userID string) (int64, error)
}

// AuthHandlers serves the caller-facing auth endpoints.
type AuthHandlers struct {
	Admin      SessionAdmin
	CookieName string
	Logger     *slog.Logger
}

// Me returns the authenticated principal.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteAuthError(w, domainauth.ErrAuthenticationRequired)
		return
	}
	WriteJSON(w, http.StatusOK, principal)
}

// Logout revokes the caller's own session and clears the token cookie.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteAuthError(w, domainauth.ErrAuthenticationRequired)
		return
	}
	if err := h.Admin.RevokeSession(r.Context(), principal.SessionID); err != nil {
		h.logger().ErrorContext(r.Context(), "logout failed", "error", err, "session_id", principal.SessionID)
		WriteAppError(w, err)
		return
	}

	cookieName := h.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// AdminHandlers serves the session administration endpoints.
type AdminHandlers struct {
	Admin  SessionAdmin
	Logger *slog.Logger
}

// RevokeSession handles POST /api/admin/sessions/{id}/revoke.
func (h *AdminHandlers) RevokeSession(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "session_id", h.Admin.RevokeSession)
}

// DisableUser handles POST /api/admin/users/{id}/disable.
func (h *AdminHandlers) DisableUser(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "user_id", h.Admin.DisableUser)
}

// EnableUser handles POST /api/admin/users/{id}/enable.
func (h *AdminHandlers) EnableUser(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "user_id", h.Admin.EnableUser)
}

// RevokeUserSessions handles POST /api/admin/users/{id}/sessions/revoke.
// It logs the user out everywhere and reports how many sessions were revoked.
func (h *AdminHandlers) RevokeUserSessions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	n, err := h.Admin.RevokeUserSessions(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	h.logAction(r, "user_id", id, "revoked", n)
	WriteJSON(w, http.StatusOK, map[string]int64{"revoked": n})
}

func (h *AdminHandlers) run(
	w http.ResponseWriter,
	r *http.Request,
	idField string,
	op func(context.Context, string) error,
) {
	id := r.PathValue("id")
	if err := op(r.Context(), id); err != nil {
		WriteAppError(w, err)
		return
	}
	h.logAction(r, idField, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) logAction(r *http.Request, attrs ...any) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs = append(attrs, "path", r.URL.Path)
	if p, ok := PrincipalFromContext(r.Context()); ok {
		attrs = append(attrs, "actor_user_id", p.UserID)
	}
	logger.InfoContext(r.Context(), "admin action", attrs...)
}
