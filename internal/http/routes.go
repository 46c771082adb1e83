package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Validator  SessionValidator // Required
	Admin      SessionAdmin     // Required
	CookieName string
	// Metrics serves the Prometheus exposition at MetricsPath when non-nil.
	Metrics     http.Handler
	MetricsPath string
	Logger      *slog.Logger
}

// NewRouter creates the HTTP router: Recover, then Logging, then the route mux.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Metrics != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, services.Metrics)
	}

	authn := Authenticate(AuthenticateOptions{
		Validator:  services.Validator,
		CookieName: services.CookieName,
		Logger:     logger,
	})

	registerAuthRoutes(mux, authn, &AuthHandlers{
		Admin:      services.Admin,
		CookieName: services.CookieName,
		Logger:     logger,
	})
	registerAdminRoutes(mux, authn, &AdminHandlers{Admin: services.Admin, Logger: logger})

	return Chain(mux, Recover(logger), Logging(logger))
}

func registerAuthRoutes(mux *http.ServeMux, authn func(http.Handler) http.Handler, h *AuthHandlers) {
	mux.Handle("GET /api/auth/me", authn(http.HandlerFunc(h.Me)))
	mux.Handle("POST /api/auth/logout", authn(http.HandlerFunc(h.Logout)))
}

func registerAdminRoutes(mux *http.ServeMux, authn func(http.Handler) http.Handler, h *AdminHandlers) {
	staff := func(fn http.HandlerFunc) http.Handler {
		return Chain(fn, authn, RequireRoles(domainauth.RoleAdmin, domainauth.RoleModerator))
	}
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return Chain(fn, authn, RequireRoles(domainauth.RoleAdmin))
	}

	mux.Handle("POST /api/admin/sessions/{id}/revoke", staff(h.RevokeSession))
	mux.Handle("POST /api/admin/users/{id}/disable", adminOnly(h.DisableUser))
	mux.Handle("POST /api/admin/users/{id}/enable", adminOnly(h.EnableUser))
	mux.Handle("POST /api/admin/users/{id}/sessions/revoke", adminOnly(h.RevokeUserSessions))
}
