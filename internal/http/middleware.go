package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

// SessionValidator resolves a raw bearer token into a principal.
type SessionValidator interface {
	Validate(ctx context.Context, rawToken string) (*domainauth.Principal, error)
}

// RequestIDHeader carries the per-request id echoed back to clients and written to logs.
const RequestIDHeader = "X-Request-ID"

// Logging logs one line per request with its status and latency. It assigns a request id
// unless the caller supplied one.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			level := slog.LevelInfo
			if sw.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover turns a handler panic into a 500 JSON error and logs the stack.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "panic",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()))
				WriteError(w, ErrorParams{
					Code:    http.StatusInternalServerError,
					ErrCode: "internal",
					Message: http.StatusText(http.StatusInternalServerError),
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AuthenticateOptions configures Authenticate.
type AuthenticateOptions struct {
	Validator  SessionValidator // Required
	CookieName string           // Optional: defaults to DefaultCookieName
	Logger     *slog.Logger     // Optional
}

// Authenticate validates the request's token and attaches the principal to the context.
// Any failure stops the request with 401; store outages surface as session_lookup_failed.
func Authenticate(opts AuthenticateOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "authenticate")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := opts.Validator.Validate(r.Context(), TokenFromRequest(r, opts.CookieName))
			if err != nil {
				if reason := domainauth.ReasonOf(err); reason == "" || reason == domainauth.ReasonSessionLookupFailed {
					logger.ErrorContext(r.Context(), "session lookup failed", "error", err, "path", r.URL.Path)
				}
				WriteAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetPrincipalInContext(r.Context(), principal)))
		})
	}
}

// RequireRoles admits principals holding any one of roles. With no roles every request passes.
// It must run after Authenticate; a missing principal yields 401.
func RequireRoles(roles ...domainauth.Role) func(http.Handler) http.Handler {
	required := domainauth.NewRoleSet(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := PrincipalFromContext(r.Context())
			if err := domainauth.Authorize(principal, required); err != nil {
				WriteAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so the first one listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
