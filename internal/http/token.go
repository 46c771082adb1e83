package httpx

import (
	"net/http"
	"strings"
)

// DefaultCookieName is the cookie consulted before the Authorization header.
const DefaultCookieName = "access_token"

// TokenFromRequest returns the bearer token from the named cookie, falling back to
// "Authorization: Bearer <token>". It returns "" when neither carries a token.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if c, err := r.Cookie(cookieName); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}

	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
