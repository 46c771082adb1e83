package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "none"},
		{name: "bearer header", header: "Bearer abc", want: "abc"},
		{name: "scheme is case-insensitive", header: "bearer abc", want: "abc"},
		{name: "cookie wins over header", cookie: "from-cookie", header: "Bearer from-header", want: "from-cookie"},
		{name: "blank cookie falls back", cookie: "  ", header: "Bearer abc", want: "abc"},
		{name: "basic auth ignored", header: "Basic dXNlcjpwYXNz"},
		{name: "scheme only", header: "Bearer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, TokenFromRequest(req, ""))
		})
	}
}

func TestTokenFromRequest_CustomCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "default"})
	req.AddCookie(&http.Cookie{Name: "mp_token", Value: "custom"})
	assert.Equal(t, "custom", TokenFromRequest(req, "mp_token"))
}
