package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
	apperrors "github.com/artisanhub/marketplace-api/internal/errors"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

// fakeAdmin records calls and returns err for every operation.
type fakeAdmin struct {
	calls []string
	err   error
}

func (f *fakeAdmin) RevokeSession(_ context.Context, id string) error {
	f.calls = append(f.calls, "revoke:"+id)
	return f.err
}

func (f *fakeAdmin) DisableUser(_ context.Context, id string) error {
	f.calls = append(f.calls, "disable:"+id)
	return f.err
}

func (f *fakeAdmin) EnableUser(_ context.Context, id string) error {
	f.calls = append(f.calls, "enable:"+id)
	return f.err
}

func (f *fakeAdmin) RevokeUserSessions(_ context.Context, id string) (int64, error) {
	f.calls = append(f.calls, "revoke-all:"+id)
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func withPrincipal(r *http.Request, p *domainauth.Principal) *http.Request {
	return r.WithContext(SetPrincipalInContext(r.Context(), p))
}

func TestAuthHandlers_RequirePrincipal(t *testing.T) {
	h := &AuthHandlers{Admin: &fakeAdmin{}}
	for name, fn := range map[string]http.HandlerFunc{"me": h.Me, "logout": h.Logout} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fn(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "authentication_required", decodeError(t, rec)["error"])
		})
	}
}

func TestAuthHandlers_LogoutUsesConfiguredCookie(t *testing.T) {
	admin := &fakeAdmin{}
	h := &AuthHandlers{Admin: admin, CookieName: "mkt_session"}

	rec := httptest.NewRecorder()
	h.Logout(rec, withPrincipal(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), principalWith()))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"revoke:s1"}, admin.calls)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "mkt_session", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthHandlers_LogoutStoreFailure(t *testing.T) {
	h := &AuthHandlers{Admin: &fakeAdmin{err: errors.New("connection reset")}}

	rec := httptest.NewRecorder()
	h.Logout(rec, withPrincipal(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), principalWith()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{
			name:     "validation",
			err:      apperrors.ValidationField("user_id", "user id is required"),
			wantCode: http.StatusBadRequest,
			wantErr:  "validation",
		},
		{
			name:     "missing session",
			err:      fmt.Errorf("revoke session: %w", ports.ErrSessionNotFound),
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
		},
		{
			name:     "missing user",
			err:      fmt.Errorf("set user disabled: %w", ports.ErrUserNotFound),
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
		},
		{name: "other", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantErr: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteAppError(rec, tt.err)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, rec)["error"])
		})
	}
}

func TestAdminHandlers_RevokeUserSessions(t *testing.T) {
	admin := &fakeAdmin{}
	h := &AdminHandlers{Admin: admin}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users/u1/sessions/revoke", nil)
	req.SetPathValue("id", "u1")
	rec := httptest.NewRecorder()
	h.RevokeUserSessions(rec, withPrincipal(req, principalWith(domainauth.RoleAdmin)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"revoked":2}`, rec.Body.String())
	assert.Equal(t, []string{"revoke-all:u1"}, admin.calls)

	h.Admin = &fakeAdmin{err: fmt.Errorf("revoke user sessions: %w", ports.ErrUserNotFound)}
	rec = httptest.NewRecorder()
	h.RevokeUserSessions(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
