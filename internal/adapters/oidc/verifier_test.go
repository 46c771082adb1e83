package oidc

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanhub/marketplace-api/internal/adapters/jwtverifier"
	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

const testIssuer = "https://auth.marketplace.test"

var issuedAt = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type testClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return k
}

func publicPEM(t *testing.T, key *ecdsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func claimsFor(issuer string) testClaims {
	return testClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uuid.NewString(),
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{"marketplace-api"},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(15 * time.Minute)),
		},
		Email: "buyer@example.com",
		Name:  "Buyer",
		Roles: []string{"USER"},
	}
}

func sign(t *testing.T, key *ecdsa.PrivateKey, kid string, claims testClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func staticVerifier(t *testing.T, key *ecdsa.PrivateKey, now time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier(context.Background(), VerifierConfig{
		Issuer:       testIssuer,
		Audience:     "marketplace-api",
		Algorithm:    jwtverifier.AlgES256,
		PublicKeyPEM: publicPEM(t, key),
		Now:          func() time.Time { return now },
	})
	require.NoError(t, err)
	return v
}

func detailOf(t *testing.T, err error) domainauth.VerifyFailure {
	t.Helper()
	require.ErrorIs(t, err, domainauth.ErrBadToken)
	var authErr *domainauth.Error
	require.ErrorAs(t, err, &authErr)
	return authErr.Detail
}

func TestNewVerifier_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config VerifierConfig
	}{
		{name: "missing issuer", config: VerifierConfig{PublicKeyPEM: []byte("x")}},
		{name: "no key source", config: VerifierConfig{Issuer: testIssuer}},
		{name: "bad key", config: VerifierConfig{Issuer: testIssuer, PublicKeyPEM: []byte("not pem")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVerifier(context.Background(), tt.config)
			assert.Error(t, err)
		})
	}
}

func TestVerifier_StaticKey(t *testing.T) {
	key := newKey(t)
	v := staticVerifier(t, key, issuedAt.Add(time.Minute))
	claims := claimsFor(testIssuer)

	raw, err := v.Verify(context.Background(), sign(t, key, "", claims))
	require.NoError(t, err)
	assert.Equal(t, domainauth.RawClaims{
		Subject:     claims.Subject,
		SessionID:   claims.ID,
		Email:       "buyer@example.com",
		DisplayName: "Buyer",
		Roles:       []string{"USER"},
	}, raw)
}

func TestVerifier_Failures(t *testing.T) {
	key := newKey(t)
	other := newKey(t)

	t.Run("expired", func(t *testing.T) {
		v := staticVerifier(t, key, issuedAt.Add(time.Hour))
		_, err := v.Verify(context.Background(), sign(t, key, "", claimsFor(testIssuer)))
		assert.Equal(t, domainauth.VerifyExpired, detailOf(t, err))
	})

	t.Run("wrong key", func(t *testing.T) {
		v := staticVerifier(t, key, issuedAt.Add(time.Minute))
		_, err := v.Verify(context.Background(), sign(t, other, "", claimsFor(testIssuer)))
		assert.Equal(t, domainauth.VerifyBadSignature, detailOf(t, err))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		v := staticVerifier(t, key, issuedAt.Add(time.Minute))
		_, err := v.Verify(context.Background(), sign(t, key, "", claimsFor("https://evil.test")))
		assert.Equal(t, domainauth.VerifyMalformed, detailOf(t, err))
	})

	t.Run("garbage", func(t *testing.T) {
		v := staticVerifier(t, key, issuedAt.Add(time.Minute))
		_, err := v.Verify(context.Background(), "garbage")
		assert.Equal(t, domainauth.VerifyMalformed, detailOf(t, err))
	})
}

func TestVerifier_Discovery(t *testing.T) {
	key := newKey(t)

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/auth",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
			Key:       &key.PublicKey,
			KeyID:     "k1",
			Algorithm: jwtverifier.AlgES256,
			Use:       "sig",
		}}})
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	v, err := NewVerifier(context.Background(), VerifierConfig{
		Issuer:       srv.URL,
		Algorithm:    jwtverifier.AlgES256,
		DiscoveryURL: srv.URL + "/.well-known/openid-configuration",
		HTTPClient:   srv.Client(),
		Now:          func() time.Time { return issuedAt.Add(time.Minute) },
	})
	require.NoError(t, err)

	claims := claimsFor(srv.URL)
	raw, err := v.Verify(context.Background(), sign(t, key, "k1", claims))
	require.NoError(t, err)
	assert.Equal(t, claims.ID, raw.SessionID)
}
