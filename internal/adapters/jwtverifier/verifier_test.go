package jwtverifier

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

var issuedAt = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func publicPEM(t *testing.T, pub any) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func newEdKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func validClaims() tokenClaims {
	return tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ID:        uuid.NewString(),
			Issuer:    "marketplace",
			Audience:  jwt.ClaimStrings{"marketplace-api"},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(15 * time.Minute)),
		},
		Email: "maker@example.com",
		Name:  "Maker",
		Roles: []string{"ARTISAN"},
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func newVerifier(t *testing.T, pub any, alg string) *Verifier {
	t.Helper()
	v, err := New(Config{
		PublicKeyPEM: publicPEM(t, pub),
		Algorithm:    alg,
		Issuer:       "marketplace",
		Audience:     "marketplace-api",
		Now:          func() time.Time { return issuedAt.Add(time.Minute) },
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

func TestVerify_ValidEdDSAToken(t *testing.T) {
	pub, priv := newEdKey(t)
	v := newVerifier(t, pub, AlgEdDSA)
	claims := validClaims()

	raw, err := v.Verify(context.Background(), sign(t, jwt.SigningMethodEdDSA, priv, claims))
	require.NoError(t, err)

	assert.Equal(t, domainauth.RawClaims{
		Subject:     claims.Subject,
		SessionID:   claims.ID,
		Email:       "maker@example.com",
		DisplayName: "Maker",
		Roles:       []string{"ARTISAN"},
	}, raw)
}

func TestVerify_ValidES256Token(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	v := newVerifier(t, &priv.PublicKey, AlgES256)

	_, err = v.Verify(context.Background(), sign(t, jwt.SigningMethodES256, priv, validClaims()))
	require.NoError(t, err)
}

func TestVerify_Failures(t *testing.T) {
	pub, priv := newEdKey(t)
	_, otherPriv := newEdKey(t)

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  domainauth.VerifyFailure
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				c := validClaims()
				c.ExpiresAt = jwt.NewNumericDate(issuedAt)
				return sign(t, jwt.SigningMethodEdDSA, priv, c)
			},
			want: domainauth.VerifyExpired,
		},
		{
			name: "signed by another key",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodEdDSA, otherPriv, validClaims())
			},
			want: domainauth.VerifyBadSignature,
		},
		{
			name: "hmac with public key bytes",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(pub), validClaims())
			},
			want: domainauth.VerifyBadSignature,
		},
		{
			name: "alg none",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims())
			},
			want: domainauth.VerifyBadSignature,
		},
		{
			name:  "garbage",
			token: func(*testing.T) string { return "not.a.jwt" },
			want:  domainauth.VerifyMalformed,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				c := validClaims()
				c.Issuer = "someone-else"
				return sign(t, jwt.SigningMethodEdDSA, priv, c)
			},
			want: domainauth.VerifyMalformed,
		},
		{
			name: "wrong audience",
			token: func(t *testing.T) string {
				c := validClaims()
				c.Audience = jwt.ClaimStrings{"billing"}
				return sign(t, jwt.SigningMethodEdDSA, priv, c)
			},
			want: domainauth.VerifyMalformed,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				c := validClaims()
				c.ExpiresAt = nil
				return sign(t, jwt.SigningMethodEdDSA, priv, c)
			},
			want: domainauth.VerifyMalformed,
		},
	}

	v := newVerifier(t, pub, AlgEdDSA)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token(t))
			assert.Equal(t, tt.want, detailOf(t, err))
		})
	}
}

func TestVerify_LeewayAcceptsRecentlyExpired(t *testing.T) {
	pub, priv := newEdKey(t)
	v, err := New(Config{
		PublicKeyPEM: publicPEM(t, pub),
		Leeway:       30 * time.Second,
		Now:          func() time.Time { return issuedAt.Add(15*time.Minute + 10*time.Second) },
	})
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), sign(t, jwt.SigningMethodEdDSA, priv, validClaims()))
	assert.NoError(t, err)
}

func TestNew_Errors(t *testing.T) {
	pub, _ := newEdKey(t)

	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{PublicKeyPEM: publicPEM(t, pub), Algorithm: "HS256"})
	assert.Error(t, err)

	_, err = New(Config{PublicKeyPEM: publicPEM(t, pub), Algorithm: AlgRS256})
	assert.Error(t, err, "ed25519 key is not an RSA key")

	_, err = New(Config{PublicKeyPEM: []byte("not pem")})
	assert.Error(t, err)
}
