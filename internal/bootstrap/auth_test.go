package bootstrap

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanhub/marketplace-api/config"
	"github.com/artisanhub/marketplace-api/internal/adapters/jwtverifier"
	"github.com/artisanhub/marketplace-api/internal/adapters/oidc"
	redisadapter "github.com/artisanhub/marketplace-api/internal/adapters/redis"
	"github.com/artisanhub/marketplace-api/internal/data"
	"github.com/artisanhub/marketplace-api/internal/testutil"
)

func edKeyPEM(t *testing.T) ([]byte, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), priv
}

func TestBuildVerifier(t *testing.T) {
	keyPEM, _ := edKeyPEM(t)
	keyFile := filepath.Join(t.TempDir(), "token.pub")
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))

	t.Run("jwt with inline key", func(t *testing.T) {
		v, err := BuildVerifier(context.Background(), VerifierConfig{Auth: config.AuthConfig{
			Verifier:  config.VerifierJWT,
			PublicKey: string(keyPEM),
			Algorithm: "EdDSA",
		}})
		require.NoError(t, err)
		assert.IsType(t, &jwtverifier.Verifier{}, v)
	})

	t.Run("jwt with key file", func(t *testing.T) {
		v, err := BuildVerifier(context.Background(), VerifierConfig{Auth: config.AuthConfig{
			Verifier:      config.VerifierJWT,
			PublicKeyFile: keyFile,
			Algorithm:     "EdDSA",
		}})
		require.NoError(t, err)
		assert.NotNil(t, v)
	})

	t.Run("oidc with pinned key", func(t *testing.T) {
		v, err := BuildVerifier(context.Background(), VerifierConfig{Auth: config.AuthConfig{
			Verifier:  config.VerifierOIDC,
			PublicKey: string(keyPEM),
			Algorithm: "EdDSA",
			Issuer:    "https://id.example.com",
		}})
		require.NoError(t, err)
		assert.IsType(t, &oidc.Verifier{}, v)
	})

	t.Run("jwt without key", func(t *testing.T) {
		_, err := BuildVerifier(context.Background(), VerifierConfig{Auth: config.AuthConfig{Verifier: config.VerifierJWT}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH_TOKEN_PUBLIC_KEY")
	})

	t.Run("missing key file", func(t *testing.T) {
		_, err := BuildVerifier(context.Background(), VerifierConfig{Auth: config.AuthConfig{
			Verifier:      config.VerifierJWT,
			PublicKeyFile: filepath.Join(t.TempDir(), "absent.pub"),
		}})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("wrong algorithm for key", func(t *testing.T) {
		_, err := BuildVerifier(context.Background(), VerifierConfig{Auth: config.AuthConfig{
			Verifier:  config.VerifierJWT,
			PublicKey: string(keyPEM),
			Algorithm: "RS256",
		}})
		require.Error(t, err)
	})
}

func TestBuildSessionStores(t *testing.T) {
	t.Run("redis", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		stores, err := BuildSessionStores(SessionStoreConfig{
			Kind:        config.SessionStoreRedis,
			RedisClient: mr.Client,
			Redis:       config.RedisConfig{SessionPrefix: "s:", UserPrefix: "u:"},
		})
		require.NoError(t, err)
		assert.IsType(t, &redisadapter.SessionStore{}, stores.Store)
		assert.Same(t, stores.Store, stores.Admin)
		assert.Nil(t, stores.Purger)
	})

	t.Run("postgres", func(t *testing.T) {
		db, err := sql.Open("pgx", "postgres://localhost:1/unused")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		stores, err := BuildSessionStores(SessionStoreConfig{Kind: config.SessionStorePostgres, DB: db})
		require.NoError(t, err)
		assert.IsType(t, &data.SessionRepo{}, stores.Store)
		assert.NotNil(t, stores.Purger)
	})

	t.Run("redis without client", func(t *testing.T) {
		_, err := BuildSessionStores(SessionStoreConfig{Kind: config.SessionStoreRedis})
		require.Error(t, err)
	})

	t.Run("postgres without db", func(t *testing.T) {
		_, err := BuildSessionStores(SessionStoreConfig{Kind: config.SessionStorePostgres})
		require.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := BuildSessionStores(SessionStoreConfig{Kind: "memcached"})
		require.Error(t, err)
	})
}
