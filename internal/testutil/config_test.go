package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("local compose defaults", func(t *testing.T) {
		for _, key := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
			t.Setenv(key, "")
		}
		assert.Equal(t, TestDBConfig{
			Host:     "localhost",
			Port:     "55432",
			User:     "marketplace",
			Password: "marketplace",
			DBName:   "marketplace",
		}, DefaultTestDBConfig())
	})

	t.Run("ci overrides", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "postgres")
		t.Setenv("TEST_DB_PORT", "5432")
		t.Setenv("TEST_DB_NAME", "auth_ci")

		cfg := DefaultTestDBConfig()
		assert.Equal(t, "postgres", cfg.Host)
		assert.Equal(t, "5432", cfg.Port)
		assert.Equal(t, "auth_ci", cfg.DBName)
	})
}

func TestBuildBaseDSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	dsn := buildBaseDSN(TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "auth"})
	assert.Equal(t, "postgres://u:p@db:5432/auth?sslmode=disable", dsn)
}

func TestGenerateSchemaName(t *testing.T) {
	a, b := generateSchemaName(), generateSchemaName()
	assert.True(t, strings.HasPrefix(a, "t_"))
	assert.NotEqual(t, a, b)
}

func TestSetupMiniRedis(t *testing.T) {
	mr := SetupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Client.Set(ctx, "session:s1", "x", time.Minute).Err())
	assert.True(t, mr.Server.Exists("session:s1"))

	mr.Server.FastForward(2 * time.Minute)
	assert.False(t, mr.Server.Exists("session:s1"))
}
