package testutil

// Package testutil provides Postgres and Redis fixtures for integration tests.
// Postgres tests skip when no database answers, unless TEST_REQUIRE_DB is set.

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/artisanhub/marketplace-api/internal/migrate"
)

// TestingTB covers *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Skip(args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// TestDBConfig locates the integration database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig reads TEST_DB_* and falls back to the docker-compose test profile on port 55432.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "55432"),
		User:     envOr("TEST_DB_USER", "marketplace"),
		Password: envOr("TEST_DB_PASSWORD", "marketplace"),
		DBName:   envOr("TEST_DB_NAME", "marketplace"),
	}
}

// SetupAutoDB returns a migrated database: a throwaway schema when TEST_DB_EPHEMERAL is truthy,
// otherwise the shared database with users and sessions emptied.
func SetupAutoDB(t TestingTB) *sql.DB {
	t.Helper()
	if envBool("TEST_DB_EPHEMERAL") {
		return SetupEphemeralSchemaDB(t)
	}
	return SetupTestDB(t)
}

// SetupTestDB opens the shared test database, migrates it and truncates the auth tables.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()
	db := openAndPing(t, buildBaseDSN(DefaultTestDBConfig()))
	t.Cleanup(func() { closeAndLog(t, "test DB", db) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrate.Run(ctx, db); err != nil {
		t.Fatal("migrate test DB:", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE sessions, users"); err != nil {
		t.Fatal("truncate auth tables:", err)
	}
	return db
}

// SetupEphemeralSchemaDB migrates a fresh schema and drops it when the test ends.
func SetupEphemeralSchemaDB(t TestingTB) *sql.DB {
	t.Helper()
	baseDSN := buildBaseDSN(DefaultTestDBConfig())
	admin := openAndPing(t, baseDSN)

	schema := generateSchemaName()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		closeAndLog(t, "admin DB", admin)
		t.Fatalf("create schema %s: %v", schema, err)
	}

	u, err := url.Parse(baseDSN)
	if err != nil {
		closeAndLog(t, "admin DB", admin)
		t.Fatal("parse DSN:", err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	db, err := sql.Open("pgx", u.String())
	if err != nil {
		closeAndLog(t, "admin DB", admin)
		t.Fatal("open schema DB:", err)
	}

	t.Logf("using ephemeral schema %s", schema)
	t.Cleanup(func() {
		closeAndLog(t, "schema DB", db)
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		if _, dropErr := admin.ExecContext(cctx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); dropErr != nil {
			t.Logf("warning: drop schema %s: %v", schema, dropErr)
		}
		closeAndLog(t, "admin DB", admin)
	})

	if err := migrate.Run(ctx, db); err != nil {
		t.Fatal("migrate ephemeral schema:", err)
	}
	return db
}

// MiniRedis bundles an in-process Redis server with a client connected to it.
type MiniRedis struct {
	Server *miniredis.Miniredis
	Client *redis.Client
}

// SetupMiniRedis starts an in-process Redis for the duration of the test.
func SetupMiniRedis(t TestingTB) *MiniRedis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		closeAndLog(t, "redis client", client)
		mr.Close()
	})
	return &MiniRedis{Server: mr, Client: client}
}

// openAndPing opens dsn and pings it, skipping the test (or failing under TEST_REQUIRE_DB)
// when nothing answers.
func openAndPing(t TestingTB, dsn string) *sql.DB {
	t.Helper()
	unavailable := func(err error) {
		if requireDB() {
			t.Fatal("test database not available:", err)
		}
		t.Skip("test database not available:", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		unavailable(err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		closeAndLog(t, "test DB", db)
		unavailable(err)
		return nil
	}
	return db
}

func buildBaseDSN(cfg TestDBConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User, cfg.Password, net.JoinHostPort(cfg.Host, cfg.Port), cfg.DBName,
		envOr("DB_SSL_MODE", "disable"))
}

func generateSchemaName() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("t_%d", time.Now().UnixNano())
	}
	return "t_" + hex.EncodeToString(b)
}

func closeAndLog(t TestingTB, name string, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		t.Logf("warning: failed to close %s: %v", name, err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func requireDB() bool { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
