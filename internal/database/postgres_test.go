package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homescout/api/internal/config"
)

// getTestConfig returns configuration for a local PostgreSQL used by the
// integration tests. Tests are skipped unless DB_HOST is set.
func getTestConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("DB_HOST") == "" {
		t.Skip("Skipping integration test: DB_HOST not set")
	}

	return config.DatabaseConfig{
		Host:     os.Getenv("DB_HOST"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "homescout"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  1,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestNewPostgresPool_Success(t *testing.T) {
	cfg := getTestConfig(t)

	db, err := NewPostgresPool(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	defer db.Close()

	if db.Pool == nil {
		t.Error("Expected Pool to be initialized")
	}
	if stats := db.Stats(); stats == nil {
		t.Error("Expected stats to be available")
	} else if stats.MaxConns() != int32(cfg.PoolMax) {
		t.Errorf("Expected MaxConns %d, got %d", cfg.PoolMax, stats.MaxConns())
	}
}

func TestNewPostgresPool_InvalidCredentials(t *testing.T) {
	cfg := getTestConfig(t)
	cfg.Password = "wrong-password"

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := NewPostgresPool(ctx, cfg); err == nil {
		t.Error("Expected error when using invalid credentials")
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	cfg := getTestConfig(t)
	ctx := context.Background()

	db, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("First migrate failed: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	cfg := getTestConfig(t)
	ctx := context.Background()

	db, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	defer db.Close()

	sentinel := errors.New("abort")
	err = db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS homescout_tx_probe (v INTEGER)`); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Expected sentinel error, got %v", err)
	}

	var exists bool
	err = db.Pool.QueryRow(ctx, `SELECT to_regclass('homescout_tx_probe') IS NOT NULL`).Scan(&exists)
	if err != nil {
		t.Fatalf("Failed to check probe table: %v", err)
	}
	if exists {
		t.Error("Expected table creation to be rolled back")
	}
}

func TestPing_AfterClose(t *testing.T) {
	cfg := getTestConfig(t)
	ctx := context.Background()

	db, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	// Close multiple times should not panic
	db.Close()
	db.Close()

	if err := db.Ping(ctx); err == nil {
		t.Error("Expected ping to fail after pool is closed")
	}
}

func TestStats_NilPool(t *testing.T) {
	db := &Database{}
	if db.Stats() != nil {
		t.Error("Expected nil stats for an unopened database")
	}
	db.Close()
}
