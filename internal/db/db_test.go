package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/snnyvrz/bookcatalog/internal/config"
	"github.com/snnyvrz/bookcatalog/internal/model"
)

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), zap.NewNop(), 5, time.Millisecond, "connect", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_GivesUpAtMaxAttempts(t *testing.T) {
	refused := errors.New("connection refused")
	calls := 0
	err := WithRetry(context.Background(), zap.NewNop(), 3, time.Millisecond, "connect", func() error {
		calls++
		return refused
	})

	assert.ErrorIs(t, err, refused)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_UnboundedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithRetry(ctx, zap.NewNop(), 0, time.Millisecond, "connect", func() error {
		calls++
		if calls == 10 {
			cancel()
		}
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 10, calls)
}

func TestOpen_SQLiteCreatesSchema(t *testing.T) {
	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBName:   filepath.Join(t.TempDir(), "catalog.db"),
	}

	db, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.True(t, db.Migrator().HasTable(&model.Book{}))

	// a second run against the same file is a no-op
	require.NoError(t, Migrate(db))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DBDriver: "oracle"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestEnsureDatabase_InvalidDSN(t *testing.T) {
	err := EnsureDatabase(context.Background(), "postgres://%zz", zap.NewNop())
	assert.ErrorContains(t, err, "parse dsn")
}
