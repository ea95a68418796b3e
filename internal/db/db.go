package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/snnyvrz/bookcatalog/internal/config"
	"github.com/snnyvrz/bookcatalog/internal/model"
)

const (
	maintenanceDatabase = "postgres"

	// SQLSTATE for CREATE DATABASE racing another creator.
	duplicateDatabase = "42P04"
)

// Open prepares storage once at startup: the target database is created if
// missing, connected to and migrated. Reaching the server is retried per
// DBConnectMaxAttempts and DBConnectRetryDelay.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	switch cfg.DBDriver {
	case config.DriverSQLite:
		d, err := gorm.Open(sqlite.Open(cfg.DSN()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.DSN(), err)
		}
		db = d

	case config.DriverPostgres:
		dsn := cfg.DSN()
		retry := func(step string, fn func() error) error {
			return WithRetry(ctx, logger, cfg.DBConnectMaxAttempts, cfg.DBConnectRetryDelay, step, fn)
		}

		if err := retry("ensure database", func() error {
			return EnsureDatabase(ctx, dsn, logger)
		}); err != nil {
			return nil, err
		}

		if err := retry("connect", func() error {
			d, err := connectPostgres(ctx, dsn, gormCfg)
			db = d
			return err
		}); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if err := Migrate(db); err != nil {
		_ = Close(db)
		return nil, err
	}

	logger.Info("database ready", zap.String("driver", cfg.DBDriver), zap.String("dsn", cfg.Redacted()))
	return db, nil
}

// WithRetry calls fn until it succeeds, waiting delay between attempts.
// maxAttempts <= 0 retries until ctx is done.
func WithRetry(ctx context.Context, logger *zap.Logger, maxAttempts int, delay time.Duration, step string, fn func() error) error {
	var err error

	for attempt := 1; maxAttempts <= 0 || attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		logger.Warn("db not ready",
			zap.String("step", step),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err),
		)

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w (last error: %v)", step, ctx.Err(), err)
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s: giving up after %d attempts: %w", step, maxAttempts, err)
}

// EnsureDatabase creates the database named in dsn when it does not exist,
// working through the postgres maintenance database.
func EnsureDatabase(ctx context.Context, dsn string, logger *zap.Logger) error {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	name := connCfg.Database
	if name == "" || name == maintenanceDatabase {
		return nil
	}

	connCfg.Database = maintenanceDatabase
	sqlDB := stdlib.OpenDB(*connCfg)
	defer sqlDB.Close()

	admin, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("connect to %s: %w", maintenanceDatabase, err)
	}

	var exists bool
	if err := admin.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = ?)", name).
		Row().
		Scan(&exists); err != nil {

		return fmt.Errorf("look up database %s: %w", name, err)
	}
	if exists {
		return nil
	}

	err = admin.WithContext(ctx).Exec("CREATE DATABASE " + pq.QuoteIdentifier(name)).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == duplicateDatabase {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}

	logger.Info("database created", zap.String("name", name))
	return nil
}

// Migrate creates the books table when missing. It never drops or rewrites data.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Book{}); err != nil {
		return fmt.Errorf("migrate books: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func connectPostgres(ctx context.Context, dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		if db != nil {
			_ = Close(db)
		}
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}
