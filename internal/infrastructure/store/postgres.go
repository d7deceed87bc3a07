package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/catalog-aggregator/internal/config"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectPostgres opens a lib/pq pool and hands it to gorm.
func ConnectPostgres(cfg config.PostgresConfig) (*gorm.DB, error) {
	const op = "store.ConnectPostgres"

	sqlDB, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	db, err := OpenGorm(sqlDB, false)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return db, nil
}

// OpenGorm wraps an existing pool. dryRun builds statements without executing them.
func OpenGorm(sqlDB *sql.DB, dryRun bool) (*gorm.DB, error) {
	gormLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               gormLogger,
		DryRun:               dryRun,
		DisableAutomaticPing: dryRun,
	})
}
