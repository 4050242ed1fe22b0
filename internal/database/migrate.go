package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tgscraper/internal/middleware"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationsDir = "migrations"

var gooseOnce sync.Once
var gooseErr error

// prepareGoose configures goose's package-level state once.
func prepareGoose() error {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrationFS)
		goose.SetLogger(gooseLogger{})
		gooseErr = goose.SetDialect("postgres")
	})
	return gooseErr
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	middleware.Logger.Error(fmt.Sprintf(format, v...), slog.String("component", "goose"))
}

func (gooseLogger) Printf(format string, v ...interface{}) {
	middleware.Logger.Info(fmt.Sprintf(format, v...), slog.String("component", "goose"))
}

func sqlDB(db *gorm.DB) (*sql.DB, error) {
	if db == nil {
		return nil, errors.New("database not initialized")
	}
	return db.DB()
}

// RunMigrations applies all pending SQL migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := prepareGoose(); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	raw, err := sqlDB(db)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, raw, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// MigrateUpByOne applies the next pending migration.
func MigrateUpByOne(ctx context.Context, db *gorm.DB) error {
	if err := prepareGoose(); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	raw, err := sqlDB(db)
	if err != nil {
		return err
	}
	return goose.UpByOneContext(ctx, raw, migrationsDir)
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(ctx context.Context, db *gorm.DB) error {
	if err := prepareGoose(); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	raw, err := sqlDB(db)
	if err != nil {
		return err
	}
	middleware.Logger.Info("Rolling back latest migration")
	if err := goose.DownContext(ctx, raw, migrationsDir); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	return nil
}

// ResetMigrations rolls back every applied migration.
func ResetMigrations(ctx context.Context, db *gorm.DB) error {
	if err := prepareGoose(); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	raw, err := sqlDB(db)
	if err != nil {
		return err
	}
	return goose.ResetContext(ctx, raw, migrationsDir)
}

// PrintMigrationStatus logs the applied state of every migration.
func PrintMigrationStatus(ctx context.Context, db *gorm.DB) error {
	if err := prepareGoose(); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	raw, err := sqlDB(db)
	if err != nil {
		return err
	}
	return goose.StatusContext(ctx, raw, migrationsDir)
}

// CurrentVersion returns the latest applied migration version.
func CurrentVersion(ctx context.Context, db *gorm.DB) (int64, error) {
	if err := prepareGoose(); err != nil {
		return 0, fmt.Errorf("set dialect: %w", err)
	}
	raw, err := sqlDB(db)
	if err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, raw)
}

// RegisteredMigrations lists the embedded migrations in version order.
func RegisteredMigrations() (goose.Migrations, error) {
	if err := prepareGoose(); err != nil {
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	return goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
}
