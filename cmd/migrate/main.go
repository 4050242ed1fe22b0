// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"tgscraper/internal/config"
	"tgscraper/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|up-by-one|auto|status|down|reset>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
	case "up-by-one":
		if err := database.MigrateUpByOne(ctx, db); err != nil {
			return fmt.Errorf("migrate up by one failed: %w", err)
		}
		log.Println("next migration applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Printf("mode=%s env=%s run_sql=%t run_auto=%t version=%d pending=%d", status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate, status.CurrentVersion, len(status.PendingVersions))
		for _, v := range status.PendingVersions {
			log.Printf("pending: %06d", v)
		}
		if err := database.PrintMigrationStatus(ctx, db); err != nil {
			return fmt.Errorf("migration status failed: %w", err)
		}
	case "down":
		if err := database.RollbackMigration(ctx, db); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		version, err := database.CurrentVersion(ctx, db)
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		log.Printf("rolled back latest migration, now at version %d", version)
	case "reset":
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to reset migrations in production")
		}
		if err := database.ResetMigrations(ctx, db); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		log.Println("all migrations rolled back")
	default:
		return usage()
	}

	return nil
}
