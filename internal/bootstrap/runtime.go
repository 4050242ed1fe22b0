// Package bootstrap wires the shared runtime used by every binary.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"tgscraper/internal/cache"
	"tgscraper/internal/config"
	"tgscraper/internal/database"
	"tgscraper/internal/repository"
	"tgscraper/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedChannels loads CHANNELS_SEED_FILE when it is set.
	SeedChannels bool
}

// InitRuntime connects to DB and Redis and optionally seeds configured channels.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedChannels {
		if err := seedChannels(ctx, cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed channels: %w", err)
		}
	}

	return db, r, nil
}

func seedChannels(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || cfg.ChannelsSeedFile == "" {
		return nil
	}
	specs, err := seed.LoadChannels(cfg.ChannelsSeedFile)
	if err != nil {
		return err
	}
	created, _, err := seed.SeedChannels(ctx, repository.NewChannelRepository(db), specs)
	if err != nil {
		return err
	}
	if created > 0 {
		cache.InvalidateStats(ctx)
	}
	log.Printf("channel seed file %s applied", cfg.ChannelsSeedFile)
	return nil
}
