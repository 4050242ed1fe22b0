// Command seed fills the database with demo channels and posts.
package main

import (
	"context"
	"flag"
	"log"

	"tgscraper/internal/config"
	"tgscraper/internal/database"
	"tgscraper/internal/repository"
	"tgscraper/internal/seed"
)

func main() {
	// Parse command line flags
	numChannels := flag.Int("channels", 5, "Number of demo channels to create")
	postsPerChannel := flag.Int("posts", 60, "Number of posts per channel")
	maxDays := flag.Int("days", 30, "Spread post dates over this many days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	channelsFile := flag.String("channels-file", "", "YAML file of real channels to register instead of demo data")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	if *channelsFile != "" {
		specs, err := seed.LoadChannels(*channelsFile)
		if err != nil {
			log.Fatalf("❌ Reading channels file failed: %v", err)
		}
		created, skipped, err := seed.SeedChannels(ctx, repository.NewChannelRepository(db), specs)
		if err != nil {
			log.Fatalf("❌ Channel seeding failed: %v", err)
		}
		log.Printf("✨ Channels registered: %d created, %d already present", created, skipped)
		return
	}

	log.Printf("Target: %d channels x %d posts over %d days, clean=%v\n", *numChannels, *postsPerChannel, *maxDays, *shouldClean)

	err = seed.Seed(ctx, db, seed.Options{
		NumChannels:     *numChannels,
		PostsPerChannel: *postsPerChannel,
		MaxDays:         *maxDays,
		ShouldClean:     *shouldClean,
		Seed:            *seedValue,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
}
