// Command main populates the database with demo content for development.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of demo users to create")
	numPosts := flag.Int("posts", 40, "Number of demo posts to create")
	maxComments := flag.Int("comments", 6, "Maximum comments per post")
	daysBack := flag.Int("days", 90, "Spread post dates over this many days")
	skipBcrypt := flag.Bool("fast", false, "Store demo passwords unhashed (never in production)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() && *skipBcrypt {
		log.Fatal("-fast is not allowed against a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := seed.EnsureBaseData(ctx, db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Base data seeding failed: %v", err)
	}

	factory := seed.NewFactory(db, seed.Options{
		NumUsers:           *numUsers,
		NumPosts:           *numPosts,
		MaxCommentsPerPost: *maxComments,
		MaxDaysBack:        *daysBack,
		SkipBcrypt:         *skipBcrypt,
	})
	if err := factory.Run(); err != nil {
		log.Fatalf("Demo seeding failed: %v", err)
	}

	log.Printf("Seeded %d users and %d posts", *numUsers, *numPosts)
}
