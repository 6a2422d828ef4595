package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/gltch/gltch-backend/internal/config"
	"github.com/gltch/gltch-backend/internal/database"
	"github.com/gltch/gltch-backend/internal/seed"
)

func main() {
	users := flag.Int("users", 25, "number of fake app users to create")
	clean := flag.Bool("clean", false, "remove all seeded data instead of creating it")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := database.Initialize(cfg.DatabaseURL, false); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	seeder := seed.New(database.DB)
	ctx := context.Background()

	if *clean {
		if err := seeder.Clean(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "clean failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("database cleaned")
		return
	}

	if err := seeder.SeedDev(ctx, *users); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d users plus feed configs, hashtags, and engagement\n", *users)
}
