package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/noah-isme/kasir-scan/internal/catalog"
	"github.com/noah-isme/kasir-scan/internal/obs"
)

func main() {
	file := flag.String("file", "", "JSON catalog file (code -> product); defaults to the built-in catalog")
	migrate := flag.Bool("migrate", true, "apply schema migrations before seeding")
	flag.Parse()

	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	entries := catalog.DefaultEntries()
	if *file != "" {
		static, err := catalog.LoadFile(*file)
		if err != nil {
			logger.Fatal().Err(err).Msg("load catalog file")
		}
		entries, _ = static.List(context.Background())
	}

	if *migrate {
		if err := catalog.Migrate(dbURL); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	n, err := catalog.Upsert(ctx, pool, entries)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed catalog")
	}
	logger.Info().Int("products", n).Msg("seeding completed")
}
