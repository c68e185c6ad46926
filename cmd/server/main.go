package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/iskolarhub/iskolarhub-backend/internal/api"
	"github.com/iskolarhub/iskolarhub-backend/internal/db"
	"github.com/iskolarhub/iskolarhub-backend/internal/matching"
)

func main() {
	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	weights, err := matching.DefaultWeights()
	if err != nil {
		log.Fatalf("Failed to load scoring weights: %v", err)
	}
	log.Printf("Scoring policy %s loaded (max score %d)", weights.Version, weights.MaxPossibleScore())

	srv := api.NewServer(pool, weights)

	if err := srv.Sweeper.Start(); err != nil {
		log.Fatalf("Failed to start deadline sweeper: %v", err)
	}
	defer srv.Sweeper.Stop()

	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
