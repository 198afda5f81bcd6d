package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/noah-isme/room-booking-api/pkg/config"
	"github.com/noah-isme/room-booking-api/pkg/database"
	"github.com/noah-isme/room-booking-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, logr); err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}

	result, err := database.Seed(ctx, db, logr)
	if err != nil {
		logr.Fatal("failed to seed database", zap.Error(err))
	}
	logr.Sugar().Infow("database seeded", "rooms_inserted", result.Rooms, "events_inserted", result.Events)
}
