package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/pageza/forkful/backend/config"
	"github.com/pageza/forkful/backend/internal/database"
	"github.com/pageza/forkful/backend/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := logger.Init(string(cfg.Environment)); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewGorm(cfg)
	if err != nil {
		logger.L.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		logger.L.Fatal("migration failed", zap.Error(err))
	}
	logger.L.Info("schema migrated")
}
