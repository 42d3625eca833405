package main

import (
	"context"
	"log"
	"net"

	"go.uber.org/zap"

	"github.com/pageza/forkful/backend/config"
	"github.com/pageza/forkful/backend/internal/api"
	"github.com/pageza/forkful/backend/internal/database"
	"github.com/pageza/forkful/backend/internal/logger"
	"github.com/pageza/forkful/backend/internal/middleware"
	"github.com/pageza/forkful/backend/internal/router"
	"github.com/pageza/forkful/backend/internal/server"
	"github.com/pageza/forkful/backend/internal/service"
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

	gormDB, err := database.NewGorm(cfg)
	if err != nil {
		logger.L.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(gormDB); err != nil {
		logger.L.Fatal("failed to migrate database", zap.Error(err))
	}

	healthDB, err := database.New(cfg)
	if err != nil {
		logger.L.Fatal("failed to open health-check connection", zap.Error(err))
	}
	defer healthDB.Close()

	// Redis is optional: without it, logout revocation falls back to the
	// in-process denylist and rate limiting is disabled.
	var denylist service.TokenDenylist
	var limiter *middleware.RateLimiter
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.L.Warn("redis unavailable, using in-memory token denylist", zap.Error(err))
	} else {
		denylist = service.NewRedisDenylist(redisClient)
		limiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeRateLimit)
	}

	var images service.ImageStore
	if cfg.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			logger.L.Fatal("failed to configure S3", zap.Error(err))
		}
		images = service.NewS3ImageStore(s3cfg)
	} else {
		images = service.NewLocalImageStore(cfg.MediaDir, cfg.MediaBaseURL)
	}

	authService := service.NewAuthService(gormDB, cfg.JWTSecret, cfg.TokenTTL, denylist)
	userService := service.NewUserService(gormDB)
	catalogService := service.NewCatalogService(gormDB)
	recipeService := service.NewRecipeService(gormDB, images)

	engine := router.SetupRouter(cfg, router.Handlers{
		Auth:    api.NewAuthHandler(authService),
		User:    api.NewUserHandler(userService, authService),
		Catalog: api.NewCatalogHandler(catalogService),
		Recipe:  api.NewRecipeHandler(recipeService, authService, limiter, cfg.ReportFontPath),
		Health:  api.NewHealthHandler(healthDB),
	})

	srv := server.NewServer(engine)
	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	if err := srv.Start(addr); err != nil {
		logger.L.Fatal("server error", zap.Error(err))
	}
}
