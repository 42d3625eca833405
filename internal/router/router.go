package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/forkful/backend/config"
	"github.com/pageza/forkful/backend/internal/api"
	"github.com/pageza/forkful/backend/internal/middleware"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	Auth    *api.AuthHandler
	User    *api.UserHandler
	Catalog *api.CatalogHandler
	Recipe  *api.RecipeHandler
	Health  *api.HealthHandler
}

// SetupRouter configures the application routes. Each handler gates its own
// routes, so nothing here is wrapped in a blanket auth group.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Images stored locally are served by the app itself.
	if cfg.S3Bucket == "" {
		router.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}

	v1 := router.Group("/api/v1")
	h.Health.RegisterRoutes(v1)
	h.Auth.RegisterRoutes(v1)
	h.User.RegisterRoutes(v1)
	h.Catalog.RegisterRoutes(v1)
	h.Recipe.RegisterRoutes(v1)

	return router
}
