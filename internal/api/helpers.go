package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/forkful/backend/internal/logger"
	"github.com/pageza/forkful/backend/internal/service"
)

const defaultPageSize = 6

// respondError maps service sentinel errors onto HTTP statuses. Anything
// unrecognized is logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrAlreadyFollowing),
		errors.Is(err, service.ErrAlreadyFavorited),
		errors.Is(err, service.ErrAlreadyInCart),
		errors.Is(err, service.ErrTagNotFound),
		errors.Is(err, service.ErrIngredientNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRecipeNotFound),
		errors.Is(err, service.ErrNotFollowing),
		errors.Is(err, service.ErrNotFavorited),
		errors.Is(err, service.ErrNotInCart):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.L.Error("unhandled error", zap.Error(err),
			zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parsePage reads the page and limit query params with sane floors.
func parsePage(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 {
		limit = defaultPageSize
	}
	return page, limit
}

// parseRecipesLimit reads the optional recipes_limit param; zero means
// no truncation.
func parseRecipesLimit(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("recipes_limit"))
	if n < 0 {
		return 0
	}
	return n
}

// parseID parses a uuid path param, writing a 404 on garbage so that
// malformed ids read the same as missing rows.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
