package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/forkful/backend/internal/database"
	"github.com/pageza/forkful/backend/internal/model"
	"github.com/pageza/forkful/backend/internal/service"
)

// TestDB holds the test database and services
type TestDB struct {
	DB             *gorm.DB
	AuthService    *service.AuthService
	UserService    *service.UserService
	CatalogService *service.CatalogService
	RecipeService  *service.RecipeService
}

// SetupTestDB creates an in-memory database with the full schema and the
// service stack wired against it.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access test database: %v", err)
	}
	// A single connection keeps the in-memory schema alive.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return &TestDB{
		DB:             db,
		AuthService:    service.NewAuthService(db, "test-secret", time.Hour, nil),
		UserService:    service.NewUserService(db),
		CatalogService: service.NewCatalogService(db),
		RecipeService:  service.NewRecipeService(db, service.NewLocalImageStore(t.TempDir(), "/media")),
	}
}

// CreateTestUserAndToken creates a user and returns their ID and a valid token
func CreateTestUserAndToken(t *testing.T, db *TestDB) (uuid.UUID, string) {
	t.Helper()
	return createUser(t, db, false)
}

// CreateTestSuperuserAndToken creates a superuser and returns their ID and token
func CreateTestSuperuserAndToken(t *testing.T, db *TestDB) (uuid.UUID, string) {
	t.Helper()
	return createUser(t, db, true)
}

func createUser(t *testing.T, db *TestDB, superuser bool) (uuid.UUID, string) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	suffix := uuid.New().String()[:8]
	user := model.User{
		Email:        fmt.Sprintf("testuser+%s@example.com", suffix),
		Username:     fmt.Sprintf("testuser_%s", suffix),
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hashed),
		IsSuperuser:  superuser,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := db.AuthService.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user.ID, token
}

// SetupTestRouter creates a router with every handler registered.
func SetupTestRouter(t *testing.T, db *TestDB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	NewAuthHandler(db.AuthService).RegisterRoutes(v1)
	NewUserHandler(db.UserService, db.AuthService).RegisterRoutes(v1)
	NewCatalogHandler(db.CatalogService).RegisterRoutes(v1)
	NewRecipeHandler(db.RecipeService, db.AuthService, nil, "").RegisterRoutes(v1)
	NewHealthHandler(nil).RegisterRoutes(v1)

	return router
}

// PerformRequest makes an HTTP request against the test router. An empty
// token sends an anonymous request.
func PerformRequest(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	router.ServeHTTP(w, req)
	return w
}

// CreateTestTag inserts a tag directly.
func CreateTestTag(t *testing.T, db *TestDB, name, color, slug string) model.Tag {
	t.Helper()
	tag := model.Tag{Name: name, Color: color, Slug: slug}
	if err := db.DB.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestIngredient inserts an ingredient directly.
func CreateTestIngredient(t *testing.T, db *TestDB, name, unit string) model.Ingredient {
	t.Helper()
	ingredient := model.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.DB.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ingredient
}
