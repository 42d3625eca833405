package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "forkful", cfg.DBName)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 0, cfg.RecipeRateLimit)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("RECIPE_RATE_LIMIT", "5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.RecipeRateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL_HOURS", "not-a-number")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	t.Run("missing jwt secret", func(t *testing.T) {
		err := ValidateConfig(&Config{Environment: Development})
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("production requires db password", func(t *testing.T) {
		err := ValidateConfig(&Config{Environment: Production, JWTSecret: "s"})
		assert.ErrorContains(t, err, "DB_PASSWORD")
	})

	t.Run("negative rate limit", func(t *testing.T) {
		err := ValidateConfig(&Config{JWTSecret: "s", RecipeRateLimit: -1})
		assert.ErrorContains(t, err, "RECIPE_RATE_LIMIT")
	})

	t.Run("s3 bucket needs a region", func(t *testing.T) {
		err := ValidateConfig(&Config{JWTSecret: "s", S3Bucket: "bucket"})
		assert.ErrorContains(t, err, "AWS_REGION")
	})

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateConfig(&Config{JWTSecret: "s"}))
	})
}
