package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that all required configuration values are present
func ValidateConfig(cfg *Config) error {
	var missing []string

	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.DBPassword == "" && cfg.Environment == Production {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if cfg.RecipeRateLimit < 0 {
		return fmt.Errorf("RECIPE_RATE_LIMIT must not be negative, got %d", cfg.RecipeRateLimit)
	}
	if cfg.S3Bucket != "" && cfg.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required when S3_BUCKET_NAME is set")
	}

	return nil
}
