package config

import "os"

// Environment identifies the runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	Production  Environment = "production"
)

// GetEnvironment returns the current environment, defaulting to development
func GetEnvironment() Environment {
	switch os.Getenv("APP_ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}
