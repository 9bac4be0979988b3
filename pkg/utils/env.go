package utils

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv loads .env files for the given environment. The environment-specific
// file (.env.production etc.) takes precedence over the base .env file.
func LoadEnv(env string) error {
	var files []string
	if env != "" {
		files = append(files, ".env."+env)
	}
	files = append(files, ".env")

	var loaded bool
	var lastErr error
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			lastErr = err
			continue
		}
		loaded = true
	}
	if !loaded {
		return fmt.Errorf("no env file loaded: %w", lastErr)
	}
	return nil
}

// GetEnv gets an environment variable value
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetIntEnv gets an environment variable as int64, returns 0 if unset or invalid
func GetIntEnv(key string) int64 {
	return cast.ToInt64(os.Getenv(key))
}

// GetBoolEnv gets an environment variable as bool, returns false if unset or invalid
func GetBoolEnv(key string) bool {
	return cast.ToBool(os.Getenv(key))
}

// GetFloatEnv gets an environment variable as float64, returns 0 if unset or invalid
func GetFloatEnv(key string) float64 {
	return cast.ToFloat64(os.Getenv(key))
}
