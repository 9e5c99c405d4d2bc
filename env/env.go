package env

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Best effort: a missing .env means configuration comes from the real
	// environment.
	_ = godotenv.Load()
}

// GetEnv reads an environment variable converted to the type of the default.
func GetEnv[T any](nameEnv string, defaultValue T) T {
	valueStr := os.Getenv(nameEnv)
	if valueStr == "" {
		return defaultValue
	}

	var value any

	switch any(defaultValue).(type) {
	case int:
		v, err := strconv.Atoi(valueStr)
		if err != nil {
			log.Printf("env: %s is not an int (%q), using default", nameEnv, valueStr)
			return defaultValue
		}
		value = v
	case bool:
		v, err := strconv.ParseBool(valueStr)
		if err != nil {
			log.Printf("env: %s is not a bool (%q), using default", nameEnv, valueStr)
			return defaultValue
		}
		value = v
	default:
		value = valueStr
	}

	return value.(T)
}
