package utils

import "os"

// Getenv returns the named environment variable, or fallback when it is
// unset or empty. All runtime configuration in cmd/server goes through it.
func Getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
