package env

import "os"

// Prefix is the environment namespace shared with pkg/config.
const Prefix = "EVOLVE_"

// Get returns the value of the given environment variable or a fallback.
// The prefixed form (EVOLVE_<key>) wins over the bare key.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
