// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	integEnvOnce sync.Once
	integEnvVars map[string]string
)

func loadIntegEnvFile() map[string]string {
	integEnvOnce.Do(func() {
		integEnvVars = map[string]string{}
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		vars, err := godotenv.Read(filepath.Join(home, ".config", "bridge", ".env.integ-test"))
		if err != nil {
			return
		}
		integEnvVars = vars
	})
	return integEnvVars
}

// IntegEnv returns the value of key from the environment, falling back to
// ~/.config/bridge/.env.integ-test if the env var is not set.
func IntegEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return loadIntegEnvFile()[key]
}
