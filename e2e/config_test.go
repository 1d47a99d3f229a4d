//go:build e2e

package e2e

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	gatewaysmoke "github.com/juburr/gateway-smoke"
)

// TestConfig holds configuration for e2e tests
type TestConfig struct {
	Gateway gatewaysmoke.Config
	EnvFile string
	Timeout int // seconds
}

// LoadTestConfig loads the gateway configuration from the environment, after
// merging E2E_ENV_FILE (default ../.env) when it exists. Relative env file and
// image paths are taken from this directory, not from where go test was run.
func LoadTestConfig(t *testing.T) TestConfig {
	t.Helper()

	dir := sourceDir()
	envFile := gatewaysmoke.ResolveImagePath(dir, getEnvOrDefault("E2E_ENV_FILE", "../.env"))
	cfg, err := gatewaysmoke.LoadConfigWithEnvFile(envFile, true)
	if err != nil {
		t.Fatalf("failed to load e2e configuration: %v", err)
	}

	config := TestConfig{
		Gateway: cfg,
		EnvFile: envFile,
		Timeout: getEnvIntOrDefault("E2E_TIMEOUT_SECONDS", 60),
	}
	config.Gateway.ImagePath = gatewaysmoke.ResolveImagePath(dir, cfg.ImagePath)
	if config.Gateway.Timeout == 0 {
		config.Gateway.Timeout = time.Duration(config.Timeout) * time.Second
	}
	return config
}

// sourceDir is the directory holding this file.
func sourceDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	return filepath.Dir(file)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
