//go:build e2e

package e2e

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	gatewaysmoke "github.com/juburr/gateway-smoke"
)

// TestClient wraps the gateway client for testing
type TestClient struct {
	client *gatewaysmoke.Client
	config TestConfig
}

// NewTestClient creates a client that logs warnings and errors to stderr.
func NewTestClient(t *testing.T) *TestClient {
	return newTestClient(t, slog.LevelWarn)
}

// NewTestClientWithVerboseLogging creates a test client with debug logging
func NewTestClientWithVerboseLogging(t *testing.T) *TestClient {
	return newTestClient(t, slog.LevelDebug)
}

func newTestClient(t *testing.T, level slog.Level) *TestClient {
	t.Helper()
	config := LoadTestConfig(t)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts := append([]gatewaysmoke.Option{gatewaysmoke.WithLogger(logger)}, config.Gateway.ClientOptions()...)

	return &TestClient{
		client: gatewaysmoke.New(opts...),
		config: config,
	}
}

// CreateTimeoutContext creates a context with the configured timeout
func (tc *TestClient) CreateTimeoutContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(tc.config.Timeout)*time.Second)
}
