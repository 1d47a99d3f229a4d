package gatewaysmoke

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names. The credential names are lower case because
// that is how the gateway's consumers have always exported them.
const (
	EnvClientID           = "client_id"
	EnvClientSecret       = "client_secret"
	EnvChatBaseURL        = "GATEWAY_SMOKE_CHAT_BASE_URL"
	EnvChatDeployment     = "GATEWAY_SMOKE_CHAT_DEPLOYMENT"
	EnvVisionBaseURL      = "GATEWAY_SMOKE_VISION_BASE_URL"
	EnvVisionDeployment   = "GATEWAY_SMOKE_VISION_DEPLOYMENT"
	EnvAPIVersion         = "GATEWAY_SMOKE_API_VERSION"
	EnvImagePath          = "GATEWAY_SMOKE_IMAGE_PATH"
	EnvInsecureSkipVerify = "GATEWAY_SMOKE_INSECURE_SKIP_VERIFY"
	EnvTimeoutSeconds     = "GATEWAY_SMOKE_TIMEOUT_SECONDS"
)

// Config holds everything needed to run the smoke probes.
type Config struct {
	ClientID     string
	ClientSecret string

	ChatBaseURL      string
	ChatDeployment   string
	VisionBaseURL    string
	VisionDeployment string
	APIVersion       string

	ImagePath          string
	InsecureSkipVerify bool
	Timeout            time.Duration // 0 = no timeout
}

// LoadConfig reads configuration from the process environment. Credentials
// are not validated: a missing client_id or client_secret is simply not sent.
func LoadConfig() Config {
	return Config{
		ClientID:           os.Getenv(EnvClientID),
		ClientSecret:       os.Getenv(EnvClientSecret),
		ChatBaseURL:        getEnvOrDefault(EnvChatBaseURL, DefaultChatBaseURL),
		ChatDeployment:     getEnvOrDefault(EnvChatDeployment, "/ChatGPTv16k"),
		VisionBaseURL:      getEnvOrDefault(EnvVisionBaseURL, DefaultVisionBaseURL),
		VisionDeployment:   getEnvOrDefault(EnvVisionDeployment, "/Azure"),
		APIVersion:         getEnvOrDefault(EnvAPIVersion, DefaultAPIVersion),
		ImagePath:          getEnvOrDefault(EnvImagePath, DefaultImagePath),
		InsecureSkipVerify: getEnvBoolOrDefault(EnvInsecureSkipVerify, false),
		Timeout:            time.Duration(getEnvIntOrDefault(EnvTimeoutSeconds, 0)) * time.Second,
	}
}

// LoadConfigWithEnvFile loads path into the environment with godotenv and then
// calls LoadConfig. Variables already set in the environment take precedence
// over the file. A missing file is not an error when optional is true.
func LoadConfigWithEnvFile(path string, optional bool) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			if !(optional && errors.Is(err, fs.ErrNotExist)) {
				return Config{}, fmt.Errorf("failed to load env file %s: %w", path, err)
			}
		}
	}
	return LoadConfig(), nil
}

// Credentials returns the configured credential pair.
func (c Config) Credentials() Credentials {
	return Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
}

// ChatEndpoint returns the configured chat completions endpoint.
func (c Config) ChatEndpoint() Endpoint {
	return ChatEndpoint(c.ChatBaseURL, ensureLeadingSlash(c.ChatDeployment))
}

// VisionEndpoint returns the configured vision endpoint.
func (c Config) VisionEndpoint() Endpoint {
	return VisionEndpoint(c.VisionBaseURL, ensureLeadingSlash(c.VisionDeployment))
}

// ClientOptions translates the configuration into client options.
func (c Config) ClientOptions() []Option {
	return []Option{
		WithCredentials(c.Credentials()),
		WithAPIVersion(c.APIVersion),
		WithInsecureSkipVerify(c.InsecureSkipVerify),
		WithTimeout(c.Timeout),
	}
}

func ensureLeadingSlash(segment string) string {
	if segment == "" || strings.HasPrefix(segment, "/") {
		return segment
	}
	return "/" + segment
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
