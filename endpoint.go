package gatewaysmoke

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultAPIVersion is sent as the api-version query parameter on every request.
	DefaultAPIVersion = "2023-07-01-preview"

	// DefaultChatBaseURL is the gateway prefix for chat deployments.
	DefaultChatBaseURL = "https://eur-sdr-int-pub.nestle.com/api/dv-exp-sandbox-openai-api/1/openai/deployments"

	// DefaultVisionBaseURL is the gateway prefix for the vision service.
	DefaultVisionBaseURL = "https://eur-sdr-int-pub.nestle.com/api/dv-exp-sandbox-openai-api/1/genai"
)

// Endpoint identifies one gateway operation. The final URL is the plain
// concatenation BaseURL + Deployment + Action + ActionExtension, so every
// segment carries its own leading slash (for example "/ChatGPTv16k").
type Endpoint struct {
	BaseURL         string
	Deployment      string
	Action          string
	ActionExtension string
}

// ChatEndpoint returns the chat completions endpoint for a deployment.
func ChatEndpoint(baseURL, deployment string) Endpoint {
	return Endpoint{
		BaseURL:         baseURL,
		Deployment:      deployment,
		Action:          "/chat",
		ActionExtension: "/completions",
	}
}

// VisionEndpoint returns the vision completions endpoint for a deployment.
func VisionEndpoint(baseURL, deployment string) Endpoint {
	return Endpoint{
		BaseURL:         baseURL,
		Deployment:      deployment,
		Action:          "/gptv",
		ActionExtension: "/completions",
	}
}

// DefaultChatEndpoint is the ChatGPTv16k deployment on the sandbox gateway.
func DefaultChatEndpoint() Endpoint {
	return ChatEndpoint(DefaultChatBaseURL, "/ChatGPTv16k")
}

// DefaultVisionEndpoint is the Azure GPT-V deployment on the sandbox gateway.
func DefaultVisionEndpoint() Endpoint {
	return VisionEndpoint(DefaultVisionBaseURL, "/Azure")
}

// Path returns the segments after the base URL as a "./"-prefixed relative
// reference, so it resolves under a base URL that ends in "/". The prefix
// keeps a first segment such as "gpt-4o:2024" from parsing as a URL scheme.
func (e Endpoint) Path() string {
	return "./" + strings.TrimPrefix(e.Deployment+e.Action+e.ActionExtension, "/")
}

// URL returns the full endpoint URL without query parameters.
func (e Endpoint) URL() string {
	return e.BaseURL + e.Deployment + e.Action + e.ActionExtension
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	return e.URL()
}

// Validate reports whether the endpoint can be turned into an absolute URL.
func (e Endpoint) Validate() error {
	if e.BaseURL == "" {
		return fmt.Errorf("endpoint validation failed: base URL is empty")
	}
	u, err := url.Parse(e.URL())
	if err != nil {
		return fmt.Errorf("endpoint validation failed: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint validation failed: %q is not an absolute URL", e.URL())
	}
	return nil
}
