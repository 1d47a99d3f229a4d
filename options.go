package gatewaysmoke

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3/option"
)

// Option is a function that configures the Client.
type Option func(*Client)

// Credentials are the two gateway credential headers. Empty fields are left
// out of the request entirely.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// WithCredentials sets the client_id and client_secret headers.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		c.credentials = creds
	}
}

// WithAPIVersion overrides the api-version query parameter.
// An empty version is ignored.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version == "" {
			c.logger.Warn("Empty API version provided, using default", "default", DefaultAPIVersion)
			return
		}
		c.apiVersion = version
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
//
// The sandbox gateway has historically been reached with verification turned
// off. Leave this false unless the gateway's certificate chain cannot be
// validated from the machine running the probes.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		if skip {
			c.logger.Warn("TLS certificate verification is disabled",
				"implication", "gateway identity is not checked",
				"recommendation", "install the gateway CA bundle and drop WithInsecureSkipVerify")
		}
		c.insecureSkipVerify = skip
	}
}

// WithHTTPClient supplies the underlying HTTP client. When set, the client's
// own TLS configuration is used and WithInsecureSkipVerify has no effect.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds each request. Zero, the default, means no timeout: the
// call blocks until the transport resolves or fails.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout < 0 {
			c.logger.Warn("Negative timeout not allowed",
				"supplied_timeout", timeout,
				"updated_timeout", 0)
			timeout = 0
		}
		c.timeout = timeout
	}
}

// WithRequestOptions appends raw openai-go request options, applied after the
// client's own so they can override headers or add middleware.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *Client) {
		c.requestOptions = append(c.requestOptions, opts...)
	}
}

// WithLogger sets a custom slog.Logger for the client.
//
// Logging strategy:
// - INFO: probe outcomes
// - DEBUG: request details (URL, body size, duration)
// - WARN: unsafe or ignored configuration
// - ERROR: probe failures and recovered callback panics
//
// A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger == nil {
			c.logger = discardLogger()
			return
		}
		c.logger = logger
	}
}

// WithLogLevel discards log output below level. For real output use WithLogger.
func WithLogLevel(level slog.Level) Option {
	return func(c *Client) {
		handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: level,
		})
		c.logger = slog.New(handler)
	}
}

// WithMetricsCallback sets a callback function that receives metric events.
//
// Example usage:
//
//	client := gatewaysmoke.New(
//	    gatewaysmoke.WithMetricsCallback(func(data gatewaysmoke.MetricEventData) {
//	        switch ev := data.(type) {
//	        case gatewaysmoke.ProbeCompletedData:
//	            probeDuration.Observe(ev.Performance.ProcessingDuration.Seconds())
//	        case gatewaysmoke.RequestSentData:
//	            requests.WithLabelValues(strconv.Itoa(ev.StatusCode)).Inc()
//	        }
//	    }),
//	)
//
// The callback runs synchronously on the probe's goroutine. Panics are
// recovered and logged.
func WithMetricsCallback(callback func(MetricEventData)) Option {
	return func(c *Client) {
		c.metricsCallback = callback
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}
