// Package gatewaysmoke sends smoke-test requests to a chat/vision API gateway
// and checks that it answers 200.
//
// The gateway speaks an Azure-style dialect: the deployment is part of the URL
// path, the API version is a query parameter and authentication is a pair of
// client_id / client_secret headers. Bodies are not OpenAI SDK types (the
// vision content list mixes an {"image": ...} object with a bare string), so
// the client posts pre-built JSON through openai-go's raw request path and
// keeps the SDK for transport, headers and retry control.
//
// CONCURRENCY SUMMARY:
//   - Client: safe for concurrent use once built; probes are still run one at a time
//   - Probe / Result: plain values
package gatewaysmoke

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Request is one POST to the gateway: where it goes and the JSON it carries.
type Request struct {
	Endpoint Endpoint
	Body     []byte
}

// Client sends requests to the gateway with a fixed set of credentials, API
// version and TLS settings.
//
// All fields are set during New (or ApplyOptions) and never modified by a
// request, so one Client may be shared.
type Client struct {
	api             openai.Client
	logger          *slog.Logger
	metricsCallback func(MetricEventData)

	credentials        Credentials
	apiVersion         string
	insecureSkipVerify bool
	httpClient         *http.Client
	timeout            time.Duration
	requestOptions     []option.RequestOption
}

// New creates a gateway client with optional configurations.
func New(opts ...Option) *Client {
	client := &Client{
		logger:     discardLogger(),
		apiVersion: DefaultAPIVersion,
	}

	ApplyOptions(client, opts)
	return client
}

// ApplyOptions applies opts to an existing client and rebuilds its transport.
func ApplyOptions(client *Client, opts []Option) {
	for _, opt := range opts {
		opt(client)
	}
	client.init()
}

func (c *Client) init() {
	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = newHTTPClient(c.insecureSkipVerify)
	}

	c.api = openai.NewClient(
		option.WithHTTPClient(httpClient),
		// A smoke test reports what the gateway did the first time.
		option.WithMaxRetries(0),
		// The SDK picks up OPENAI_* variables from the environment; none of
		// them belong on a gateway request.
		option.WithHeaderDel("authorization"),
		option.WithHeaderDel("openai-organization"),
		option.WithHeaderDel("openai-project"),
	)
}

func newHTTPClient(insecureSkipVerify bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402 -- explicit opt-in via WithInsecureSkipVerify
		}
	}
	return &http.Client{Transport: transport}
}

// Send posts req.Body to req.Endpoint.
//
// A response with any status code is returned with a nil error; deciding
// whether the status is acceptable is the caller's job. A non-nil error means
// no HTTP response was received at all.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	if err := req.Endpoint.Validate(); err != nil {
		return nil, err
	}

	requestID := c.newID("req_")
	url := req.Endpoint.URL()

	var captured capturedResponse
	var httpResp *http.Response

	opts := []option.RequestOption{
		option.WithBaseURL(req.Endpoint.BaseURL),
		option.WithQuery("api-version", c.apiVersion),
		option.WithHeader("Accept", "application/json"),
		option.WithRequestBody("application/json", req.Body),
		option.WithMiddleware(captureResponse(&captured)),
	}
	opts = append(opts, c.credentialOptions()...)
	if c.timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(c.timeout))
	}
	opts = append(opts, c.requestOptions...)

	c.logger.Debug("Sending gateway request",
		"request_id", requestID,
		"url", url,
		"api_version", c.apiVersion,
		"body_bytes", len(req.Body))

	startTime := time.Now()
	err := c.api.Post(ctx, req.Endpoint.Path(), nil, &httpResp, opts...)
	duration := time.Since(startTime)

	if httpResp != nil && httpResp.Body != nil {
		_ = httpResp.Body.Close()
	}

	if !captured.received {
		if err == nil {
			err = errors.New("no response received")
		}
		c.logger.Debug("Gateway request failed before a response arrived",
			"request_id", requestID,
			"url", url,
			"error", err)
		c.emitMetric(RequestSentData{
			RequestID:      requestID,
			URL:            url,
			BodyBytes:      len(req.Body),
			TransportError: err.Error(),
			Performance:    PerformanceMetrics{ProcessingDuration: duration},
		})
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}

	// err is an *openai.Error for non-2xx answers; the captured response
	// already holds everything it would tell us.
	resp := &Response{
		RequestID:  requestID,
		StatusCode: captured.statusCode,
		Header:     captured.header,
		Body:       captured.body,
		Duration:   duration,
	}

	c.logger.Debug("Gateway request completed",
		"request_id", requestID,
		"url", url,
		"status_code", resp.StatusCode,
		"response_bytes", len(resp.Body),
		"duration", duration)

	c.emitMetric(RequestSentData{
		RequestID:   requestID,
		URL:         url,
		StatusCode:  resp.StatusCode,
		BodyBytes:   len(req.Body),
		Performance: PerformanceMetrics{ProcessingDuration: duration},
	})

	return resp, nil
}

// Chat sends a chat completions request carrying messages.
func (c *Client) Chat(ctx context.Context, endpoint Endpoint, messages ...Message) (*Response, error) {
	body, err := BuildChatBody(messages...)
	if err != nil {
		return nil, fmt.Errorf("failed to build chat body: %w", err)
	}
	return c.Send(ctx, Request{Endpoint: endpoint, Body: body})
}

// Vision sends img together with a text instruction.
func (c *Client) Vision(ctx context.Context, endpoint Endpoint, img Image, instruction string) (*Response, error) {
	body, err := BuildVisionBody(img.Base64(), instruction)
	if err != nil {
		return nil, fmt.Errorf("failed to build vision body: %w", err)
	}
	return c.Send(ctx, Request{Endpoint: endpoint, Body: body})
}

func (c *Client) credentialOptions() []option.RequestOption {
	var opts []option.RequestOption
	if c.credentials.ClientID != "" {
		opts = append(opts, option.WithHeader("client_id", c.credentials.ClientID))
	}
	if c.credentials.ClientSecret != "" {
		opts = append(opts, option.WithHeader("client_secret", c.credentials.ClientSecret))
	}
	return opts
}

// capturedResponse records the raw HTTP answer before the SDK turns non-2xx
// statuses into errors and consumes the body.
type capturedResponse struct {
	received   bool
	statusCode int
	header     http.Header
	body       []byte
}

func captureResponse(dst *capturedResponse) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		res, err := next(req)
		if err != nil || res == nil {
			return res, err
		}

		body, readErr := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}
		res.Body = io.NopCloser(bytes.NewReader(body))

		dst.received = true
		dst.statusCode = res.StatusCode
		dst.header = res.Header.Clone()
		dst.body = body
		return res, nil
	}
}

// emitMetric safely calls the metrics callback if one is configured.
func (c *Client) emitMetric(data MetricEventData) {
	if c.metricsCallback == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Metrics callback panicked - metrics collection failed but probe continues",
				"panic", r,
				"event_type", data.EventType())
		}
	}()

	c.metricsCallback(data)
}

// newID returns prefix followed by a UUIDv7, whose timestamp prefix keeps ids
// from one run sortable in logs.
func (c *Client) newID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		c.logger.Error("UUIDv7 generation failed, falling back to UUIDv4",
			"error", err,
			"impact", "loss of timestamp-based ordering")
		id = uuid.New()
	}
	return prefix + id.String()
}
