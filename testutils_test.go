package gatewaysmoke_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"

	gatewaysmoke "github.com/juburr/gateway-smoke"
)

const (
	testClientID     = "test-client-id"
	testClientSecret = "test-client-secret"

	chatCompletionBody = `{
		"id": "chatcmpl-123",
		"object": "chat.completion",
		"model": "gpt-35-turbo-16k",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "There are 27 countries in the European Union."},
			"finish_reason": "stop"
		}],
		"usage": {"prompt_tokens": 17, "completion_tokens": 10, "total_tokens": 27}
	}`
)

// recordedRequest is a snapshot of one request received by fakeGateway.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fakeGateway records every request and answers with a fixed status and body.
type fakeGateway struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeGateway(t *testing.T, status int, body string) *fakeGateway {
	t.Helper()
	g := &fakeGateway{status: status, body: body}
	g.server = httptest.NewServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.server.Close)
	return g
}

func newTLSFakeGateway(t *testing.T, status int, body string) *fakeGateway {
	t.Helper()
	g := &fakeGateway{status: status, body: body}
	g.server = httptest.NewTLSServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.server.Close)
	return g
}

func (g *fakeGateway) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	g.mu.Lock()
	g.requests = append(g.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	status, respBody := g.status, g.body
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, respBody)
}

func (g *fakeGateway) Requests() []recordedRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]recordedRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

func (g *fakeGateway) Hits() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *fakeGateway) SetResponse(status int, body string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = status
	g.body = body
}

// chatEndpoint mirrors the production chat URL layout under the fake server.
func (g *fakeGateway) chatEndpoint() gatewaysmoke.Endpoint {
	return gatewaysmoke.ChatEndpoint(g.server.URL+"/api/sandbox/1/openai/deployments", "/ChatGPTv16k")
}

// visionEndpoint mirrors the production vision URL layout under the fake server.
func (g *fakeGateway) visionEndpoint() gatewaysmoke.Endpoint {
	return gatewaysmoke.VisionEndpoint(g.server.URL+"/api/sandbox/1/genai", "/Azure")
}

func newTestClient(opts ...gatewaysmoke.Option) *gatewaysmoke.Client {
	base := []gatewaysmoke.Option{
		gatewaysmoke.WithCredentials(gatewaysmoke.Credentials{
			ClientID:     testClientID,
			ClientSecret: testClientSecret,
		}),
	}
	return gatewaysmoke.New(append(base, opts...)...)
}

// unsetEnv removes keys for the duration of the test and restores them after.
// t.Setenv(key, "") is not enough when code distinguishes unset from empty.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		prev, ok := os.LookupEnv(key)
		_ = os.Unsetenv(key)
		t.Cleanup(func() {
			if ok {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// testImagePath is the fixture used by the vision tests.
const testImagePath = "testdata/2birds.jpg"
