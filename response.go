package gatewaysmoke

import (
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Response is what the gateway sent back for one request. The body is kept for
// diagnostics only; smoke tests assert on StatusCode alone.
type Response struct {
	RequestID  string
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports whether the gateway answered 200.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}

// Content returns the first choice's message content, or "" when the body is
// not a chat completion.
func (r *Response) Content() string {
	if r == nil || !gjson.ValidBytes(r.Body) {
		return ""
	}
	return gjson.GetBytes(r.Body, "choices.0.message.content").String()
}

// Model returns the model name reported by the gateway, if any.
func (r *Response) Model() string {
	if r == nil || !gjson.ValidBytes(r.Body) {
		return ""
	}
	return gjson.GetBytes(r.Body, "model").String()
}

// TotalTokens returns usage.total_tokens, or 0 when absent.
func (r *Response) TotalTokens() int64 {
	if r == nil || !gjson.ValidBytes(r.Body) {
		return 0
	}
	return gjson.GetBytes(r.Body, "usage.total_tokens").Int()
}
