package gatewaysmoke

import "time"

// MetricEvent represents the type of metric event being emitted.
type MetricEvent string

const (
	// MetricEventRequestSent fires after every gateway round trip, including
	// those that ended in a transport error.
	MetricEventRequestSent MetricEvent = "request_sent"

	// MetricEventProbeCompleted fires once per probe with its pass/fail outcome.
	MetricEventProbeCompleted MetricEvent = "probe_completed"
)

// MetricEventData is implemented by all metric event data structures.
// Callbacks type-switch on the concrete type to reach event specific fields.
type MetricEventData interface {
	EventType() MetricEvent
}

// PerformanceMetrics contains timing information for one operation.
//
// Thread Safety: instances are immutable after creation. SubOperations is
// created fresh for each event and never modified after it is emitted.
type PerformanceMetrics struct {
	// ProcessingDuration is the total time spent on the operation.
	ProcessingDuration time.Duration `json:"processing_duration"`

	// SubOperations breaks the total down, e.g. "build" and "send".
	SubOperations map[string]time.Duration `json:"sub_operations,omitempty"`
}

// RequestSentData describes a single request to the gateway.
type RequestSentData struct {
	RequestID  string `json:"request_id"`
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	BodyBytes  int    `json:"body_bytes"`

	// TransportError is set when no HTTP response was received.
	TransportError string `json:"transport_error,omitempty"`

	Performance PerformanceMetrics `json:"performance"`
}

func (d RequestSentData) EventType() MetricEvent {
	return MetricEventRequestSent
}

// ProbeCompletedData describes the outcome of one smoke probe.
type ProbeCompletedData struct {
	RunID      string `json:"run_id"`
	Probe      string `json:"probe"`
	Passed     bool   `json:"passed"`
	StatusCode int    `json:"status_code"`

	// Model and TotalTokens come from the response body and are empty when
	// the gateway does not report them.
	Model       string `json:"model,omitempty"`
	TotalTokens int64  `json:"total_tokens,omitempty"`

	// Error holds the failure message when Passed is false.
	Error string `json:"error,omitempty"`

	Performance PerformanceMetrics `json:"performance"`
}

func (d ProbeCompletedData) EventType() MetricEvent {
	return MetricEventProbeCompleted
}
