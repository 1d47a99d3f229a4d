package gatewaysmoke

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrProbeFailed is wrapped by every probe failure: a request that could not
// be built, a transport error, or a non-200 response. Callers that only need
// pass/fail check errors.Is(err, ErrProbeFailed); the cause stays reachable
// through errors.As.
var ErrProbeFailed = errors.New("probe failed")

// ErrImageUnreadable is returned when the vision image cannot be loaded.
var ErrImageUnreadable = errors.New("image unreadable")

// StatusError reports a gateway response whose status code was not the
// expected one.
type StatusError struct {
	StatusCode int
	Expected   int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := string(e.Body)
	if len(body) > maxErrorBodyLength {
		cut := maxErrorBodyLength
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return fmt.Sprintf("gateway request failed with status %d: %s", e.StatusCode, body)
}

// maxErrorBodyLength caps how much of a response body ends up in error text.
const maxErrorBodyLength = 512

// probeError wraps cause so that it matches both ErrProbeFailed and cause.
type probeError struct {
	stage string
	cause error
}

func (e *probeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrProbeFailed, e.stage, e.cause)
}

func (e *probeError) Unwrap() []error {
	return []error{ErrProbeFailed, e.cause}
}

func failProbe(stage string, cause error) error {
	return &probeError{stage: stage, cause: cause}
}
