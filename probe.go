package gatewaysmoke

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	ChatProbeName   = "chat-completion"
	VisionProbeName = "vision"
)

// Probe is one smoke test: build a body, send it to Endpoint, expect a status.
type Probe struct {
	Name     string
	Endpoint Endpoint

	// Build produces the request body. It runs before any network activity, so
	// a failing Build means the gateway is never contacted.
	Build func() ([]byte, error)

	// ExpectedStatus defaults to 200 when zero.
	ExpectedStatus int
}

// ChatProbe asks question on the chat endpoint.
func ChatProbe(endpoint Endpoint, question string) Probe {
	return Probe{
		Name:     ChatProbeName,
		Endpoint: endpoint,
		Build: func() ([]byte, error) {
			return BuildChatBody(UserMessage(question))
		},
	}
}

// VisionProbe sends the image at imagePath with instruction to the vision
// endpoint. The file is read when the probe runs, not when it is created.
func VisionProbe(endpoint Endpoint, imagePath, instruction string) Probe {
	return Probe{
		Name:     VisionProbeName,
		Endpoint: endpoint,
		Build: func() ([]byte, error) {
			encoded, err := EncodeImageFile(imagePath)
			if err != nil {
				return nil, err
			}
			return BuildVisionBody(encoded, instruction)
		},
	}
}

// Result is the outcome of running a Probe. Err is nil exactly when the probe
// passed; otherwise it wraps ErrProbeFailed.
type Result struct {
	RunID      string
	Probe      string
	URL        string
	StatusCode int
	Content    string
	Duration   time.Duration
	Err        error

	// Model and TotalTokens are what the gateway reported, when it did.
	Model       string
	TotalTokens int64
}

// Passed reports whether the probe succeeded.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Run executes p: build, send, assert. It never returns early without a
// Result; every failure is recorded in Result.Err.
func (c *Client) Run(ctx context.Context, p Probe) (result Result) {
	result = Result{
		RunID: c.newID("probe_"),
		Probe: p.Name,
		URL:   p.Endpoint.URL(),
	}
	subOps := make(map[string]time.Duration, 2)
	startTime := time.Now()

	defer func() {
		result.Duration = time.Since(startTime)
		c.finishProbe(result, subOps)
	}()

	if p.Build == nil {
		result.Err = failProbe("build", fmt.Errorf("probe %q has no body builder", p.Name))
		return result
	}

	buildStart := time.Now()
	body, err := p.Build()
	subOps["build"] = time.Since(buildStart)
	if err != nil {
		result.Err = failProbe("build", err)
		return result
	}

	sendStart := time.Now()
	resp, err := c.Send(ctx, Request{Endpoint: p.Endpoint, Body: body})
	subOps["send"] = time.Since(sendStart)
	if err != nil {
		result.Err = failProbe("send", err)
		return result
	}

	result.StatusCode = resp.StatusCode
	result.Content = resp.Content()
	result.Model = resp.Model()
	result.TotalTokens = resp.TotalTokens()

	expected := p.ExpectedStatus
	if expected == 0 {
		expected = http.StatusOK
	}
	if resp.StatusCode != expected {
		result.Err = failProbe("assert", &StatusError{
			StatusCode: resp.StatusCode,
			Expected:   expected,
			Body:       resp.Body,
		})
	}
	return result
}

// RunAll runs probes one after another in the given order and returns every
// result, including those after a failure.
func (c *Client) RunAll(ctx context.Context, probes ...Probe) []Result {
	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		results = append(results, c.Run(ctx, p))
	}
	return results
}

// AllPassed reports whether every result passed. An empty slice passes.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed() {
			return false
		}
	}
	return true
}

func (c *Client) finishProbe(result Result, subOps map[string]time.Duration) {
	data := ProbeCompletedData{
		RunID:       result.RunID,
		Probe:       result.Probe,
		Passed:      result.Passed(),
		StatusCode:  result.StatusCode,
		Model:       result.Model,
		TotalTokens: result.TotalTokens,
		Performance: PerformanceMetrics{
			ProcessingDuration: result.Duration,
			SubOperations:      subOps,
		},
	}

	if result.Passed() {
		c.logger.Info("Probe passed",
			"run_id", result.RunID,
			"probe", result.Probe,
			"status_code", result.StatusCode,
			"model", result.Model,
			"total_tokens", result.TotalTokens,
			"duration", result.Duration)
	} else {
		data.Error = result.Err.Error()
		c.logger.Error("Probe failed",
			"run_id", result.RunID,
			"probe", result.Probe,
			"url", result.URL,
			"status_code", result.StatusCode,
			"error", result.Err)
	}

	c.emitMetric(data)
}
