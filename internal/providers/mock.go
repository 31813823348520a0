package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is a Generator for testing and offline runs.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int    // Fail after N requests (0 = never)
	FailOn       []int  // Fail on these 1-based request numbers
	Err          error  // Returned instead of the default failure error
	ResponseText string // Returned on success
	ModelName    string

	// Respond, when set, computes the response text per request.
	Respond func(req *Request) string

	// State
	requestCount atomic.Int64
	mu           sync.Mutex
	requests     []Request
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: "{}",
		ModelName:    "mock-model",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Model returns the mock model name.
func (c *MockClient) Model() string {
	return c.ModelName
}

// Generate records the request and returns the configured response.
func (c *MockClient) Generate(ctx context.Context, req *Request) (string, error) {
	if req == nil {
		return "", fmt.Errorf("request is required")
	}
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, *req)
	c.mu.Unlock()

	// Check if we should fail
	if c.ShouldFail || c.failsOn(int(count)) {
		return "", c.failure("mock client configured to fail")
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return "", c.failure(fmt.Sprintf("mock client failed after %d requests", c.FailAfter))
	}

	// Simulate latency
	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if c.Respond != nil {
		return c.Respond(req), nil
	}
	return c.ResponseText, nil
}

func (c *MockClient) failsOn(n int) bool {
	for _, f := range c.FailOn {
		if f == n {
			return true
		}
	}
	return false
}

func (c *MockClient) failure(msg string) error {
	if c.Err != nil {
		return c.Err
	}
	return fmt.Errorf("%s", msg)
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns a copy of every request received, in order.
func (c *MockClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

// Reset clears the request counter and history.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
	c.mu.Lock()
	c.requests = nil
	c.mu.Unlock()
}

// Verify interface
var _ Generator = (*MockClient)(nil)
