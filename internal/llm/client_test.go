package llm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/naysayer/internal/cache"
	"github.com/ppiankov/naysayer/internal/worker"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *CompletionResponse
	err       error

	checks   atomic.Int32
	lastReq  CompletionRequest
	requests atomic.Int32
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.requests.Add(1)
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	m.checks.Add(1)
	return m.available
}

func TestClient_Complete(t *testing.T) {
	provider := &MockProvider{
		name:     "mock",
		response: &CompletionResponse{Text: `{"defects": []}`},
	}
	client := NewClient(provider, Config{MaxTokens: 512}, worker.NewLimiter(100, 5), nil)

	text, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != `{"defects": []}` {
		t.Errorf("unexpected text: %q", text)
	}
	if provider.lastReq.System != "system" || provider.lastReq.Prompt != "user" {
		t.Errorf("unexpected request: %+v", provider.lastReq)
	}
	if provider.lastReq.MaxTokens != 512 {
		t.Errorf("expected max tokens 512, got %d", provider.lastReq.MaxTokens)
	}
	if client.Name() != "mock" {
		t.Errorf("unexpected name: %s", client.Name())
	}
}

func TestClient_Complete_ProviderError(t *testing.T) {
	provider := &MockProvider{name: "mock", err: errors.New("boom")}
	client := NewClient(provider, Config{}, nil, nil)

	if _, err := client.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestClient_Complete_RateLimited(t *testing.T) {
	provider := &MockProvider{name: "mock", response: &CompletionResponse{Text: "{}"}}
	limiter := worker.NewLimiter(0.01, 1)
	client := NewClient(provider, Config{}, limiter, nil)

	if _, err := client.Complete(context.Background(), "s", "u"); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := client.Complete(ctx, "s", "u"); err == nil {
		t.Fatal("expected rate limit wait to fail on expired context")
	}
	if provider.requests.Load() != 1 {
		t.Errorf("expected provider to be called once, got %d", provider.requests.Load())
	}
}

func TestClient_Available_Cached(t *testing.T) {
	provider := &MockProvider{name: "mock", available: true}
	client := NewClient(provider, Config{}, nil, cache.NewMemoryCache(time.Minute, time.Minute))

	for i := 0; i < 3; i++ {
		if !client.Available(context.Background()) {
			t.Fatal("expected backend to be available")
		}
	}
	if provider.checks.Load() != 1 {
		t.Errorf("expected a single availability check, got %d", provider.checks.Load())
	}
}

func TestClient_Available_NegativeCached(t *testing.T) {
	provider := &MockProvider{name: "mock", available: false}
	client := NewClient(provider, Config{}, nil, cache.NewMemoryCache(time.Minute, time.Minute))

	if client.Available(context.Background()) {
		t.Fatal("expected backend to be unavailable")
	}
	if client.Available(context.Background()) {
		t.Fatal("expected cached unavailability")
	}
	if provider.checks.Load() != 1 {
		t.Errorf("expected a single availability check, got %d", provider.checks.Load())
	}
}

func TestClient_Available_NoCache(t *testing.T) {
	provider := &MockProvider{name: "mock", available: true}
	client := NewClient(provider, Config{}, nil, nil)

	client.Available(context.Background())
	client.Available(context.Background())

	if provider.checks.Load() != 2 {
		t.Errorf("expected a check per call without cache, got %d", provider.checks.Load())
	}
}

// stalledProvider blocks every call until its context ends
type stalledProvider struct{}

func (stalledProvider) Name() string { return "stalled" }

func (stalledProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledProvider) IsAvailable(ctx context.Context) bool {
	<-ctx.Done()
	return false
}

func TestClient_TimeoutBoundsStalledProvider(t *testing.T) {
	client := NewClient(stalledProvider{}, Config{Timeout: 1}, nil, nil)

	done := make(chan error, 1)
	go func() {
		if client.Available(context.Background()) {
			done <- errors.New("stalled provider reported available")
			return
		}
		_, err := client.Complete(context.Background(), "s", "u")
		if !errors.Is(err, context.DeadlineExceeded) {
			done <- fmt.Errorf("expected deadline exceeded, got %v", err)
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Error(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("client calls were not bounded by the configured timeout")
	}
}
