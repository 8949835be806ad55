package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/naysayer/internal/cache"
	"github.com/ppiankov/naysayer/internal/worker"
)

// AvailabilityTTL is how long a backend availability result is trusted
const AvailabilityTTL = 5 * time.Minute

// Completer sends one system + user instruction pair and returns raw text
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Backend is the reasoning backend seen by extractors and the orchestrator
type Backend interface {
	Completer

	// Name returns the backend name used in logs and rate limiting
	Name() string

	// Available reports whether the backend can be used for this analysis
	Available(ctx context.Context) bool
}

// Client wraps a Provider with rate limiting and a cached availability check
type Client struct {
	provider Provider
	config   Config
	limiter  *worker.Limiter
	cache    cache.Cache
}

// NewClient creates a new backend client.
// limiter and c may be nil.
func NewClient(p Provider, cfg Config, limiter *worker.Limiter, c cache.Cache) *Client {
	return &Client{
		provider: p,
		config:   cfg,
		limiter:  limiter,
		cache:    c,
	}
}

// Name returns the underlying provider name
func (c *Client) Name() string {
	return c.provider.Name()
}

// Complete waits for rate-limit clearance and runs one completion
// bounded by the configured timeout
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.provider.Name()); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.timeout())
	defer cancel()

	resp, err := c.provider.Complete(ctx, CompletionRequest{
		System:    system,
		Prompt:    user,
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}

// Available checks the provider under the configured timeout, caching
// the result per provider name
func (c *Client) Available(ctx context.Context) bool {
	key := cache.Key("availability", c.provider.Name(), c.config.BaseURL, c.config.Model)

	if c.cache != nil {
		if val, ok := c.cache.Get(key); ok {
			return string(val) == "1"
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.config.timeout())
	available := c.provider.IsAvailable(checkCtx)
	cancel()

	if c.cache != nil {
		val := []byte("0")
		if available {
			val = []byte("1")
		}
		_ = c.cache.Set(key, val, AvailabilityTTL)
	}

	return available
}
