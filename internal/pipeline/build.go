package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/naysayer/internal/cache"
	"github.com/ppiankov/naysayer/internal/fixture"
	"github.com/ppiankov/naysayer/internal/llm"
	"github.com/ppiankov/naysayer/internal/model"
	"github.com/ppiankov/naysayer/internal/source"
	"github.com/ppiankov/naysayer/internal/worker"
)

// NewFromConfig creates an analyzer wired from configuration.
// A provider that fails to initialize is logged and the analyzer runs in demo mode.
func NewFromConfig(cfg *model.Config, logger logrus.FieldLogger) (*Analyzer, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	tables := fixture.Default()

	// Create reasoning backend if configured
	var backend llm.Backend
	if cfg.LLM.Provider != "" {
		llmConfig := llm.ConfigFromModel(cfg.LLM)
		provider, err := llm.NewProvider(llmConfig)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize LLM provider, running in demo mode")
		} else if provider != nil {
			limiter := newBackendLimiter(cfg.Concurrency)
			availability := cache.NewMemoryCache(llm.AvailabilityTTL, 10*time.Minute)
			backend = llm.NewClient(provider, llmConfig, limiter, availability)
		}
	}

	var reviews source.ReviewSource = source.NewFixtureReviews(tables)
	if dir := cfg.Analysis.ReviewsDir; dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("reviews dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("reviews dir: %s is not a directory", dir)
		}
		reviews = source.NewDirReviews(dir, logger)
	}

	return New(Options{
		Backend: backend,
		Reviews: reviews,
		Specs:   source.NewFixtureSpecs(tables),
		Tables:  tables,
		Config:  cfg,
		Logger:  logger,
	}), nil
}

// newBackendLimiter paces backend calls at the configured default rate,
// with backend_rates overriding it per provider
func newBackendLimiter(c model.ConcurrencyConfig) *worker.Limiter {
	limiter := worker.NewLimiter(c.RequestsPerSecond, c.Burst)
	for name, rps := range c.BackendRates {
		limiter.SetKeyRate(strings.ToLower(strings.TrimSpace(name)), rps, c.Burst)
	}
	return limiter
}
