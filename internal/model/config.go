package model

import "time"

// Config is the complete naysayer configuration
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the reasoning backend
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, deepseek, anthropic, ollama, "" (demo mode)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	HTTPProxy   string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// AnalysisConfig tunes the pipeline
type AnalysisConfig struct {
	MaxReviews     int      `yaml:"max_reviews" mapstructure:"max_reviews"`         // Cap on reviews sent to the backend
	ReviewPlatform string   `yaml:"review_platform" mapstructure:"review_platform"` // Platform filter, "all" for every platform
	ReviewPolarity string   `yaml:"review_polarity" mapstructure:"review_polarity"` // negative, follow_up or all
	ReviewsDir     string   `yaml:"reviews_dir,omitempty" mapstructure:"reviews_dir"`
	HistorySize    int      `yaml:"history_size" mapstructure:"history_size"` // Conversation buffer cap
	DataSources    []string `yaml:"data_sources" mapstructure:"data_sources"`
}

// ConcurrencyConfig bounds parallel work and backend pacing
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	// Per-backend overrides of requests_per_second, keyed by provider name.
	// A value <= 0 disables pacing for that backend.
	BackendRates map[string]float64 `yaml:"backend_rates,omitempty" mapstructure:"backend_rates"`
}

// LogConfig configures logrus output
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "", // Demo mode until a provider is configured
			Timeout:     30,
			MaxTokens:   2000,
			Temperature: 0.3,
		},
		Analysis: AnalysisConfig{
			MaxReviews:     100,
			ReviewPlatform: "all",
			ReviewPolarity: "negative",
			HistorySize:    20,
			DataSources:    []string{"smzdm", "zhihu", "bilibili", "v2ex", "jd", "taobao"},
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// BackendTimeout returns the per-call timeout for the reasoning backend
func (c LLMConfig) BackendTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}
