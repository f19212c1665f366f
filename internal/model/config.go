package model

import "time"

// Config is the complete runtime configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Oracle  OracleConfig  `yaml:"oracle" mapstructure:"oracle"`
	Market  MarketConfig  `yaml:"market" mapstructure:"market"`
	Merge   MergeConfig   `yaml:"merge" mapstructure:"merge"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
}

// StoreConfig configures the sqlite-backed persistent store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // sqlite database file
}

// SourceConfig configures content-source fetching.
type SourceConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// OracleConfig configures the classification oracle client.
type OracleConfig struct {
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"-" mapstructure:"-"` // env only, never persisted
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"` // OpenAI-compatible endpoint (Ollama etc.)
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
}

// MarketConfig configures market-data lookups and caching.
type MarketConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	QuoteTTL      time.Duration `yaml:"quote_ttl" mapstructure:"quote_ttl"`
	HistoricalTTL time.Duration `yaml:"historical_ttl" mapstructure:"historical_ttl"`
}

// MergeConfig configures multi-part sequence merging.
type MergeConfig struct {
	// MaxPartGap bounds the authored-time delta between consecutive parts.
	// Posts further apart than this are assumed to reuse a "1/2"-style
	// caption rather than continue the same thread.
	MaxPartGap time.Duration `yaml:"max_part_gap" mapstructure:"max_part_gap"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	JSON    bool `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "tipstream.db",
		},
		Source: SourceConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Tipstream/0.1 (+https://github.com/mkarpov/tipstream)",
			MaxBodyBytes:      2_000_000,
			RequestsPerSecond: 1,
			Burst:             3,
			RespectRobots:     true,
		},
		Oracle: OracleConfig{
			Model:       "gpt-4o-mini",
			Timeout:     2 * time.Minute,
			MaxTokens:   1500,
			Temperature: 0.2,
		},
		Market: MarketConfig{
			Timeout:       15 * time.Second,
			QuoteTTL:      15 * time.Minute,
			HistoricalTTL: 24 * time.Hour,
		},
		Merge: MergeConfig{
			MaxPartGap: 24 * time.Hour,
		},
		Output: OutputConfig{},
	}
}
