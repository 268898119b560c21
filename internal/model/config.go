package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Sources     SourcesConfig     `yaml:"sources" json:"sources"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Verify      VerifyConfig      `yaml:"verify" json:"verify"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
}

// HTTPConfig controls outbound HTTP behavior shared by the network adapters
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// CacheConfig controls the persistent verification cache
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`
}

// RetryConfig is the backoff schedule for transient source failures
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// SourcesConfig configures the four verification sources
type SourcesConfig struct {
	// CourtData is the root of the local opinion corpus
	// (markdown/{year}/{year}ND{number}.md). Empty or missing means the
	// local adapter is unavailable, not an error.
	CourtData string `yaml:"court_data" json:"court_data"`

	CourtListenerAPIKey string  `yaml:"courtlistener_api_key" json:"-"`
	CourtListenerRPS    float64 `yaml:"courtlistener_rps" json:"courtlistener_rps"`

	// ScraperRPS is the self-imposed limit for ndcourts.gov and
	// ndlegis.gov, regardless of server response.
	ScraperRPS float64 `yaml:"scraper_rps" json:"scraper_rps"`

	Retry RetryConfig `yaml:"retry" json:"retry"`
}

// ConcurrencyConfig bounds parallel citation verification
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// VerifyConfig holds orchestrator budgets and quotation thresholds
type VerifyConfig struct {
	CitationTimeout time.Duration `yaml:"citation_timeout" json:"citation_timeout"`
	RunTimeout      time.Duration `yaml:"run_timeout" json:"run_timeout"`
	QuoteTolerance  float64       `yaml:"quote_tolerance" json:"quote_tolerance"`
	QuoteFloor      float64       `yaml:"quote_floor" json:"quote_floor"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// LLMConfig configures the optional report summarizer
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "" disables
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "citecheck/0.1 (+https://github.com/ndlegal/citecheck)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "./cache",
		},
		Sources: SourcesConfig{
			CourtListenerRPS: 10,
			ScraperRPS:       1,
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   time.Second,
				MaxDelay:    60 * time.Second,
			},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Verify: VerifyConfig{
			CitationTimeout: 10 * time.Second,
			RunTimeout:      5 * time.Minute,
			QuoteTolerance:  0.95,
			QuoteFloor:      0.60,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			MaxTokens: 1000,
		},
	}
}
