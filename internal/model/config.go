package model

import (
	"fmt"
	"time"
)

// Recognized aggregation weight keys. A deployment missing any of these is
// broken configuration, not bad input, and must fail loudly.
const (
	WeightEvidenceSupport   = "evidence_support"
	WeightSourceCredibility = "source_credibility"
	WeightCrossVerification = "cross_verification"
)

// Config is the complete claimlens configuration
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Web         WebConfig         `yaml:"web"`
	Cache       CacheConfig       `yaml:"cache"`
	Memory      MemoryConfig      `yaml:"memory"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`

	// Weights drives the credibility aggregation. Non-negative, need not sum
	// to 1, never renormalized.
	Weights map[string]float64 `yaml:"weights"`

	// Reputation overrides or extends the built-in publisher prior table.
	// Merged once at startup; never mutated afterwards.
	Reputation map[string]float64 `yaml:"reputation,omitempty"`
}

// LLMConfig configures the text generation provider
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, ollama, ""
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Timeout     int     `yaml:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`

	// Optional tiers; disabled by default because each one costs a call.
	EnablePriorFallback bool `yaml:"enable_prior_fallback"` // LLM fallback for unknown domains
	EnableExplanations  bool `yaml:"enable_explanations"`   // LLM score explanations
}

// EmbeddingConfig configures the dense index embedder
type EmbeddingConfig struct {
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Timeout int    `yaml:"timeout"` // seconds
}

// RetrievalConfig configures hybrid evidence retrieval
type RetrievalConfig struct {
	K               int     `yaml:"k"`                 // Candidates per backend before merging
	WeightDense     float64 `yaml:"weight_dense"`      // Positional weight for the dense list
	WeightSparse    float64 `yaml:"weight_sparse"`     // Positional weight for the lexical list
	MaxEvidenceDocs int     `yaml:"max_evidence_docs"` // Evidence cap per claim
	IndexDir        string  `yaml:"index_dir"`         // Lexical index location
	DenseStorePath  string  `yaml:"dense_store_path"`  // Dense store snapshot location
}

// WebConfig configures best-effort external web evidence
type WebConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Endpoint          string        `yaml:"endpoint"`
	APIKey            string        `yaml:"api_key,omitempty"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxResults        int           `yaml:"max_results"`
	FetchSnippets     bool          `yaml:"fetch_snippets"` // Fetch result pages to enrich thin snippets
	UserAgent         string        `yaml:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty"`
	NoProxy           string        `yaml:"no_proxy,omitempty"`
}

// CacheConfig configures the layered cache for web and prior lookups
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// MemoryConfig configures conversational memory
type MemoryConfig struct {
	WindowPairs int           `yaml:"window_pairs"` // User+assistant pairs kept in short-term memory
	SessionTTL  time.Duration `yaml:"session_ttl"`
	RecallK     int           `yaml:"recall_k"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	Verbose        bool `yaml:"verbose"`
	IncludeTimings bool `yaml:"include_timings"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "",
			Timeout:     30,
			MaxTokens:   1024,
			Temperature: 0.2,
		},
		Embedding: EmbeddingConfig{
			Model:   "nomic-embed-text",
			Timeout: 30,
		},
		Retrieval: RetrievalConfig{
			K:               8,
			WeightDense:     0.5,
			WeightSparse:    0.5,
			MaxEvidenceDocs: 3,
			IndexDir:        "./claimlens-index",
			DenseStorePath:  "./claimlens-index/dense.json",
		},
		Web: WebConfig{
			Enabled:           false,
			Timeout:           15 * time.Second,
			MaxResults:        3,
			UserAgent:         "Claimlens/0.1 (+https://github.com/ppiankov/claimlens)",
			RequestsPerSecond: 1.0,
			BurstSize:         3,
			MaxBodyBytes:      1_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "./.claimlens-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Memory: MemoryConfig{
			WindowPairs: 4,
			SessionTTL:  2 * time.Hour,
			RecallK:     3,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			IncludeTimings: true,
		},
		Weights: map[string]float64{
			WeightEvidenceSupport:   0.55,
			WeightSourceCredibility: 0.30,
			WeightCrossVerification: 0.15,
		},
	}
}

// Validate checks invariants that indicate a broken deployment.
// Missing or negative aggregation weights are fatal; everything else in the
// pipeline degrades gracefully at runtime instead.
func (c *Config) Validate() error {
	for _, key := range []string{WeightEvidenceSupport, WeightSourceCredibility, WeightCrossVerification} {
		w, ok := c.Weights[key]
		if !ok {
			return fmt.Errorf("config: missing aggregation weight %q", key)
		}
		if w < 0 {
			return fmt.Errorf("config: aggregation weight %q must be non-negative, got %v", key, w)
		}
	}
	if c.Retrieval.K < 1 {
		return fmt.Errorf("config: retrieval.k must be >= 1, got %d", c.Retrieval.K)
	}
	if c.Retrieval.MaxEvidenceDocs < 1 {
		return fmt.Errorf("config: retrieval.max_evidence_docs must be >= 1, got %d", c.Retrieval.MaxEvidenceDocs)
	}
	return nil
}
