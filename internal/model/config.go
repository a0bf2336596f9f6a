package model

import "time"

// Config is the complete arguegraph configuration
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Score    ScoreConfig    `yaml:"score"`
	LLM      LLMConfig      `yaml:"llm"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Output   OutputConfig   `yaml:"output"`
}

// AnalysisConfig tunes the structural detectors
type AnalysisConfig struct {
	// StrawmanSimilarityThreshold gates strawman flags: a cross-speaker
	// attack is flagged only when the bag-of-words cosine similarity between
	// attacker and target text falls below this value.
	StrawmanSimilarityThreshold float64 `yaml:"strawman_similarity_threshold"`

	// DriftWindowSize is the number of claims per topic-drift window and in
	// the initial topic set.
	DriftWindowSize int `yaml:"drift_window_size"`

	// DriftConnectivityThreshold is the connectivity fraction below which a
	// window is recorded as a drift point.
	DriftConnectivityThreshold float64 `yaml:"drift_connectivity_threshold"`

	// RuleBased enables the marker-phrase fallacy rules.
	RuleBased bool `yaml:"rule_based"`
}

// ScoreConfig tunes the per-speaker rigor score
type ScoreConfig struct {
	Weights RigorWeights `yaml:"weights"`

	// PartialTrueWeight is the credit a partially_true verdict earns in
	// supported_ratio, relative to a fully supported one.
	PartialTrueWeight float64 `yaml:"partial_true_weight"`
}

// RigorWeights are the component weights of the overall rigor score.
// They should sum to 1.0.
type RigorWeights struct {
	SupportedRatio      float64 `yaml:"supported_ratio"`
	FallacyPenalty      float64 `yaml:"fallacy_penalty"`
	FactcheckRate       float64 `yaml:"factcheck_rate"`
	InternalConsistency float64 `yaml:"internal_consistency"`
	DirectResponseRate  float64 `yaml:"direct_response_rate"`
}

// LLMConfig configures the LLM collaborator clients (fallacy classification
// and fact-check synthesis). These run outside the core engine; their output
// re-enters through the validated ingestion boundary.
type LLMConfig struct {
	Provider          string  `yaml:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"-"` // From env, never persisted
	BaseURL           string  `yaml:"base_url,omitempty"`
	Timeout           int     `yaml:"timeout"` // Seconds per request
	MaxTokens         int     `yaml:"max_tokens"`
	ChunkSize         int     `yaml:"chunk_size"` // Claims per classification request
	MaxConcurrent     int     `yaml:"max_concurrent"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// CacheConfig configures the fact-check verdict cache. An empty Dir keeps
// the cache in memory only; setting it adds a disk layer so verdicts for
// recurring statements survive across runs.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir,omitempty"`
	TTL     time.Duration `yaml:"ttl"`
}

// ServerConfig configures the session API server
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig configures optional snapshot persistence
type DatabaseConfig struct {
	URL string `yaml:"-"` // From DATABASE_URL, never persisted
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			StrawmanSimilarityThreshold: 0.75,
			DriftWindowSize:             5,
			DriftConnectivityThreshold:  0.5,
			RuleBased:                   true,
		},
		Score: ScoreConfig{
			Weights: RigorWeights{
				SupportedRatio:      0.25,
				FallacyPenalty:      0.25,
				FactcheckRate:       0.20,
				InternalConsistency: 0.15,
				DirectResponseRate:  0.15,
			},
			PartialTrueWeight: 0.5,
		},
		LLM: LLMConfig{
			Provider:          "",
			Timeout:           30,
			MaxTokens:         1500,
			ChunkSize:         15,
			MaxConcurrent:     4,
			RequestsPerSecond: 2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Output: OutputConfig{},
	}
}
