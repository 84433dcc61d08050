package model

import "time"

// Config is the complete juridoc configuration.
// Durations are stored in seconds (minutes for TTLs) so the YAML stays readable.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Tasks     TaskConfig      `yaml:"tasks" mapstructure:"tasks"`
	Alignment AlignmentConfig `yaml:"alignment" mapstructure:"alignment"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Summary   SummaryConfig   `yaml:"summary" mapstructure:"summary"`
}

// ServerConfig controls the HTTP surface
type ServerConfig struct {
	Addr            string   `yaml:"addr" mapstructure:"addr"`
	CORSOrigins     []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownTimeout int      `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // seconds
	ReadTimeout     int      `yaml:"read_timeout" mapstructure:"read_timeout"`         // seconds
}

// LLMConfig controls the model-serving endpoint
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // openai (vLLM), ollama
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey            string  `yaml:"api_key" mapstructure:"api_key"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	Temperature       float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxConcurrency    int     `yaml:"max_concurrency" mapstructure:"max_concurrency"` // concurrent inference calls, system-wide
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // per adapter, 0 = unlimited
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	Retries           int     `yaml:"retries" mapstructure:"retries"` // extra attempts when the endpoint is unavailable
	Proxy             string  `yaml:"proxy,omitempty" mapstructure:"proxy"`
}

// Admission policies for a saturated task queue
const (
	AdmissionBlock    = "block"
	AdmissionFailFast = "fail_fast"
)

// TaskConfig controls the task manager
type TaskConfig struct {
	Workers       int     `yaml:"workers" mapstructure:"workers"`
	QueueSize     int     `yaml:"queue_size" mapstructure:"queue_size"`
	Admission     string  `yaml:"admission" mapstructure:"admission"`           // block | fail_fast
	SubmitTimeout int     `yaml:"submit_timeout" mapstructure:"submit_timeout"` // seconds, block policy only
	TaskTimeout   int     `yaml:"task_timeout" mapstructure:"task_timeout"`     // seconds
	TTL           int     `yaml:"ttl" mapstructure:"ttl"`                       // minutes after last update
	FailureRatio  float64 `yaml:"failure_ratio" mapstructure:"failure_ratio"`   // failed/requested ratio that fails the task
}

// AlignmentConfig controls the span aligner
type AlignmentConfig struct {
	Threshold   float64 `yaml:"threshold" mapstructure:"threshold"`
	WindowSlack int     `yaml:"window_slack" mapstructure:"window_slack"`
}

// CacheConfig controls caching of extraction results
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir       string `yaml:"dir,omitempty" mapstructure:"dir"` // empty = memory only
	MemoryTTL int    `yaml:"memory_ttl" mapstructure:"memory_ttl"` // minutes
	DiskTTL   int    `yaml:"disk_ttl" mapstructure:"disk_ttl"`     // hours
}

// SummaryConfig controls the summarizer
type SummaryConfig struct {
	Separator string `yaml:"separator" mapstructure:"separator"`
	Rewrite   bool   `yaml:"rewrite" mapstructure:"rewrite"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 30,
			ReadTimeout:     60,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			BaseURL:        "http://localhost:9020/v1",
			APIKey:         "EMPTY",
			Timeout:        500,
			Temperature:    0.2,
			MaxConcurrency: 6,
			Burst:          5,
			Retries:        1,
		},
		Tasks: TaskConfig{
			Workers:       4,
			QueueSize:     64,
			Admission:     AdmissionBlock,
			SubmitTimeout: 5,
			TaskTimeout:   900,
			TTL:           30,
			FailureRatio:  1.0,
		},
		Alignment: AlignmentConfig{
			Threshold:   0.6,
			WindowSlack: 2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 60,
			DiskTTL:   24,
		},
		Summary: SummaryConfig{
			Separator: "\n",
		},
	}
}

// Seconds converts a config value in seconds to a duration
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
