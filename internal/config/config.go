// Package config carries the runtime settings for the CLI and the job
// service. Values are layered: built-in defaults, then a TOML file, then
// environment variables, with the environment winning.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dgallion1/rlmproc/internal/chunk"
	"github.com/dgallion1/rlmproc/internal/oracle"
)

// Duration is a time.Duration that unmarshals from TOML strings like
// "90s" or "1h".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Port string `toml:"port"`

	// Auth for the job service API.
	APIKey string `toml:"api_key"`

	// Oracle credentials and models.
	AnthropicAPIKey string `toml:"anthropic_api_key"`
	Model           string `toml:"model"`
	FastModel       string `toml:"fast_model"`

	// Job worker pool.
	WorkerCount  int `toml:"worker_count"`
	MaxQueueSize int `toml:"max_queue_size"`

	// Upload limits.
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// Processing defaults.
	ChunkSize        int  `toml:"chunk_size"`
	ChunkOverlap     int  `toml:"chunk_overlap"`
	ChunkConcurrency int  `toml:"chunk_concurrency"`
	FilterEnabled    bool `toml:"filter_enabled"`

	// Job state retention.
	JobTTL Duration `toml:"job_ttl"`

	// PDF extraction.
	PDFFallbackPdftotext bool `toml:"pdf_fallback_pdftotext"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Port:                 "8090",
		Model:                oracle.ModelDefault,
		FastModel:            oracle.ModelFast,
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxUploadBytes:       52428800, // 50MB
		ChunkSize:            chunk.DefaultChunkSize,
		ChunkOverlap:         chunk.DefaultOverlap,
		ChunkConcurrency:     5,
		FilterEnabled:        true,
		JobTTL:               Duration(1 * time.Hour),
		PDFFallbackPdftotext: true,
	}
}

// DefaultPath is where Load looks for a config file when neither the
// path argument nor RLM_CONFIG names one.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rlmproc.toml")
}

// Load reads configuration in layers: defaults, then the TOML file, then
// environment variables. A missing file at the default location is fine;
// an explicitly named file that cannot be read or parsed is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("RLM_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case explicit:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.AnthropicAPIKey == "" {
		cfg.AnthropicAPIKey = keyFromClaudeDir()
	}

	cfg.clamp()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = envOr("PORT", c.Port)
	c.APIKey = envOr("RLM_API_KEY", c.APIKey)
	c.AnthropicAPIKey = envOr("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.Model = envOr("ANTHROPIC_MODEL", c.Model)
	c.FastModel = envOr("ANTHROPIC_FAST_MODEL", c.FastModel)
	c.WorkerCount = envInt("WORKER_COUNT", c.WorkerCount)
	c.MaxQueueSize = envInt("MAX_QUEUE_SIZE", c.MaxQueueSize)
	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.ChunkSize = envInt("DEFAULT_CHUNK_SIZE", c.ChunkSize)
	c.ChunkOverlap = envInt("DEFAULT_CHUNK_OVERLAP", c.ChunkOverlap)
	c.ChunkConcurrency = envInt("MAX_CONCURRENT_CHUNKS", c.ChunkConcurrency)
	c.FilterEnabled = envBool("RLM_FILTER", c.FilterEnabled)
	c.JobTTL = Duration(envDuration("JOB_TTL", c.JobTTL.Std()))
	c.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)
}

func (c *Config) clamp() {
	d := Default()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = 0
	}
	if c.ChunkConcurrency <= 0 {
		c.ChunkConcurrency = d.ChunkConcurrency
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
}

// Validate checks that the service has everything it needs to run.
func (c Config) Validate() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required (or a key file under ~/.claude)")
	}
	if c.APIKey == "" {
		return fmt.Errorf("RLM_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
