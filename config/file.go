package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "rest_config.yaml"

// RetrySettings configures the bounded retry wrapper
type RetrySettings struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Sleep       time.Duration `yaml:"sleep" json:"sleep"`
}

// TranscriptSettings configures the transcript side channel
type TranscriptSettings struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Format  string `yaml:"format" json:"format"` // text | jsonl
}

// MemoryStoreSettings configures the in-process replay store
type MemoryStoreSettings struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	SizeMB       int           `yaml:"size_mb" json:"size_mb"`
	MaxEntrySize int           `yaml:"max_entry_size" json:"max_entry_size"`
	Shards       int           `yaml:"shards" json:"shards"` // must be power of 2
	TTL          time.Duration `yaml:"ttl" json:"ttl"`
}

// RedisStoreSettings configures the shared replay store
type RedisStoreSettings struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	URL          string        `yaml:"url" json:"url"`
	KeyPrefix    string        `yaml:"key_prefix" json:"key_prefix"`
	TTL          time.Duration `yaml:"ttl" json:"ttl"`
	DialTimeout  time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

type ReplaySettings struct {
	Memory MemoryStoreSettings `yaml:"memory" json:"memory"`
	Redis  RedisStoreSettings  `yaml:"redis" json:"redis"`
}

type LogSettings struct {
	Level  string `yaml:"level" json:"level"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

type MetricsSettings struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Textfile  string `yaml:"textfile" json:"textfile"` // written after each run, textfile collector format
}

// File is the on-disk configuration consumed by the restcmd CLI
type File struct {
	Site       Config             `yaml:"site" json:"site"`
	Retry      RetrySettings      `yaml:"retry" json:"retry"`
	Transcript TranscriptSettings `yaml:"transcript" json:"transcript"`
	Replay     ReplaySettings     `yaml:"replay" json:"replay"`
	Log        LogSettings        `yaml:"log" json:"log"`
	Metrics    MetricsSettings    `yaml:"metrics" json:"metrics"`
}

// NewFile returns a File populated with defaults
func NewFile() *File {
	f := &File{Site: *New()}
	f.ApplyDefaults()
	return f
}

func (f *File) ApplyDefaults() {
	if f.Site.Timeout == 0 {
		f.Site.Timeout = DefaultTimeout
	}
	if f.Retry.MaxAttempts == 0 {
		f.Retry.MaxAttempts = 10
	}
	if f.Retry.Sleep == 0 {
		f.Retry.Sleep = 1000 * time.Millisecond
	}
	if f.Transcript.Path == "" {
		f.Transcript.Path = "trans.log"
	}
	if f.Transcript.Format == "" {
		f.Transcript.Format = "text"
	}
	if f.Replay.Memory.SizeMB == 0 {
		f.Replay.Memory.SizeMB = 64
	}
	if f.Replay.Memory.MaxEntrySize == 0 {
		f.Replay.Memory.MaxEntrySize = 1048576
	}
	if f.Replay.Memory.Shards == 0 {
		f.Replay.Memory.Shards = 64
	}
	if f.Replay.Memory.TTL == 0 {
		f.Replay.Memory.TTL = 24 * time.Hour
	}
	if f.Replay.Redis.KeyPrefix == "" {
		f.Replay.Redis.KeyPrefix = "rest:replay:"
	}
	if f.Replay.Redis.DialTimeout == 0 {
		f.Replay.Redis.DialTimeout = 1000 * time.Millisecond
	}
	if f.Replay.Redis.ReadTimeout == 0 {
		f.Replay.Redis.ReadTimeout = 1000 * time.Millisecond
	}
	if f.Replay.Redis.WriteTimeout == 0 {
		f.Replay.Redis.WriteTimeout = 1000 * time.Millisecond
	}
	if f.Log.Level == "" {
		f.Log.Level = "info"
	}
	if f.Metrics.Namespace == "" {
		f.Metrics.Namespace = "rest"
	}
}

func LoadFromFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	f.ApplyDefaults()
	return &f, nil
}

// Load loads configuration from the CONFIG_FILE environment variable
// or from the default path "rest_config.yaml"
func Load() (*File, error) {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	return LoadFromFile(configFile)
}

// ApplyEnv overrides file values with REST_* environment variables.
// Values that fail to parse are ignored.
func (f *File) ApplyEnv() {
	if v := os.Getenv("REST_SITE_URL"); v != "" {
		f.Site.SiteURL = v
	}

	if v := os.Getenv("REST_USERNAME"); v != "" {
		f.Site.Username = v
	}

	if v := os.Getenv("REST_PASSWORD"); v != "" {
		f.Site.Password = v
	}

	if v := os.Getenv("REST_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			f.Site.Timeout = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv("REST_TRANSCRIPT_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			f.Transcript.Enabled = enabled
		}
	}

	if v := os.Getenv("REST_TRANSCRIPT_FILE"); v != "" {
		f.Transcript.Path = v
	}

	if v := os.Getenv("REST_LOG_LEVEL"); v != "" {
		f.Log.Level = v
	}
}

// Validate checks the site config and the settings the CLI depends on
func (f *File) Validate() error {
	if err := f.Site.Validate(); err != nil {
		return err
	}

	if f.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry max attempts must be non-negative")
	}

	if f.Retry.Sleep < 0 {
		return fmt.Errorf("retry sleep must be non-negative")
	}

	switch f.Transcript.Format {
	case "text", "jsonl":
	default:
		return fmt.Errorf("invalid transcript format '%s': must be one of 'text', 'jsonl'", f.Transcript.Format)
	}

	if f.Replay.Redis.Enabled && f.Replay.Redis.URL == "" {
		return fmt.Errorf("redis replay store requires a URL")
	}

	return nil
}
