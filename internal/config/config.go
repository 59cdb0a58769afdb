package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Storage backends selectable at startup.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// EnvPrefix is the prefix for environment overrides (MINUTES_BACKEND, ...).
const EnvPrefix = "MINUTES"

// Config holds application configuration.
type Config struct {
	// Backend selects the persistence medium: "sqlite" (default), "file", or "memory".
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// StorageKey is the key the whole meeting collection is stored under.
	StorageKey string `json:"storage_key,omitempty" yaml:"storage_key,omitempty"`

	// MaxMeetings caps the stored collection; older records are evicted first.
	MaxMeetings int `json:"max_meetings,omitempty" yaml:"max_meetings,omitempty"`

	// DefaultTitle is used when a saved meeting has no title.
	DefaultTitle string `json:"default_title,omitempty" yaml:"default_title,omitempty"`

	// DefaultParticipants is used when a saved meeting lists no participants.
	// Unlike other arrays, an overlay replaces the base list instead of merging.
	DefaultParticipants []string `json:"default_participants,omitempty" yaml:"default_participants,omitempty"`

	// LogLevel is a zerolog level name ("debug", "info", "warn", "error").
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// ChunkIntervalSeconds is how often the chunked capture source cuts a segment.
	ChunkIntervalSeconds int `json:"chunk_interval_seconds,omitempty" yaml:"chunk_interval_seconds,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections (sqlite backend).
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" yaml:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections (sqlite backend).
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" yaml:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" yaml:"disabled_tools,omitempty"`
}

// envConfig mirrors the overridable subset of Config for envconfig.
type envConfig struct {
	Backend              string   `envconfig:"BACKEND"`
	StorageKey           string   `envconfig:"STORAGE_KEY"`
	MaxMeetings          int      `envconfig:"MAX_MEETINGS"`
	DefaultTitle         string   `envconfig:"DEFAULT_TITLE"`
	DefaultParticipants  []string `envconfig:"DEFAULT_PARTICIPANTS"`
	LogLevel             string   `envconfig:"LOG_LEVEL"`
	ChunkIntervalSeconds int      `envconfig:"CHUNK_INTERVAL_SECONDS"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:              BackendSQLite,
		StorageKey:           "sgapp_meetings",
		MaxMeetings:          50,
		DefaultTitle:         "Untitled Meeting",
		DefaultParticipants:  []string{"You"},
		LogLevel:             "info",
		ChunkIntervalSeconds: 10,
	}
}

// configFiles lists the file names Load looks for, in order of preference.
var configFiles = []string{"config.json", "config.yaml", "config.yml"}

// Load loads configuration from the first config file found in baseDir,
// then applies MINUTES_* environment overrides.
// Returns default config if no file exists.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.minutes.
func Load(baseDir string) (*Config, error) {
	fileCfg := &Config{}
	for _, name := range configFiles {
		path := filepath.Join(baseDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var err error
		fileCfg, err = loadFileRaw(path)
		if err != nil {
			return nil, err
		}
		break
	}

	envCfg, err := loadEnv()
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), fileCfg), envCfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, file, or memory)", c.Backend)
	}
	if c.MaxMeetings < 0 {
		return fmt.Errorf("max_meetings must be non-negative, got %d", c.MaxMeetings)
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path, picking the decoder by extension.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(configPath), err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(configPath), err)
		}
	}

	return cfg, nil
}

// loadEnv reads MINUTES_* overrides. Unset variables stay zero-valued.
func loadEnv() (*Config, error) {
	var env envConfig
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &Config{
		Backend:              strings.ToLower(strings.TrimSpace(env.Backend)),
		StorageKey:           env.StorageKey,
		MaxMeetings:          env.MaxMeetings,
		DefaultTitle:         env.DefaultTitle,
		DefaultParticipants:  env.DefaultParticipants,
		LogLevel:             env.LogLevel,
		ChunkIntervalSeconds: env.ChunkIntervalSeconds,
	}, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; DisabledTools are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.Backend = firstString(overlay.Backend, base.Backend)
	result.StorageKey = firstString(overlay.StorageKey, base.StorageKey)
	result.DefaultTitle = firstString(overlay.DefaultTitle, base.DefaultTitle)
	result.LogLevel = firstString(overlay.LogLevel, base.LogLevel)
	result.MaxMeetings = firstInt(overlay.MaxMeetings, base.MaxMeetings)
	result.ChunkIntervalSeconds = firstInt(overlay.ChunkIntervalSeconds, base.ChunkIntervalSeconds)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Participants: overlay replaces
	result.DefaultParticipants = mergeStringSlice(base.DefaultParticipants, nil)
	if p := mergeStringSlice(overlay.DefaultParticipants, nil); p != nil {
		result.DefaultParticipants = p
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
