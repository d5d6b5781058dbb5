// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all bingo client configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Session Session `yaml:"session"`
	Poll    Poll    `yaml:"poll"`
	Cache   Cache   `yaml:"cache"`
	Log     Log     `yaml:"log"`
	Display Display `yaml:"display"`
}

// Server holds the bingo server address and request settings.
type Server struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"` // Per-request bound
}

// Session identifies the user the client acts for.
type Session struct {
	Token string `yaml:"token"` // Bearer token; empty is anonymous
	User  int64  `yaml:"user"`  // Overrides the identity read from Token when non-zero
}

// Poll holds the ticket status poll settings.
type Poll struct {
	Interval time.Duration `yaml:"interval"`
}

// Cache holds client cache settings.
type Cache struct {
	DiscardSuperseded bool `yaml:"discard_superseded"` // Drop responses older than the last one applied
	MemoSize          int  `yaml:"memo_size"`          // Selector results kept
}

// Log holds logging settings.
type Log struct {
	File  string `yaml:"file"`  // Dashboard log file
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"; empty picks per surface
}

// Display holds presentation settings.
type Display struct {
	Timezone string `yaml:"timezone"` // IANA name; "Local" uses the system zone
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: Server{
			URL:     "http://localhost:8000",
			Timeout: 30 * time.Second,
		},
		Poll: Poll{
			Interval: 30 * time.Second,
		},
		Cache: Cache{
			MemoSize: 128,
		},
		Log: Log{
			File: ".bingo/bingo.log",
		},
		Display: Display{
			Timezone: "Local",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// LoadDotEnv loads KEY=value pairs from a .env file into the process
// environment. Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("config: server.url cannot be empty")
	}
	if !strings.HasPrefix(c.Server.URL, "http://") && !strings.HasPrefix(c.Server.URL, "https://") {
		return fmt.Errorf("config: server.url must start with http:// or https://, got %q", c.Server.URL)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("config: server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Session.User < 0 {
		return fmt.Errorf("config: session.user must be non-negative, got %d", c.Session.User)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("config: poll.interval must be positive, got %v", c.Poll.Interval)
	}
	if c.Cache.MemoSize < 0 {
		return fmt.Errorf("config: cache.memo_size must be non-negative, got %d", c.Cache.MemoSize)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves display.timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Display.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: display.timezone %q: %w", c.Display.Timezone, err)
	}
	return loc, nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: BINGO_SERVER, BINGO_TOKEN, BINGO_USER, BINGO_TIMEOUT,
// BINGO_POLL_INTERVAL, BINGO_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("BINGO_SERVER"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("BINGO_TOKEN"); v != "" {
		c.Session.Token = v
	}
	if v := os.Getenv("BINGO_USER"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: invalid BINGO_USER %q: %w", v, err)
		}
		c.Session.User = n
	}
	if v := os.Getenv("BINGO_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid BINGO_TIMEOUT %q: %w", v, err)
		}
		c.Server.Timeout = d
	}
	if v := os.Getenv("BINGO_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid BINGO_POLL_INTERVAL %q: %w", v, err)
		}
		c.Poll.Interval = d
	}
	if v := os.Getenv("BINGO_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Server  *rawServer  `yaml:"server"`
	Session *rawSession `yaml:"session"`
	Poll    *rawPoll    `yaml:"poll"`
	Cache   *rawCache   `yaml:"cache"`
	Log     *rawLog     `yaml:"log"`
	Display *rawDisplay `yaml:"display"`
}

type rawServer struct {
	URL     *string        `yaml:"url"`
	Timeout *time.Duration `yaml:"timeout"`
}

type rawSession struct {
	Token *string `yaml:"token"`
	User  *int64  `yaml:"user"`
}

type rawPoll struct {
	Interval *time.Duration `yaml:"interval"`
}

type rawCache struct {
	DiscardSuperseded *bool `yaml:"discard_superseded"`
	MemoSize          *int  `yaml:"memo_size"`
}

type rawLog struct {
	File  *string `yaml:"file"`
	Level *string `yaml:"level"`
}

type rawDisplay struct {
	Timezone *string `yaml:"timezone"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Server != nil {
		if layer.Server.URL != nil {
			c.Server.URL = *layer.Server.URL
		}
		if layer.Server.Timeout != nil {
			c.Server.Timeout = *layer.Server.Timeout
		}
	}
	if layer.Session != nil {
		if layer.Session.Token != nil {
			c.Session.Token = *layer.Session.Token
		}
		if layer.Session.User != nil {
			c.Session.User = *layer.Session.User
		}
	}
	if layer.Poll != nil && layer.Poll.Interval != nil {
		c.Poll.Interval = *layer.Poll.Interval
	}
	if layer.Cache != nil {
		if layer.Cache.DiscardSuperseded != nil {
			c.Cache.DiscardSuperseded = *layer.Cache.DiscardSuperseded
		}
		if layer.Cache.MemoSize != nil {
			c.Cache.MemoSize = *layer.Cache.MemoSize
		}
	}
	if layer.Log != nil {
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
	}
	if layer.Display != nil && layer.Display.Timezone != nil {
		c.Display.Timezone = *layer.Display.Timezone
	}
}
