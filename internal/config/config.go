// Package config resolves the beetle home directory and loads the optional
// configuration file.
//
// Resolution order for the home directory:
//  1. the BEETLE_HOME environment variable,
//  2. $HOME/.beetle.
//
// Configuration lives at <home>/config.yaml. A missing file yields the
// defaults; a malformed file is an error rather than a silent fallback.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvHome is the environment variable overriding the beetle home directory.
const EnvHome = "BEETLE_HOME"

// Config is the complete beetle configuration.
type Config struct {
	Writer  WriterConfig  `yaml:"writer"`
	Search  SearchConfig  `yaml:"search"`
	Scanner ScannerConfig `yaml:"scanner"`
	Watch   WatchConfig   `yaml:"watch"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// WriterConfig tunes the incremental index writer.
type WriterConfig struct {
	// BatchSize is the number of changed files processed per batch.
	BatchSize int `yaml:"batch_size"`
}

// SearchConfig tunes query execution.
type SearchConfig struct {
	// TopK is the number of hits returned per query.
	TopK int `yaml:"top_k"`
}

// ScannerConfig tunes the filesystem scanner.
type ScannerConfig struct {
	// Workers is the scan worker pool size. Zero means NumCPU.
	Workers int `yaml:"workers"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	// Debounce is the quiet window before a burst of file events triggers
	// an incremental update, as a duration string ("500ms", "2s").
	Debounce string `yaml:"debounce"`
}

// DebounceWindow parses the configured debounce duration.
func (c WatchConfig) DebounceWindow() time.Duration {
	d, err := time.ParseDuration(c.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Listen is the address the server binds to.
	Listen string `yaml:"listen"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Writer:  WriterConfig{BatchSize: 100},
		Search:  SearchConfig{TopK: 10},
		Scanner: ScannerConfig{Workers: runtime.NumCPU()},
		Watch:   WatchConfig{Debounce: "500ms"},
		Server:  ServerConfig{Listen: "127.0.0.1:3000"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Home resolves the beetle home directory.
func Home() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(userHome, ".beetle"), nil
}

// IndexRoot returns the directory holding all indexes under home.
func IndexRoot(home string) string {
	return filepath.Join(home, "index")
}

// Load reads <home>/config.yaml, applying defaults for absent fields.
// A missing file returns the defaults.
func Load(home string) (Config, error) {
	cfg := Default()

	path := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize clamps nonsense values back to defaults.
func (c *Config) normalize() {
	def := Default()
	if c.Writer.BatchSize <= 0 {
		c.Writer.BatchSize = def.Writer.BatchSize
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = def.Search.TopK
	}
	if c.Scanner.Workers <= 0 {
		c.Scanner.Workers = def.Scanner.Workers
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = def.Watch.Debounce
	}
	if c.Server.Listen == "" {
		c.Server.Listen = def.Server.Listen
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}
