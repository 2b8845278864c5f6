// Package config loads server settings.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// YAML file named by TASKBOARD_CONFIG, TASKBOARD_* environment variables and
// finally command-line flags bound with BindFlags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings of the server.
type Config struct {
	Addr      string `yaml:"addr"`
	DBPath    string `yaml:"db_path"`
	StaticDir string `yaml:"static_dir"`
	LogLevel  string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:      ":8080",
		DBPath:    "data/taskboard.db",
		StaticDir: "",
		LogLevel:  "info",
	}
}

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load builds the configuration from defaults, the optional file at path and
// the environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Addr = EnvOrDefault("TASKBOARD_ADDR", cfg.Addr)
	cfg.DBPath = EnvOrDefault("TASKBOARD_DB_PATH", cfg.DBPath)
	cfg.StaticDir = EnvOrDefault("TASKBOARD_STATIC_DIR", cfg.StaticDir)
	cfg.LogLevel = EnvOrDefault("TASKBOARD_LOG_LEVEL", cfg.LogLevel)
	return cfg, nil
}

// BindFlags registers flags that override cfg when parsed.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "Path to sqlite database file")
	fs.StringVar(&c.StaticDir, "static", c.StaticDir, "Directory with built frontend (empty for API only)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn or error")
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
