package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings shelf needs to reach the catalog API.
type Config struct {
	APIURL          string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration // zero disables background refresh
	LogFile         string
	LogLevel        string
	MetricsAddr     string // empty disables the metrics listener
}

const (
	defaultConfigPath     = "~/.config/shelf/config.toml"
	defaultAPIURL         = "https://fakestoreapi.com"
	defaultRequestTimeout = 10 * time.Second
	defaultLogFile        = "~/.local/state/shelf/shelf.log"
	defaultLogLevel       = "info"
	dotenvFile            = ".env"

	envAPIURL      = "SHELF_API_URL"
	envLogLevel    = "SHELF_LOG_LEVEL"
	envMetricsAddr = "SHELF_METRICS_ADDR"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: defaultRequestTimeout,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
	}
}

// Load locates and parses the shelf config, falling back to defaults when
// missing. Values from a .env file in the working directory and from the
// process environment override the file, in that order.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.readFile(resolved); err != nil {
		return Config{}, err
	}

	env, err := environment()
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(env)

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL          string `toml:"api_url"`
		RequestTimeout  int    `toml:"request_timeout"`
		RefreshInterval int    `toml:"refresh_interval"`
		LogFile         string `toml:"log_file"`
		LogLevel        string `toml:"log_level"`
		MetricsAddr     string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		c.APIURL = v
	}
	if raw.RequestTimeout > 0 {
		c.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}
	if raw.RefreshInterval > 0 {
		c.RefreshInterval = time.Duration(raw.RefreshInterval) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	c.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	return nil
}

// environment merges .env values under the real process environment.
func environment() (map[string]string, error) {
	env, err := godotenv.Read(dotenvFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", dotenvFile, err)
		}
		env = map[string]string{}
	}
	for _, key := range []string{envAPIURL, envLogLevel, envMetricsAddr} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) {
	if v := strings.TrimSpace(env[envAPIURL]); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(env[envLogLevel]); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := env[envMetricsAddr]; ok {
		c.MetricsAddr = strings.TrimSpace(v)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
