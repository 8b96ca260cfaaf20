// Package config loads settings for the spellingbee CLI from defaults, an
// optional YAML file, an optional .env file and SPELLINGBEE_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and the file exists.
const DefaultFile = "spellingbee.yaml"

const envPrefix = "SPELLINGBEE_"

// Config holds every tunable. Empty path fields are derived from DataDir.
type Config struct {
	DataDir    string `yaml:"data_dir"`
	StorePath  string `yaml:"store_path"`
	IndexPath  string `yaml:"index_path"`
	UseIndex   bool   `yaml:"use_index"`
	SessionDir string `yaml:"session_dir"`
	LogPath    string `yaml:"log_path"`

	BaseURL         string        `yaml:"base_url"`
	UserAgent       string        `yaml:"user_agent"`
	RequestInterval time.Duration `yaml:"request_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	Workers         int           `yaml:"workers"`
	UpdateDays      int           `yaml:"update_days"`
	FirstDate       string        `yaml:"first_date"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:         "data",
		UseIndex:        true,
		LogPath:         filepath.Join("log", "log-file.txt"),
		BaseURL:         "http://nytbee.com",
		UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_3) AppleWebKit/537.75.14 (KHTML, like Gecko) Version/7.0.3 Safari/7046A194A",
		RequestInterval: 3 * time.Second,
		RequestTimeout:  10 * time.Second,
		Workers:         1,
		UpdateDays:      10,
		FirstDate:       "20180729",
	}
}

// Load builds a Config. An explicit path must exist; with an empty path
// DefaultFile is used only if present.
func Load(path string) (Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		file = DefaultFile
	}
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", file, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == "":
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnvString("DATA_DIR", c.DataDir)
	c.StorePath = getEnvString("STORE_PATH", c.StorePath)
	c.IndexPath = getEnvString("INDEX_PATH", c.IndexPath)
	c.UseIndex = getEnvBool("USE_INDEX", c.UseIndex)
	c.SessionDir = getEnvString("SESSION_DIR", c.SessionDir)
	c.LogPath = getEnvString("LOG_PATH", c.LogPath)
	c.BaseURL = getEnvString("BASE_URL", c.BaseURL)
	c.UserAgent = getEnvString("USER_AGENT", c.UserAgent)
	c.RequestInterval = getEnvDuration("REQUEST_INTERVAL", c.RequestInterval)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.Workers = getEnvInt("WORKERS", c.Workers)
	c.UpdateDays = getEnvInt("UPDATE_DAYS", c.UpdateDays)
	c.FirstDate = getEnvString("FIRST_DATE", c.FirstDate)
}

// Validate rejects settings the updater or session cannot run with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: data_dir must be set")
	}
	if c.BaseURL == "" {
		return errors.New("config: base_url must be set")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	if c.UpdateDays < 1 {
		return fmt.Errorf("config: update_days must be positive, got %d", c.UpdateDays)
	}
	if c.RequestInterval < 0 || c.RequestTimeout <= 0 {
		return errors.New("config: request_interval must be >= 0 and request_timeout > 0")
	}
	if _, err := time.Parse("20060102", c.FirstDate); err != nil {
		return fmt.Errorf("config: first_date %q: %w", c.FirstDate, err)
	}
	return nil
}

// StoreFile is the puzzle table path.
func (c Config) StoreFile() string {
	if c.StorePath != "" {
		return c.StorePath
	}
	return filepath.Join(c.DataDir, "saved-words.txt")
}

// IndexFile is the SQLite index path, or "" when the index is disabled.
func (c Config) IndexFile() string {
	if !c.UseIndex {
		return ""
	}
	if c.IndexPath != "" {
		return c.IndexPath
	}
	return filepath.Join(c.DataDir, "puzzles.db")
}

// SessionsDir holds the per-day session logs.
func (c Config) SessionsDir() string {
	if c.SessionDir != "" {
		return c.SessionDir
	}
	return filepath.Join(c.DataDir, "sessions")
}

func getEnvString(key, fallback string) string {
	if val, ok := os.LookupEnv(envPrefix + key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", envPrefix+key, "err", err, "default", fallback)
		return fallback
	}
	return d
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("invalid int, using default", "key", envPrefix+key, "err", err, "default", fallback)
		return fallback
	}
	return i
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		slog.Warn("invalid bool, using default", "key", envPrefix+key, "err", err, "default", fallback)
		return fallback
	}
	return b
}
