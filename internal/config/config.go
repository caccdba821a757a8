package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	lferrors "github.com/Aman-CERP/localfiles/internal/errors"
)

const (
	// ProjectConfigName is the project-level configuration file name.
	ProjectConfigName = ".localfiles.yaml"

	// DefaultMaxFileSize is the largest file the indexer will read (10 MiB).
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	// DefaultSearchLimit is the result cap used when a caller gives none.
	DefaultSearchLimit = 10

	// DefaultSnippetWindow is the snippet width in bytes around the first match.
	DefaultSnippetWindow = 200
)

// Config represents the complete localfiles configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Watcher WatcherConfig `yaml:"watcher" json:"watcher"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// IndexConfig configures the on-disk index and the indexer.
type IndexConfig struct {
	// Path is the index storage directory.
	Path string `yaml:"path" json:"path"`
	// MaxFileSize is the size ceiling in bytes; larger files are skipped.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`
	// Workers bounds parallel document building during directory indexing.
	Workers int `yaml:"workers" json:"workers"`
	// Paths are indexed and watched when the server starts.
	Paths []string `yaml:"paths" json:"paths"`
}

// WatcherConfig configures change ingestion.
type WatcherConfig struct {
	// Debounce is the quiescence window, e.g. "500ms".
	Debounce string `yaml:"debounce" json:"debounce"`
	// MaxWait caps how long a batch may keep growing under a steady event stream.
	MaxWait string `yaml:"max_wait" json:"max_wait"`
	// BufferSize is the event channel capacity.
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`
}

// SearchConfig configures query limits and result presentation.
type SearchConfig struct {
	DefaultLimit  int `yaml:"default_limit" json:"default_limit"`
	MaxLimit      int `yaml:"max_limit" json:"max_limit"`
	SnippetWindow int `yaml:"snippet_window" json:"snippet_window"`
	// CacheSize is the number of cached search responses; 0 disables the cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Name      string `yaml:"name" json:"name"`
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// LoggingConfig configures log file rotation.
type LoggingConfig struct {
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int `yaml:"max_files" json:"max_files"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			Path:        DefaultIndexPath(),
			MaxFileSize: DefaultMaxFileSize,
			Workers:     runtime.NumCPU(),
		},
		Watcher: WatcherConfig{
			Debounce:   "500ms",
			MaxWait:    "5s",
			BufferSize: 256,
		},
		Search: SearchConfig{
			DefaultLimit:  DefaultSearchLimit,
			MaxLimit:      100,
			SnippetWindow: DefaultSnippetWindow,
			CacheSize:     128,
		},
		Server: ServerConfig{
			Name:      "localfiles",
			Transport: "stdio",
			LogLevel:  "info",
		},
		Logging: LoggingConfig{
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// DefaultIndexPath returns <temp dir>/localfiles_index.
func DefaultIndexPath() string {
	return filepath.Join(os.TempDir(), "localfiles_index")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/localfiles/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/localfiles/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "localfiles", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "localfiles", "config.yaml")
	}
	return filepath.Join(home, ".config", "localfiles", "config.yaml")
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var parsed Config
	if err := readYAML(configPath, &parsed); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return &parsed, nil
}

// Load loads configuration for the given working directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/localfiles/config.yaml)
//  3. Project config (.localfiles.yaml in dir)
//  4. Environment variables (LOCALFILES_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, lferrors.ConfigError("failed to load user config", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	projectPath := filepath.Join(dir, ProjectConfigName)
	if fileExists(projectPath) {
		var parsed Config
		if err := readYAML(projectPath, &parsed); err != nil {
			return nil, lferrors.ConfigError("failed to load project config", err)
		}
		cfg.mergeWith(&parsed)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, lferrors.ConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// readYAML parses a YAML file into out.
func readYAML(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Index.Path != "" {
		c.Index.Path = other.Index.Path
	}
	if other.Index.MaxFileSize != 0 {
		c.Index.MaxFileSize = other.Index.MaxFileSize
	}
	if other.Index.Workers != 0 {
		c.Index.Workers = other.Index.Workers
	}
	if len(other.Index.Paths) > 0 {
		c.Index.Paths = other.Index.Paths
	}

	if other.Watcher.Debounce != "" {
		c.Watcher.Debounce = other.Watcher.Debounce
	}
	if other.Watcher.MaxWait != "" {
		c.Watcher.MaxWait = other.Watcher.MaxWait
	}
	if other.Watcher.BufferSize != 0 {
		c.Watcher.BufferSize = other.Watcher.BufferSize
	}

	if other.Search.DefaultLimit != 0 {
		c.Search.DefaultLimit = other.Search.DefaultLimit
	}
	if other.Search.MaxLimit != 0 {
		c.Search.MaxLimit = other.Search.MaxLimit
	}
	if other.Search.SnippetWindow != 0 {
		c.Search.SnippetWindow = other.Search.SnippetWindow
	}
	// 0 is meaningful for the cache; a negative value in YAML disables it too.
	if other.Search.CacheSize != 0 {
		c.Search.CacheSize = max(other.Search.CacheSize, 0)
	}

	if other.Server.Name != "" {
		c.Server.Name = other.Server.Name
	}
	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}

	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyEnvOverrides applies LOCALFILES_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LOCALFILES_INDEX_PATH"); v != "" {
		c.Index.Path = v
	}
	if v := os.Getenv("LOCALFILES_MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return lferrors.ConfigError("LOCALFILES_MAX_FILE_SIZE must be an integer", err)
		}
		c.Index.MaxFileSize = n
	}
	if v := os.Getenv("LOCALFILES_PATHS"); v != "" {
		c.Index.Paths = filepath.SplitList(v)
	}
	if v := os.Getenv("LOCALFILES_DEBOUNCE"); v != "" {
		c.Watcher.Debounce = v
	}
	if v := os.Getenv("LOCALFILES_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return lferrors.ConfigError("LOCALFILES_CACHE_SIZE must be an integer", err)
		}
		c.Search.CacheSize = n
	}
	if v := os.Getenv("LOCALFILES_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Index.Path) == "" {
		return fmt.Errorf("index.path must not be empty")
	}
	if c.Index.MaxFileSize <= 0 {
		return fmt.Errorf("index.max_file_size must be positive, got %d", c.Index.MaxFileSize)
	}
	if c.Index.Workers < 1 {
		return fmt.Errorf("index.workers must be at least 1, got %d", c.Index.Workers)
	}

	if d, err := time.ParseDuration(c.Watcher.Debounce); err != nil || d <= 0 {
		return fmt.Errorf("watcher.debounce must be a positive duration, got %q", c.Watcher.Debounce)
	}
	if d, err := time.ParseDuration(c.Watcher.MaxWait); err != nil || d <= 0 {
		return fmt.Errorf("watcher.max_wait must be a positive duration, got %q", c.Watcher.MaxWait)
	}
	if c.Watcher.BufferSize < 1 {
		return fmt.Errorf("watcher.buffer_size must be at least 1, got %d", c.Watcher.BufferSize)
	}

	if c.Search.DefaultLimit < 1 {
		return fmt.Errorf("search.default_limit must be at least 1, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search.max_limit (%d) must be >= search.default_limit (%d)", c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	if c.Search.SnippetWindow < 1 {
		return fmt.Errorf("search.snippet_window must be at least 1, got %d", c.Search.SnippetWindow)
	}
	if c.Search.CacheSize < 0 {
		return fmt.Errorf("search.cache_size must be non-negative, got %d", c.Search.CacheSize)
	}

	if !strings.EqualFold(c.Server.Transport, "stdio") {
		return fmt.Errorf("server.transport must be 'stdio', got %s", c.Server.Transport)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}
	return nil
}

// DebounceDuration returns the parsed quiescence window.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watcher.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// MaxWaitDuration returns the parsed batch age cap.
func (c *Config) MaxWaitDuration() time.Duration {
	d, err := time.ParseDuration(c.Watcher.MaxWait)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
