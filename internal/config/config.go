package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/vertextoedge/diskwatch/internal/diskutil"
)

// Config represents the entire application configuration
type Config struct {
	Paths   []PathConfig  `mapstructure:"paths"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Watch   WatchConfig   `mapstructure:"watch"`
	History HistoryConfig `mapstructure:"history"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PathConfig describes one tracked directory
type PathConfig struct {
	Name    string        `mapstructure:"name"`
	Path    string        `mapstructure:"path"`
	MaxSize string        `mapstructure:"max_size"` // human-readable, e.g. "50 GB"; empty = unlimited
	Cleanup CleanupConfig `mapstructure:"cleanup"`
}

// CleanupConfig contains stale file cleanup settings for a tracked directory
type CleanupConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	StaleSuffixes []string `mapstructure:"stale_suffixes"`
	MaxAge        string   `mapstructure:"max_age"`
}

// MonitorConfig contains sampling settings
type MonitorConfig struct {
	SampleInterval      string `mapstructure:"sample_interval"`
	Debounce            string `mapstructure:"debounce"`
	MaxDiskUsagePercent int    `mapstructure:"max_disk_usage_percent"`
	CleanupInterval     string `mapstructure:"cleanup_interval"`
}

// WatchConfig contains filesystem watch settings
type WatchConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// HistoryConfig contains snapshot history settings
type HistoryConfig struct {
	DBPath        string `mapstructure:"db_path"`
	Retention     string `mapstructure:"retention"`
	PruneInterval string `mapstructure:"prune_interval"`
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	BindAddr     string `mapstructure:"bind_addr"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from the specified file path
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("monitor.sample_interval", "1m")
	viper.SetDefault("monitor.debounce", "2s")
	viper.SetDefault("monitor.max_disk_usage_percent", 90)
	viper.SetDefault("monitor.cleanup_interval", "1h")
	viper.SetDefault("watch.enabled", true)
	viper.SetDefault("history.db_path", "")
	viper.SetDefault("history.retention", "168h")
	viper.SetDefault("history.prune_interval", "1h")
	viper.SetDefault("http.bind_addr", "127.0.0.1:9090")
	viper.SetDefault("http.read_timeout", "30s")
	viper.SetDefault("http.write_timeout", "30s")
	viper.SetDefault("http.idle_timeout", "60s")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("at least one tracked path is required")
	}

	seen := make(map[string]bool, len(c.Paths))
	for i, p := range c.Paths {
		if p.Name == "" {
			return fmt.Errorf("paths[%d].name is required", i)
		}
		if p.Path == "" {
			return fmt.Errorf("paths[%d].path is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate path name: %s", p.Name)
		}
		seen[p.Name] = true

		if p.MaxSize != "" && diskutil.ParseSize(p.MaxSize) == 0 {
			return fmt.Errorf("paths[%d].max_size must be a positive size like \"50 GB\" (or empty for unlimited)", i)
		}
		if p.Cleanup.MaxAge != "" {
			if _, err := time.ParseDuration(p.Cleanup.MaxAge); err != nil {
				return fmt.Errorf("invalid paths[%d].cleanup.max_age: %w", i, err)
			}
		}
	}

	// Validate monitor config
	if _, err := time.ParseDuration(c.Monitor.SampleInterval); err != nil {
		return fmt.Errorf("invalid monitor.sample_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.Monitor.Debounce); err != nil {
		return fmt.Errorf("invalid monitor.debounce: %w", err)
	}
	if c.Monitor.MaxDiskUsagePercent <= 0 || c.Monitor.MaxDiskUsagePercent > 100 {
		return fmt.Errorf("monitor.max_disk_usage_percent must be between 1 and 100")
	}

	// Validate history config
	if _, err := time.ParseDuration(c.History.Retention); err != nil {
		return fmt.Errorf("invalid history.retention: %w", err)
	}
	if _, err := time.ParseDuration(c.History.PruneInterval); err != nil {
		return fmt.Errorf("invalid history.prune_interval: %w", err)
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetMaxSizeBytes returns the directory size budget in bytes, 0 for unlimited
func (p *PathConfig) GetMaxSizeBytes() int64 {
	if p.MaxSize == "" {
		return 0
	}
	return diskutil.ParseSize(p.MaxSize)
}

// GetStaleMaxAge returns the stale file age threshold as time.Duration
func (p *PathConfig) GetStaleMaxAge() time.Duration {
	d, _ := time.ParseDuration(p.Cleanup.MaxAge)
	if d == 0 {
		return 24 * time.Hour
	}
	return d
}

// GetStaleSuffixes returns the stale file suffixes to clean up
func (p *PathConfig) GetStaleSuffixes() []string {
	if len(p.Cleanup.StaleSuffixes) == 0 {
		return []string{".part", ".downloading", ".tmp"}
	}
	return p.Cleanup.StaleSuffixes
}

// GetSampleInterval returns the sample interval as time.Duration
func (c *MonitorConfig) GetSampleInterval() time.Duration {
	d, _ := time.ParseDuration(c.SampleInterval)
	if d == 0 {
		return time.Minute
	}
	return d
}

// GetDebounce returns the change notification quiet period as time.Duration
func (c *MonitorConfig) GetDebounce() time.Duration {
	d, _ := time.ParseDuration(c.Debounce)
	if d == 0 {
		return 2 * time.Second
	}
	return d
}

// GetCleanupInterval returns the cleanup interval as time.Duration
func (c *MonitorConfig) GetCleanupInterval() time.Duration {
	d, _ := time.ParseDuration(c.CleanupInterval)
	if d == 0 {
		return time.Hour
	}
	return d
}

// GetRetention returns the snapshot retention period as time.Duration
func (c *HistoryConfig) GetRetention() time.Duration {
	d, _ := time.ParseDuration(c.Retention)
	if d == 0 {
		return 168 * time.Hour
	}
	return d
}

// GetPruneInterval returns the prune interval as time.Duration
func (c *HistoryConfig) GetPruneInterval() time.Duration {
	d, _ := time.ParseDuration(c.PruneInterval)
	if d == 0 {
		return time.Hour
	}
	return d
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// GetWriteTimeout returns the write timeout as time.Duration
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *HTTPConfig) GetIdleTimeout() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	if d == 0 {
		return 60 * time.Second
	}
	return d
}
