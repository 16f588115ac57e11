// ABOUTME: Geosnap configuration management
// ABOUTME: Data/cache directories, camera selection, and location thresholds

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/geosnap/internal/capture"
	"github.com/harper/geosnap/internal/location"
	"github.com/harper/geosnap/internal/metafile"
)

// LocationConfig holds the tracker thresholds, in seconds and meters so the
// config file stays hand-editable.
type LocationConfig struct {
	ProbeTimeoutSeconds     float64 `json:"probe_timeout_seconds,omitempty"`
	CurrentTimeoutSeconds   float64 `json:"current_timeout_seconds,omitempty"`
	FreshnessWindowSeconds  float64 `json:"freshness_window_seconds,omitempty"`
	MaxStalenessSeconds     float64 `json:"max_staleness_seconds,omitempty"`
	WatchMinDistanceMeters  float64 `json:"watch_min_distance_meters,omitempty"`
	WatchMinIntervalSeconds float64 `json:"watch_min_interval_seconds,omitempty"`
}

// Config stores geosnap configuration.
type Config struct {
	// DataDir is the root directory for stored records and the journal.
	// Supports ~ expansion. Defaults to ~/.local/share/geosnap.
	DataDir string `json:"data_dir,omitempty"`

	// CacheDir holds the last-fix cache. Defaults to ~/.cache/geosnap.
	CacheDir string `json:"cache_dir,omitempty"`

	// CameraDevice selects the capture device for live captures.
	CameraDevice int `json:"camera_device,omitempty"`

	Location LocationConfig `json:"location,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetCacheDir returns the configured cache directory with ~ expanded.
func (c *Config) GetCacheDir() string {
	if c.CacheDir == "" {
		return defaultCacheDir()
	}
	return ExpandPath(c.CacheDir)
}

// MediaDir is where image and metadata artifacts live.
func (c *Config) MediaDir() string {
	return filepath.Join(c.GetDataDir(), "media")
}

// JournalPath is the capture journal database path.
func (c *Config) JournalPath() string {
	return filepath.Join(c.GetDataDir(), "journal.db")
}

// FixCacheDir is the Badger directory for the last-fix cache.
func (c *Config) FixCacheDir() string {
	return filepath.Join(c.GetCacheDir(), "fixcache")
}

// TrackerConfig converts the file representation to tracker thresholds,
// filling defaults for unset fields.
func (c *Config) TrackerConfig() location.Config {
	cfg := location.DefaultConfig()
	if c.Location.ProbeTimeoutSeconds > 0 {
		cfg.ProbeTimeout = secondsToDuration(c.Location.ProbeTimeoutSeconds)
	}
	if c.Location.CurrentTimeoutSeconds > 0 {
		cfg.CurrentTimeout = secondsToDuration(c.Location.CurrentTimeoutSeconds)
	}
	if c.Location.FreshnessWindowSeconds > 0 {
		cfg.FreshnessWindow = secondsToDuration(c.Location.FreshnessWindowSeconds)
	}
	if c.Location.WatchMinDistanceMeters > 0 {
		cfg.WatchMinDistanceMeters = c.Location.WatchMinDistanceMeters
	}
	if c.Location.WatchMinIntervalSeconds > 0 {
		cfg.WatchMinInterval = secondsToDuration(c.Location.WatchMinIntervalSeconds)
	}
	return cfg
}

// CaptureConfig converts the file representation to orchestrator policy.
func (c *Config) CaptureConfig() capture.Config {
	cfg := capture.DefaultConfig()
	cfg.DeviceID = c.CameraDevice
	if c.Location.FreshnessWindowSeconds > 0 {
		cfg.FreshnessWindow = secondsToDuration(c.Location.FreshnessWindowSeconds)
	}
	if c.Location.CurrentTimeoutSeconds > 0 {
		cfg.TagTimeout = secondsToDuration(c.Location.CurrentTimeoutSeconds)
	}
	if c.Location.MaxStalenessSeconds > 0 {
		cfg.TagMaxStaleness = secondsToDuration(c.Location.MaxStalenessSeconds)
	}
	return cfg
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "geosnap")
}

func defaultCacheDir() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, "geosnap")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "geosnap", "config.json")
}

// Load reads config from disk, returning defaults when no file exists.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return metafile.AtomicWrite(path, data)
}
