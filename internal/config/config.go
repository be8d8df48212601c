package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PortalConfig describes the HR portal export endpoint used by the
// fetch subcommand.
type PortalConfig struct {
	// URL is the calendar export endpoint.
	URL string `yaml:"url" json:"url"`
	// RefreshCron is a cron-style schedule for --watch mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`
	// CacheDir holds the ETag/Last-Modified download cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
	// DownloadPath is where the fetched export is written before the
	// merge pipeline runs on it.
	DownloadPath string `yaml:"download_path" json:"download_path"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone of the portal's wall clock, used when
	// converting exact instants to local dates (e.g. "Europe/Brussels").
	Timezone string `yaml:"timezone" json:"timezone"`

	// MergedSuffix / ExpandedSuffix are appended to the input path to
	// form the output file name of the respective variant.
	MergedSuffix   string `yaml:"merged_suffix" json:"merged_suffix"`
	ExpandedSuffix string `yaml:"expanded_suffix" json:"expanded_suffix"`

	// Portal, if non-nil, enables the fetch subcommand.
	Portal *PortalConfig `yaml:"portal,omitempty" json:"portal,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:       "Europe/Brussels",
		MergedSuffix:   ".merged.ics",
		ExpandedSuffix: ".expended.ics",
		Portal:         nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Brussels"
	}
	if c.MergedSuffix == "" {
		c.MergedSuffix = ".merged.ics"
	}
	if c.ExpandedSuffix == "" {
		c.ExpandedSuffix = ".expended.ics"
	}
	if c.Portal != nil {
		if c.Portal.RefreshCron == "" {
			c.Portal.RefreshCron = "0 6 * * *"
		}
		if c.Portal.CacheDir == "" {
			c.Portal.CacheDir = "./var/portal-cache"
		}
		if c.Portal.DownloadPath == "" {
			c.Portal.DownloadPath = "./Calendar.ics"
		}
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".sdwcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
