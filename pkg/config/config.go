// Package config handles loading and saving spdash configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/spdash/config.yaml
//
// Everything that used to be a hardcoded constant upstream lives here:
// backup search locations, the counter id mapping, and the tag exclusion
// list.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/spdash/pkg/chart"
	"github.com/vanderheijden86/spdash/pkg/loader"
)

// SearchLocation is one configured (directory, glob) backup search entry.
type SearchLocation struct {
	Dir  string `yaml:"dir"`
	Glob string `yaml:"glob,omitempty"`
}

// Config is the top-level configuration for spdash.
type Config struct {
	// SearchLocations override the platform defaults when non-empty.
	SearchLocations []SearchLocation `yaml:"search_locations,omitempty"`
	// Counters maps logical counter names (water, media, workout) to the
	// snapshot entity ids backing them.
	Counters map[string]string `yaml:"counters,omitempty"`
	// ExcludedTags are tag titles hidden from the tags pie.
	ExcludedTags []string `yaml:"excluded_tags,omitempty"`
	// PollSeconds is the file-change poll interval for watch mode.
	PollSeconds int `yaml:"poll_seconds,omitempty"`
	// ExportDir is the default output directory for chart exports.
	ExportDir string `yaml:"export_dir,omitempty"`
}

// DefaultConfig returns a Config with the upstream dashboard's defaults.
func DefaultConfig() Config {
	return Config{
		Counters:     chart.DefaultCounterIDs(),
		ExcludedTags: []string{"Today"},
		PollSeconds:  10,
		ExportDir:    "spdash-out",
	}
}

// ConfigDir returns the XDG config directory for spdash.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "spdash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "spdash")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Counters == nil {
		cfg.Counters = chart.DefaultCounterIDs()
	}
	if cfg.PollSeconds <= 0 {
		cfg.PollSeconds = 10
	}
	for i := range cfg.SearchLocations {
		cfg.SearchLocations[i].Dir = expandHome(cfg.SearchLocations[i].Dir)
	}
	cfg.ExportDir = expandHome(cfg.ExportDir)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Locations resolves the effective loader search locations: the configured
// list when present, the platform defaults otherwise.
func (c Config) Locations() []loader.SearchLocation {
	if len(c.SearchLocations) == 0 {
		return loader.DefaultSearchLocations()
	}
	locations := make([]loader.SearchLocation, 0, len(c.SearchLocations))
	for _, loc := range c.SearchLocations {
		glob := loc.Glob
		if glob == "" {
			glob = loader.DefaultGlob
		}
		locations = append(locations, loader.SearchLocation{Dir: loc.Dir, Glob: glob})
	}
	return locations
}

// ExcludedTagSet returns the excluded tag titles as a lookup set.
func (c Config) ExcludedTagSet() map[string]bool {
	set := make(map[string]bool, len(c.ExcludedTags))
	for _, tag := range c.ExcludedTags {
		set[tag] = true
	}
	return set
}

// PollInterval returns the poll interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
