// Package config provides application configuration management for parley.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/parleyhq/go-parley/internal/window"
)

// Config holds the parley configuration.
type Config struct {
	Theme         string           `json:"theme"`                    // Name of the active theme
	Locale        string           `json:"locale,omitempty"`         // UI language override (e.g. "es")
	TranscriptDir string           `json:"transcript_dir,omitempty"` // Where the picker scans for transcripts
	Disclosure    DisclosureConfig `json:"disclosure"`               // Oversized-turn reveal settings
	Overscan      int              `json:"overscan"`                 // Extra rendered items beyond each viewport edge
	FollowOnOpen  bool             `json:"follow_on_open"`           // Start pinned to the newest turn
	LogFile       string           `json:"log_file,omitempty"`       // Debug log destination
	AllowedApps   []AppConfig      `json:"allowed_apps,omitempty"`   // Apps allowed for open-in
}

// DisclosureConfig holds the reveal budgets for oversized turns.
type DisclosureConfig struct {
	Threshold int `json:"threshold"` // Content length that triggers preview mode
	Preview   int `json:"preview"`   // Bytes shown before any expansion
	Chunk     int `json:"chunk"`     // Bytes revealed per expansion step
}

// Dir returns the path to the .parley directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// Path returns the path to the main config file.
func Path() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// DefaultTranscriptDir returns where transcripts live unless the
// config says otherwise.
func DefaultTranscriptDir() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "transcripts"), nil
}

// Load loads the configuration from ~/.parley/config.json. A missing
// file yields defaults and writes them to disk so the user has
// something to edit.
func Load() (Config, error) {
	configPath, err := Path()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		cfg := Default()
		if saveErr := Save(cfg); saveErr != nil {
			return cfg, nil // return defaults even if save fails
		}
		return cfg, nil
	} else if err != nil {
		return Config{}, err
	}

	// Start from defaults so missing keys keep working values instead
	// of zeroes that would disable features.
	config := Default()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}

	// Keep only apps from the trusted list; the Exec command is never
	// taken from disk, only the Enabled preference is.
	config.AllowedApps = validateApps(config.AllowedApps)

	return normalize(config), nil
}

// Default returns a default configuration with all defaults set.
func Default() Config {
	return Config{
		Theme: "dark",
		Disclosure: DisclosureConfig{
			Threshold: window.DefaultThreshold,
			Preview:   window.DefaultPreview,
			Chunk:     window.DefaultChunk,
		},
		Overscan:     window.DefaultOverscan,
		FollowOnOpen: true,
		AllowedApps:  DefaultApps(),
	}
}

// normalize clamps hand-edited values back into working ranges.
func normalize(c Config) Config {
	def := Default()
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.Disclosure.Threshold <= 0 {
		c.Disclosure.Threshold = def.Disclosure.Threshold
	}
	if c.Disclosure.Preview <= 0 {
		c.Disclosure.Preview = def.Disclosure.Preview
	}
	if c.Disclosure.Chunk <= 0 {
		c.Disclosure.Chunk = def.Disclosure.Chunk
	}
	if c.Overscan < 0 {
		c.Overscan = def.Overscan
	}
	return c
}

// Save saves the configuration to ~/.parley/config.json.
func Save(config Config) error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}
