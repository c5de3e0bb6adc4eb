package config

import (
	"testing"

	"github.com/parleyhq/go-parley/internal/window"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Theme != "dark" {
		t.Errorf("default theme should be 'dark', got %q", cfg.Theme)
	}
	if cfg.Disclosure.Threshold != window.DefaultThreshold {
		t.Errorf("Threshold = %d, want %d", cfg.Disclosure.Threshold, window.DefaultThreshold)
	}
	if cfg.Disclosure.Preview != window.DefaultPreview {
		t.Errorf("Preview = %d, want %d", cfg.Disclosure.Preview, window.DefaultPreview)
	}
	if cfg.Disclosure.Chunk != window.DefaultChunk {
		t.Errorf("Chunk = %d, want %d", cfg.Disclosure.Chunk, window.DefaultChunk)
	}
	if cfg.Overscan != window.DefaultOverscan {
		t.Errorf("Overscan = %d, want %d", cfg.Overscan, window.DefaultOverscan)
	}
	if !cfg.FollowOnOpen {
		t.Error("FollowOnOpen should default to true")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    Config
		check func(t *testing.T, c Config)
	}{
		{
			name: "empty theme falls back",
			in:   Config{},
			check: func(t *testing.T, c Config) {
				if c.Theme != "dark" {
					t.Errorf("Theme = %q, want dark", c.Theme)
				}
			},
		},
		{
			name: "zero disclosure gets defaults",
			in:   Config{Theme: "light"},
			check: func(t *testing.T, c Config) {
				if c.Disclosure.Threshold != window.DefaultThreshold ||
					c.Disclosure.Preview != window.DefaultPreview ||
					c.Disclosure.Chunk != window.DefaultChunk {
					t.Errorf("Disclosure = %+v, want defaults", c.Disclosure)
				}
			},
		},
		{
			name: "negative overscan clamped",
			in:   Config{Overscan: -3},
			check: func(t *testing.T, c Config) {
				if c.Overscan != window.DefaultOverscan {
					t.Errorf("Overscan = %d, want %d", c.Overscan, window.DefaultOverscan)
				}
			},
		},
		{
			name: "hand-tuned values survive",
			in: Config{
				Theme:      "light",
				Disclosure: DisclosureConfig{Threshold: 100, Preview: 50, Chunk: 200},
				Overscan:   8,
			},
			check: func(t *testing.T, c Config) {
				if c.Theme != "light" || c.Disclosure.Threshold != 100 ||
					c.Disclosure.Preview != 50 || c.Disclosure.Chunk != 200 || c.Overscan != 8 {
					t.Errorf("normalize changed valid values: %+v", c)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, normalize(tt.in))
		})
	}
}
