//go:build darwin

package config

import (
	"os"
	"path/filepath"
)

// DefaultApps returns macOS default app configurations.
func DefaultApps() []AppConfig {
	apps := []AppConfig{
		{
			ID:      "finder",
			Name:    "Finder",
			Exec:    []string{"open", "-R", "{}"},
			Enabled: true,
		},
		{
			ID:      "textedit",
			Name:    "TextEdit",
			Exec:    []string{"open", "-e", "{}"},
			Enabled: true,
		},
		{
			ID:      "bbedit",
			Name:    "BBEdit",
			Exec:    []string{"open", "-a", "BBEdit", "{}"},
			Enabled: checkAppExists("BBEdit"),
		},
	}
	return filterAvailable(append(apps, editorApps()...))
}

// checkAppExists checks if a macOS app exists in /Applications.
func checkAppExists(name string) bool {
	if home, err := os.UserHomeDir(); err == nil {
		if _, err := os.Stat(filepath.Join(home, "Applications", name+".app")); err == nil {
			return true
		}
	}
	if _, err := os.Stat("/Applications/" + name + ".app"); err == nil {
		return true
	}
	return false
}
