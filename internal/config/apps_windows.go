//go:build windows

package config

// DefaultApps returns Windows default app configurations.
func DefaultApps() []AppConfig {
	apps := []AppConfig{
		{
			ID:      "explorer",
			Name:    "Explorer",
			Exec:    []string{"explorer", "/select,", "{}"},
			Enabled: true,
		},
		{
			ID:      "notepad",
			Name:    "Notepad",
			Exec:    []string{"notepad", "{}"},
			Enabled: true,
		},
	}
	return filterAvailable(append(apps, editorApps()...))
}
