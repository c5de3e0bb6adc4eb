package config

import "os/exec"

// AppConfig defines a launchable application for the open-in feature.
type AppConfig struct {
	ID      string   `json:"id"`             // Short identifier (e.g., "finder", "vscode")
	Name    string   `json:"name"`           // Display name (e.g., "Finder", "VS Code")
	Exec    []string `json:"exec,omitempty"` // Command and args; {} is replaced with the transcript path
	Enabled bool     `json:"enabled"`        // Whether this app is enabled
}

// AppInfo is the public representation of an app (excludes Exec).
type AppInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Info returns the public representation of this app.
func (a AppConfig) Info() AppInfo {
	return AppInfo{
		ID:      a.ID,
		Name:    a.Name,
		Enabled: a.Enabled,
	}
}

// BuildCommand returns the command and args with {} replaced by path.
// If no {} placeholder exists, path is appended as the last argument.
// The path goes straight to exec.Command, never through a shell.
func (a AppConfig) BuildCommand(path string) (string, []string) {
	if len(a.Exec) == 0 {
		return "", nil
	}

	cmd := a.Exec[0]
	args := make([]string, 0, len(a.Exec))

	hasPlaceholder := false
	for _, arg := range a.Exec[1:] {
		if arg == "{}" {
			args = append(args, path)
			hasPlaceholder = true
		} else {
			args = append(args, arg)
		}
	}

	if !hasPlaceholder {
		args = append(args, path)
	}

	return cmd, args
}

// validateApps maps a user-configured app list back onto the trusted
// defaults. Only apps whose ID matches a default are kept, the Exec
// command is always taken from the trusted list (never from disk), and
// the user's Enabled preference is preserved. An empty or fully
// unrecognized list falls back to the defaults.
func validateApps(userApps []AppConfig) []AppConfig {
	trusted := DefaultApps()
	if len(userApps) == 0 {
		return trusted
	}

	byID := make(map[string]AppConfig, len(trusted))
	for _, app := range trusted {
		byID[app.ID] = app
	}

	kept := make([]AppConfig, 0, len(userApps))
	for _, u := range userApps {
		t, ok := byID[u.ID]
		if !ok {
			continue
		}
		t.Enabled = u.Enabled
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return trusted
	}
	return kept
}

// filterAvailable drops apps whose availability probe failed, so the
// default list only offers what the machine can actually launch.
func filterAvailable(apps []AppConfig) []AppConfig {
	available := make([]AppConfig, 0, len(apps))
	for _, app := range apps {
		if app.Enabled {
			available = append(available, app)
		}
	}
	return available
}

// checkCommandExists checks if a command is available in PATH.
func checkCommandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// GetApp returns an app config by ID, or nil if not found or disabled.
func (c Config) GetApp(id string) *AppConfig {
	for i := range c.AllowedApps {
		if c.AllowedApps[i].ID == id && c.AllowedApps[i].Enabled {
			return &c.AllowedApps[i]
		}
	}
	return nil
}

// GetEnabledApps returns all enabled apps as public info.
func (c Config) GetEnabledApps() []AppInfo {
	var enabled []AppInfo
	for _, app := range c.AllowedApps {
		if app.Enabled {
			enabled = append(enabled, app.Info())
		}
	}
	return enabled
}
