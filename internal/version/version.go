// Package version reports what build of parley is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time:
// -ldflags="-X github.com/parleyhq/go-parley/internal/version.Version=v1.0.0"
var Version = ""

// Get returns the version string. Unset builds fall back to module
// build info, then to the VCS revision, then to "dev".
func Get() string {
	if Version != "" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				return fmt.Sprintf("dev-%s", setting.Value[:7])
			}
		}
	}

	return "dev"
}

// String returns "name version x" for the version command.
func String(name string) string {
	return fmt.Sprintf("%s version %s", name, Get())
}
