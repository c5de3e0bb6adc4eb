package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/parleyhq/go-parley/internal/config"
)

// TranscriptOpener launches a transcript file in an external app.
type TranscriptOpener struct {
	dir  string
	apps []config.AppConfig
	opts OpenOptions
}

// OpenOptions configures transcript opening.
type OpenOptions struct {
	Stdout io.Writer

	// Launch starts the app process. Defaults to a detached
	// exec.Command start; tests inject a recorder.
	Launch func(cmd string, args []string) error
}

// NewTranscriptOpener creates a new transcript opener scoped to dir,
// choosing from the given allowed apps.
func NewTranscriptOpener(dir string, apps []config.AppConfig, opts OpenOptions) *TranscriptOpener {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Launch == nil {
		opts.Launch = launchDetached
	}
	return &TranscriptOpener{dir: dir, apps: apps, opts: opts}
}

// Open resolves the transcript and launches it in the app with the
// given ID, or in the first enabled app when appID is empty.
func (o *TranscriptOpener) Open(query, appID string) error {
	meta, err := ResolveTranscript(o.dir, query)
	if err != nil {
		return err
	}

	app, err := o.pickApp(appID)
	if err != nil {
		return err
	}

	cmd, args := app.BuildCommand(meta.Path)
	if cmd == "" {
		return fmt.Errorf("app %s has no command configured", app.ID)
	}
	if err := o.opts.Launch(cmd, args); err != nil {
		return fmt.Errorf("launch %s: %w", app.Name, err)
	}

	fmt.Fprintf(o.opts.Stdout, "Opening %s in %s\n", meta.Path, app.Name)
	return nil
}

func (o *TranscriptOpener) pickApp(appID string) (*config.AppConfig, error) {
	if appID != "" {
		for i := range o.apps {
			if o.apps[i].ID == appID && o.apps[i].Enabled {
				return &o.apps[i], nil
			}
		}
		return nil, fmt.Errorf("app not found or disabled: %s\n\nUse 'parley apps' to see available apps", appID)
	}
	for i := range o.apps {
		if o.apps[i].Enabled {
			return &o.apps[i], nil
		}
	}
	return nil, fmt.Errorf("no apps enabled\n\nEdit allowed_apps in your config to enable one")
}

func launchDetached(cmd string, args []string) error {
	c := exec.Command(cmd, args...)
	c.Stdout = nil
	c.Stderr = nil
	if err := c.Start(); err != nil {
		return err
	}
	// Let the app outlive us; reap in the background to avoid zombies
	// while parley is still running.
	go c.Wait()
	return nil
}

// FormatApps writes a table of the configured apps and their enabled
// state. The first enabled app is the default for 'parley open'.
func FormatApps(w io.Writer, apps []config.AppConfig) error {
	if len(apps) == 0 {
		_, err := fmt.Fprintln(w, "No apps configured.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tENABLED")
	markedDefault := false
	for _, app := range apps {
		enabled := "no"
		if app.Enabled {
			enabled = "yes"
			if !markedDefault {
				enabled = "yes (default)"
				markedDefault = true
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", app.ID, app.Name, enabled)
	}
	return tw.Flush()
}

// FormatAppsJSON writes the apps as a JSON array of public app info.
func FormatAppsJSON(w io.Writer, apps []config.AppConfig) error {
	out := make([]config.AppInfo, len(apps))
	for i, app := range apps {
		out[i] = app.Info()
	}
	return json.NewEncoder(w).Encode(out)
}
