// parley is a terminal viewer for chat transcripts, live or recorded.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parleyhq/go-parley/internal/cli"
	"github.com/parleyhq/go-parley/internal/config"
	"github.com/parleyhq/go-parley/internal/i18n"
	"github.com/parleyhq/go-parley/internal/source"
	"github.com/parleyhq/go-parley/internal/tui"
	"github.com/parleyhq/go-parley/internal/tui/theme"
	"github.com/parleyhq/go-parley/internal/tuilog"
	"github.com/parleyhq/go-parley/internal/version"
)

// Global flags
var (
	themeName    string // --theme, in-process override
	langOverride string // --lang, UI language override
	logPath      string // --log, debug log destination
)

// Viewer tuning flags. Zero/negative means "use the config value".
var (
	previewBytes int
	chunkBytes   int
	overscanRows int
	noFollow     bool
)

// List command flags
var (
	listLong     bool
	listTemplate string
	listSort     string
	listDesc     bool
)

// Replay command flags
var (
	replaySpeed float64
	replayDelta int
)

// Delete command flags
var forceDelete bool

// Open command flags
var openApp string

// Themes command flags
var (
	outputJSON bool
	importName string
)

// The effective config for this run, loaded in setup and adjusted by
// the tuning flags.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Terminal viewer for chat transcripts",
	Long: `parley renders chat transcripts in the terminal, live or after the fact.

Transcripts are JSONL files, one event per line, written by a chat
client. parley tails files that are still being written and opens
finished ones with windowed scrollback, so multi-megabyte transcripts
stay fast.

Running without a subcommand launches the interactive picker.

Commands:
  view      Open a transcript in the viewer
  tail      Follow a transcript that is still being written
  replay    Play a finished transcript back in recorded time
  list      List transcripts
  themes    Display and manage viewer themes

Examples:
  parley                          # Launch the picker
  parley view demo                # Open the transcript matching "demo"
  parley tail ~/chats/run.jsonl   # Follow a live file
  parley list --long              # Detailed transcript listing`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return tuilog.Log.Close()
	},
	RunE: runPicker,
}

var viewCmd = &cobra.Command{
	Use:   "view <transcript>",
	Short: "Open a transcript in the viewer",
	Long: `Open a transcript in a full-terminal viewer.

The transcript can be specified as:
  - Full path to the .jsonl file
  - Filename (with or without the .jsonl extension)
  - Any fragment of the filename

Oversized turns open collapsed to a short preview; expanding them
reveals more without re-rendering the rest of the transcript.

Navigation:
  ↑/↓/j/k     Move between turns
  PgUp/PgDn   Page up/down
  g/G         Go to top/bottom
  o/O         Reveal more of a long turn / all of it
  Enter       Open the selected turn in a detail page
  q/Esc       Quit

Examples:
  parley view /full/path/to/run.jsonl
  parley view run                  # resolves by name
  parley view run --preview 2000   # longer previews`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

var tailCmd = &cobra.Command{
	Use:   "tail <transcript>",
	Short: "Follow a transcript that is still being written",
	Long: `Follow a transcript that is still being written.

The viewer pins to the newest turn as deltas stream in; scrolling up
unpins, and f pins again. When the writing process goes away, the
viewer says so and keeps the transcript on screen.

Examples:
  parley tail run
  parley tail ~/chats/run.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runTail,
}

var replayCmd = &cobra.Command{
	Use:   "replay <transcript>",
	Short: "Play a finished transcript back in recorded time",
	Long: `Play a finished transcript back as if it were being written live.

Turns are paced by their recorded timestamp gaps; assistant text
streams in chunk by chunk. Use --speed to compress the pauses.

Examples:
  parley replay demo
  parley replay demo --speed 4
  parley replay demo --delta 12`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var catCmd = &cobra.Command{
	Use:   "cat <transcript>",
	Short: "Print a transcript as plain text",
	Long: `Print a transcript to stdout as plain text.

No TUI, no colors; turns are printed with role labels and oversized
turns in full. Useful for piping into grep or a pager.

Examples:
  parley cat demo | less
  parley cat /path/to/run.jsonl > run.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runCat,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transcripts",
	Long: `List transcripts in the transcript directory.

By default, outputs transcript paths one per line, newest first.
Use --long for a detailed summary per transcript.

Sorting:
  --sort name|time    Sort by filename or modified time (default: time)
  --desc              Sort descending (default for time)
  --asc               Sort ascending (default for name)

Output can be customized with a Go text/template via --template.

` + cli.TranscriptSummaryTemplateHelp,
	RunE: runList,
}

var rmCmd = &cobra.Command{
	Use:   "rm <transcript>",
	Short: "Delete a transcript",
	Long: `Delete a transcript file.

The transcript can be specified as:
  - Full path to the .jsonl file
  - Filename (with or without the .jsonl extension)
  - Any fragment of the filename

Before deletion, shows transcript info and prompts for confirmation.
Use --force to skip the confirmation.

Examples:
  parley rm /full/path/to/run.jsonl
  parley rm demo
  parley rm --force demo`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

var cpCmd = &cobra.Command{
	Use:   "cp <transcript> <target>",
	Short: "Copy a transcript to a target location",
	Long: `Copy a transcript file to a target location.

The target can be a file path or a directory.

Examples:
  parley cp demo ./backup/
  parley cp demo ./backup/renamed.jsonl`,
	Args: cobra.ExactArgs(2),
	RunE: runCp,
}

var openCmd = &cobra.Command{
	Use:   "open <transcript>",
	Short: "Open a transcript in an external app",
	Long: `Open a transcript file in an external application.

Without --app, the first enabled app from the allowed list is used.
The allowed apps and their enabled state live in the allowed_apps
section of ~/.parley/config.json; 'parley apps' shows what is
available on this machine.

Examples:
  parley open demo                # first enabled app
  parley open demo --app vscode   # a specific app`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage apps for 'parley open'",
	Long: `Manage the external apps a transcript can be opened in.

Apps are configured in the allowed_apps section of ~/.parley/config.json.
The first enabled app is the default for 'parley open'.

Examples:
  parley apps                  # List all apps
  parley apps list             # List all apps
  parley apps enable vscode    # Enable an app
  parley apps disable finder   # Disable an app`,
	RunE: runAppsList,
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all apps with enabled/disabled status",
	RunE:  runAppsList,
}

var appsEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAppEnabled(args[0], true)
	},
}

var appsDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAppEnabled(args[0], false)
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Display and manage viewer themes",
	Long: `Display the current theme with styled samples.

The theme controls colors for turn labels, gutter bars, borders, and
other UI elements. Themes are stored in ~/.parley/themes/.

Built-in themes: dark, light, mono
User themes can be added to ~/.parley/themes/

Examples:
  parley themes              # Show current theme with samples
  parley themes --json       # Output theme as JSON
  parley themes list         # List all available themes
  parley themes set light    # Switch to light theme`,
	RunE: runThemes,
}

var themesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available themes",
	Long:  `List all built-in and user themes. The active theme is marked with *.`,
	RunE:  runThemesList,
}

var themesSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Set the active theme",
	Long: `Set the active theme by name.

Available built-in themes: dark, light, mono
User themes from ~/.parley/themes/ are also available.

Examples:
  parley themes set dark
  parley themes set light
  parley themes set my-custom-theme`,
	Args: cobra.ExactArgs(1),
	RunE: runThemesSet,
}

var themesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an iTerm2 color scheme as a theme",
	Long: `Import an iTerm2 .itermcolors file as a parley theme.

The scheme's ANSI palette is mapped onto viewer roles: blue for user
turns, green for the assistant, yellow for tools. The imported theme
is written to ~/.parley/themes/ and can then be activated.

Examples:
  parley themes import Dracula.itermcolors
  parley themes import Dracula.itermcolors --name dracula
  parley themes set dracula`,
	Args: cobra.ExactArgs(1),
	RunE: runThemesImport,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE:  runVersion,
}

func main() {
	// Global flags on root
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "theme override for this run (see 'parley themes list')")
	rootCmd.PersistentFlags().StringVar(&langOverride, "lang", "", "UI language override (e.g. en, es)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write debug log to file")

	// Viewer tuning flags, on every command that renders a transcript
	for _, c := range []*cobra.Command{rootCmd, viewCmd, tailCmd, replayCmd} {
		c.Flags().IntVar(&previewBytes, "preview", 0, "preview size in bytes for oversized turns (0 = config value)")
		c.Flags().IntVar(&chunkBytes, "chunk", 0, "bytes revealed per expansion step (0 = config value)")
		c.Flags().IntVar(&overscanRows, "overscan", -1, "turns rendered beyond each viewport edge (-1 = config value)")
		c.Flags().BoolVar(&noFollow, "no-follow", false, "do not pin to the newest turn on open")
	}

	// List command flags
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "show a detailed summary per transcript")
	listCmd.Flags().StringVar(&listTemplate, "template", "", "custom Go text/template for output")
	listCmd.Flags().StringVar(&listSort, "sort", "time", "sort by: name, time")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending (default for time)")
	listCmd.Flags().Bool("asc", false, "sort ascending (default for name)")

	// Replay command flags
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1, "playback speed multiplier (2 = twice as fast)")
	replayCmd.Flags().IntVar(&replayDelta, "delta", 0, "characters per streamed delta (0 = recorded size)")

	// Delete command flags
	rmCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "skip confirmation prompt")

	// Open command flags
	openCmd.Flags().StringVar(&openApp, "app", "", "app ID to open with (see 'parley apps')")

	// Themes command flags
	themesCmd.Flags().BoolVar(&outputJSON, "json", false, "output theme as JSON")
	themesImportCmd.Flags().StringVar(&importName, "name", "", "name for the imported theme (default: file name)")

	// Apps command flags
	appsCmd.Flags().BoolVar(&outputJSON, "json", false, "output apps as JSON")
	appsListCmd.Flags().BoolVar(&outputJSON, "json", false, "output apps as JSON")

	// Build command tree
	themesCmd.AddCommand(themesListCmd)
	themesCmd.AddCommand(themesSetCmd)
	themesCmd.AddCommand(themesImportCmd)

	appsCmd.AddCommand(appsListCmd)
	appsCmd.AddCommand(appsEnableCmd)
	appsCmd.AddCommand(appsDisableCmd)

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(appsCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config and applies the global flag overrides. It
// runs before every command via PersistentPreRunE.
func setup() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		cfg = config.Default()
	}

	// First non-empty log destination wins: flag, then environment,
	// then config. Init no-ops on empty paths and after success.
	if err := tuilog.Init(logPath); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := tuilog.InitFromEnv(); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := tuilog.Init(cfg.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if langOverride != "" {
		cfg.Locale = langOverride
	}
	i18n.Init(i18n.ResolveLocale(cfg.Locale))

	if themeName != "" {
		t, err := theme.LoadByName(themeName)
		if err != nil {
			return fmt.Errorf("load theme %q: %w", themeName, err)
		}
		theme.Use(t)
		tui.RefreshStyles()
	}

	// Viewer tuning overrides
	if previewBytes > 0 {
		cfg.Disclosure.Preview = previewBytes
	}
	if chunkBytes > 0 {
		cfg.Disclosure.Chunk = chunkBytes
	}
	if overscanRows >= 0 {
		cfg.Overscan = overscanRows
	}
	if noFollow {
		cfg.FollowOnOpen = false
	}

	return nil
}

// transcriptDir returns the directory the picker and resolver work in.
func transcriptDir() (string, error) {
	if cfg.TranscriptDir != "" {
		return cfg.TranscriptDir, nil
	}
	return config.DefaultTranscriptDir()
}

// resolveTranscript turns a command-line argument into a transcript
// path. A path that exists on disk wins over name resolution.
func resolveTranscript(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}

	dir, err := transcriptDir()
	if err != nil {
		return "", err
	}

	meta, err := cli.ResolveTranscript(dir, arg)
	if err != nil {
		return "", err
	}
	return meta.Path, nil
}

func runPicker(cmd *cobra.Command, args []string) error {
	dir, err := transcriptDir()
	if err != nil {
		return err
	}

	tuilog.Log.Info("Starting picker", "dir", dir)
	err = tui.RunPicker(dir, cfg)
	tuilog.Log.Info("Picker exited", "error", err)
	return err
}

func runView(cmd *cobra.Command, args []string) error {
	path, err := resolveTranscript(args[0])
	if err != nil {
		return err
	}
	return tui.RunView(path, cfg)
}

func runTail(cmd *cobra.Command, args []string) error {
	path, err := resolveTranscript(args[0])
	if err != nil {
		return err
	}
	return tui.RunTail(path, cfg)
}

func runReplay(cmd *cobra.Command, args []string) error {
	path, err := resolveTranscript(args[0])
	if err != nil {
		return err
	}
	return tui.RunReplay(path, cfg, source.ReplayOptions{
		Speed:      replaySpeed,
		ChunkChars: replayDelta,
	})
}

func runCat(cmd *cobra.Command, args []string) error {
	path, err := resolveTranscript(args[0])
	if err != nil {
		return err
	}
	return tui.DumpTranscript(os.Stdout, path)
}

func runList(cmd *cobra.Command, args []string) error {
	dir, err := transcriptDir()
	if err != nil {
		return err
	}

	metas, err := source.Scan(context.Background(), dir)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("No transcripts found")
		return nil
	}

	formatter := cli.NewTranscriptsFormatter(os.Stdout)

	if listLong || listTemplate != "" {
		// Determine sort order
		ascFlag, _ := cmd.Flags().GetBool("asc")
		descending := listDesc || (!ascFlag && listSort == "time") // time defaults to desc

		return formatter.FormatSummary(metas, listTemplate, cli.ListOptions{
			SortBy:     listSort,
			Descending: descending,
		})
	}

	return formatter.FormatList(metas)
}

func runRm(cmd *cobra.Command, args []string) error {
	dir, err := transcriptDir()
	if err != nil {
		return err
	}

	deleter := cli.NewTranscriptDeleter(dir, cli.DeleteOptions{
		Force: forceDelete,
	})
	return deleter.Delete(args[0])
}

func runCp(cmd *cobra.Command, args []string) error {
	dir, err := transcriptDir()
	if err != nil {
		return err
	}

	copier := cli.NewTranscriptCopier(dir, cli.CopyOptions{})
	return copier.Copy(args[0], args[1])
}

func runOpen(cmd *cobra.Command, args []string) error {
	dir, err := transcriptDir()
	if err != nil {
		return err
	}

	opener := cli.NewTranscriptOpener(dir, cfg.AllowedApps, cli.OpenOptions{})
	return opener.Open(args[0], openApp)
}

func runAppsList(cmd *cobra.Command, args []string) error {
	if outputJSON {
		return cli.FormatAppsJSON(os.Stdout, cfg.AllowedApps)
	}
	return cli.FormatApps(os.Stdout, cfg.AllowedApps)
}

// setAppEnabled flips an app's enabled preference and persists it.
// Works on a freshly loaded config so in-process flag overrides are
// not written to disk.
func setAppEnabled(id string, enabled bool) error {
	fresh, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	for i := range fresh.AllowedApps {
		if fresh.AllowedApps[i].ID != id {
			continue
		}
		fresh.AllowedApps[i].Enabled = enabled
		if err := config.Save(fresh); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Printf("App %s %s\n", fresh.AllowedApps[i].Name, state)
		return nil
	}
	return fmt.Errorf("app not found: %s\n\nUse 'parley apps' to see configured apps", id)
}

func runThemes(cmd *cobra.Command, args []string) error {
	display := cli.NewThemeDisplay(os.Stdout, theme.Current())

	if outputJSON {
		return display.ShowJSON()
	}

	return display.Show()
}

func runThemesList(cmd *cobra.Command, args []string) error {
	return cli.ListThemes(os.Stdout)
}

func runThemesSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := theme.SetActive(name); err != nil {
		return fmt.Errorf("failed to set theme: %w", err)
	}

	fmt.Printf("Theme set to: %s\n", name)
	return nil
}

func runThemesImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	name := importName
	if name == "" {
		base := filepath.Base(args[0])
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	t, err := theme.ImportIterm(f, name)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	if err := theme.Save(name, t); err != nil {
		return err
	}

	fmt.Printf("Imported theme %q\n", name)
	fmt.Printf("Activate it with: parley themes set %s\n", name)
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	fmt.Println(version.String("parley"))
	return nil
}
