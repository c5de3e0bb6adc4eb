package tui

import (
	"fmt"
	"io"
	"path/filepath"

	tea "charm.land/bubbletea/v2"

	"github.com/parleyhq/go-parley/internal/config"
	"github.com/parleyhq/go-parley/internal/source"
)

// RunPicker runs the transcript browser rooted at the picker for dir.
// Selecting a transcript opens the viewer; esc returns to the picker.
func RunPicker(dir string, cfg config.Config) error {
	shell := NewPickerShell(dir, cfg)
	p := tea.NewProgram(shell, termSizeOpts()...)
	_, err := p.Run()
	return err
}

func runTranscript(page TranscriptPage, title string, cfg config.Config) error {
	shell := NewShell(NavItem{Title: title, Model: page}, cfg)
	p := tea.NewProgram(shell, termSizeOpts()...)
	_, err := p.Run()
	return err
}

// RunView opens a transcript file for reading.
func RunView(path string, cfg config.Config) error {
	return runTranscript(NewTranscriptPage(path, ModeView, cfg), filepath.Base(path), cfg)
}

// RunTail opens a transcript and follows writes as they land.
func RunTail(path string, cfg config.Config) error {
	return runTranscript(NewTranscriptPage(path, ModeTail, cfg), filepath.Base(path), cfg)
}

// RunReplay re-delivers a recorded transcript with its original pacing.
func RunReplay(path string, cfg config.Config, opts source.ReplayOptions) error {
	return runTranscript(NewReplayPage(path, cfg, opts), filepath.Base(path), cfg)
}

// DumpTranscript writes a transcript to w as plain text, one turn after
// another. Images are emitted inline when the terminal's graphics
// protocol supports it, with a caption fallback otherwise.
func DumpTranscript(w io.Writer, path string) error {
	res, err := source.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	for i := range res.Turns {
		turn := &res.Turns[i]
		fmt.Fprintf(w, "%s:\n", roleName(turn.Role))
		if text := turn.Content(); text != "" {
			fmt.Fprintln(w, text)
		}
		for _, b := range turn.Blocks {
			if b.Type != "image" || b.MediaData == "" {
				continue
			}
			if img := renderImageInline(b.MediaData, 80); img != "" {
				fmt.Fprint(w, img)
				fmt.Fprintln(w)
			} else {
				fmt.Fprintln(w, imageCaption(b.MediaType, b.MediaData))
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
