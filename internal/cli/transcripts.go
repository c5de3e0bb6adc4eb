package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/parleyhq/go-parley/internal/parley"
	"github.com/parleyhq/go-parley/internal/source"
	"github.com/parleyhq/go-parley/internal/tui"
)

// TranscriptsFormatter handles transcript listing output.
type TranscriptsFormatter struct {
	w io.Writer
}

// NewTranscriptsFormatter creates a new transcripts formatter.
func NewTranscriptsFormatter(w io.Writer) *TranscriptsFormatter {
	return &TranscriptsFormatter{w: w}
}

// ListOptions configures transcript list output.
type ListOptions struct {
	SortBy     string // "time" or "name"
	Descending bool
}

// FormatList outputs transcripts one per line (full path).
func (f *TranscriptsFormatter) FormatList(metas []parley.TranscriptMeta) error {
	for _, m := range metas {
		fmt.Fprintln(f.w, m.Path)
	}
	return nil
}

// TranscriptSummaryData is the template data for transcript summaries.
type TranscriptSummaryData struct {
	Path        string
	Title       string
	FirstPrompt string
	Turns       int
	SizeBytes   int64
	Modified    time.Time
	Live        bool
}

const defaultTranscriptSummaryTemplate = `{{range .}}{{.Path}}
  Title:    {{if .Title}}{{.Title}}{{else}}(untitled){{end}}
  Turns:    {{.Turns}}
  Size:     {{.SizeBytes}} bytes
  Modified: {{.Modified.Format "2006-01-02 15:04"}}{{if .Live}}
  Writer:   live{{end}}{{if .FirstPrompt}}
  Prompt:   {{.FirstPrompt}}{{end}}

{{end}}`

// TranscriptSummaryTemplateHelp documents the template variables.
const TranscriptSummaryTemplateHelp = `Template variables:
  {{.Path}}         Full path to the transcript file
  {{.Title}}        Transcript title (if recorded)
  {{.FirstPrompt}}  First user prompt (if any)
  {{.Turns}}        Number of turns
  {{.SizeBytes}}    File size in bytes
  {{.Modified}}     Last modified time (time.Time)
  {{.Live}}         Whether the writing process is still alive`

// FormatSummary outputs detailed transcript information.
func (f *TranscriptsFormatter) FormatSummary(metas []parley.TranscriptMeta, customTmpl string, opts ListOptions) error {
	sortTranscripts(metas, opts.SortBy, opts.Descending)

	data := make([]TranscriptSummaryData, len(metas))
	for i, m := range metas {
		data[i] = TranscriptSummaryData{
			Path:        m.Path,
			Title:       m.Title,
			FirstPrompt: m.FirstPrompt,
			Turns:       m.TurnCount,
			SizeBytes:   m.SizeBytes,
			Modified:    m.ModifiedAt,
			Live:        m.WriterPID > 0 && source.WriterAlive(m.WriterPID),
		}
	}

	tmplStr := defaultTranscriptSummaryTemplate
	if customTmpl != "" {
		tmplStr = customTmpl
	}

	tmpl, err := template.New("transcripts").Parse(tmplStr)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	return tmpl.Execute(f.w, data)
}

func sortTranscripts(metas []parley.TranscriptMeta, sortBy string, descending bool) {
	switch sortBy {
	case "name":
		sort.Slice(metas, func(i, j int) bool {
			cmp := strings.Compare(
				strings.ToLower(filepath.Base(metas[i].Path)),
				strings.ToLower(filepath.Base(metas[j].Path)),
			)
			if descending {
				return cmp > 0
			}
			return cmp < 0
		})
	case "time", "":
		sort.Slice(metas, func(i, j int) bool {
			if descending {
				return metas[i].ModifiedAt.After(metas[j].ModifiedAt)
			}
			return metas[i].ModifiedAt.Before(metas[j].ModifiedAt)
		})
	}
}

// ResolveTranscript resolves a user-provided query into a transcript.
// An absolute path is read directly; anything else is matched against
// the transcripts in dir by filename or filename fragment.
func ResolveTranscript(dir, query string) (*parley.TranscriptMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("transcript query is required")
	}

	if filepath.IsAbs(query) {
		res, err := source.ReadFile(query)
		if err != nil {
			return nil, err
		}
		return &res.Meta, nil
	}

	metas, err := source.Scan(context.Background(), dir)
	if err != nil {
		return nil, err
	}

	// An exact filename beats fragment matches.
	exact := make([]parley.TranscriptMeta, 0, 1)
	for _, m := range metas {
		base := filepath.Base(m.Path)
		if base == query || base == query+".jsonl" {
			exact = append(exact, m)
		}
	}
	if len(exact) == 1 {
		return &exact[0], nil
	}

	matches := make([]parley.TranscriptMeta, 0, 4)
	for _, m := range metas {
		if transcriptMatchesQuery(m, query) {
			matches = append(matches, m)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("transcript not found: %s\n\nUse 'parley list' to see available transcripts", query)
	case 1:
		return &matches[0], nil
	default:
		var b strings.Builder
		b.WriteString("transcript query is ambiguous, matched multiple files:\n")
		max := len(matches)
		if max > 5 {
			max = 5
		}
		for i := 0; i < max; i++ {
			b.WriteString("  - ")
			b.WriteString(matches[i].Path)
			b.WriteByte('\n')
		}
		if len(matches) > max {
			b.WriteString(fmt.Sprintf("  ... and %d more", len(matches)-max))
		}
		return nil, fmt.Errorf("%s", strings.TrimSpace(b.String()))
	}
}

func transcriptMatchesQuery(meta parley.TranscriptMeta, query string) bool {
	return strings.Contains(filepath.Base(meta.Path), query)
}

// TranscriptDeleter handles transcript deletion.
type TranscriptDeleter struct {
	dir  string
	opts DeleteOptions
}

// DeleteOptions configures transcript deletion.
type DeleteOptions struct {
	Force  bool
	Stdout io.Writer
}

// NewTranscriptDeleter creates a new transcript deleter scoped to dir.
func NewTranscriptDeleter(dir string, opts DeleteOptions) *TranscriptDeleter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &TranscriptDeleter{dir: dir, opts: opts}
}

// Delete removes a transcript file after confirmation.
func (d *TranscriptDeleter) Delete(query string) error {
	meta, err := ResolveTranscript(d.dir, query)
	if err != nil {
		return err
	}

	if !d.opts.Force {
		fmt.Fprintf(d.opts.Stdout, "Transcript: %s\n", meta.Path)
		if meta.Title != "" {
			fmt.Fprintf(d.opts.Stdout, "Title: %s\n", meta.Title)
		}
		fmt.Fprintf(d.opts.Stdout, "Turns: %d\n", meta.TurnCount)
		if !meta.ModifiedAt.IsZero() {
			fmt.Fprintf(d.opts.Stdout, "Modified: %s\n", meta.ModifiedAt.Format("2006-01-02 15:04"))
		}
		if meta.FirstPrompt != "" {
			summary := meta.FirstPrompt
			if len(summary) > 100 {
				summary = summary[:100] + "..."
			}
			fmt.Fprintf(d.opts.Stdout, "Prompt: %s\n", summary)
		}
		fmt.Fprintln(d.opts.Stdout)

		result, err := tui.Confirm(tui.ConfirmOptions{
			Prompt:      "Permanently delete this transcript?",
			Affirmative: "Delete",
			Negative:    "Cancel",
			Default:     false,
		})
		if err != nil || result != tui.ConfirmYes {
			fmt.Fprintf(d.opts.Stdout, "Cancelled.\n")
			return nil
		}
	}

	if err := os.Remove(meta.Path); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}

	fmt.Fprintf(d.opts.Stdout, "Deleted %s\n", meta.Path)
	return nil
}

// TranscriptCopier handles copying a transcript to a target location.
type TranscriptCopier struct {
	dir  string
	opts CopyOptions
}

// CopyOptions configures transcript copying.
type CopyOptions struct {
	Stdout io.Writer
}

// NewTranscriptCopier creates a new transcript copier scoped to dir.
func NewTranscriptCopier(dir string, opts CopyOptions) *TranscriptCopier {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &TranscriptCopier{dir: dir, opts: opts}
}

// Copy copies a transcript file to the target path. The target can be
// a file path or a directory.
func (c *TranscriptCopier) Copy(query, targetPath string) error {
	meta, err := ResolveTranscript(c.dir, query)
	if err != nil {
		return err
	}

	targetFile := targetPath
	if info, err := os.Stat(targetPath); err == nil && info.IsDir() {
		targetFile = filepath.Join(targetPath, filepath.Base(meta.Path))
	} else if filepath.Ext(targetPath) == "" {
		if err := os.MkdirAll(targetPath, 0755); err != nil {
			return fmt.Errorf("create target directory: %w", err)
		}
		targetFile = filepath.Join(targetPath, filepath.Base(meta.Path))
	}

	if err := os.MkdirAll(filepath.Dir(targetFile), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	if err := copyFile(meta.Path, targetFile); err != nil {
		return fmt.Errorf("copy transcript: %w", err)
	}

	fmt.Fprintf(c.opts.Stdout, "Copied %s to %s\n", meta.Path, targetFile)
	return nil
}

// copyFile copies a single file from src to dst.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
