package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parleyhq/go-parley/internal/parley"
)

// writeTranscript drops a minimal transcript file into dir.
func writeTranscript(t *testing.T, dir, name, title string) string {
	t.Helper()
	content := `{"type":"meta","title":"` + title + `"}
{"type":"turn","id":"u1","role":"user","text":"hello"}
{"type":"turn","id":"a1","role":"assistant","text":"hi there"}
`
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveTranscript(t *testing.T) {
	dir := t.TempDir()
	alphaPath := writeTranscript(t, dir, "alpha.jsonl", "Alpha")
	writeTranscript(t, dir, "beta.jsonl", "Beta")
	writeTranscript(t, dir, "beta-2.jsonl", "Beta two")

	t.Run("exact filename", func(t *testing.T) {
		meta, err := ResolveTranscript(dir, "alpha.jsonl")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta.Path != alphaPath {
			t.Errorf("resolved %q, want %q", meta.Path, alphaPath)
		}
		if meta.TurnCount != 2 {
			t.Errorf("turn count = %d, want 2", meta.TurnCount)
		}
	})

	t.Run("name without extension", func(t *testing.T) {
		meta, err := ResolveTranscript(dir, "alpha")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta.Title != "Alpha" {
			t.Errorf("resolved title %q, want %q", meta.Title, "Alpha")
		}
	})

	t.Run("exact name beats fragment matches", func(t *testing.T) {
		meta, err := ResolveTranscript(dir, "beta")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(meta.Path) != "beta.jsonl" {
			t.Errorf("resolved %q, want beta.jsonl", meta.Path)
		}
	})

	t.Run("ambiguous fragment", func(t *testing.T) {
		_, err := ResolveTranscript(dir, "bet")
		if err == nil {
			t.Fatal("expected ambiguity error")
		}
		if !strings.Contains(err.Error(), "ambiguous") {
			t.Errorf("expected 'ambiguous' in error, got: %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := ResolveTranscript(dir, "nope")
		if err == nil {
			t.Fatal("expected error for unknown transcript")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' in error, got: %v", err)
		}
	})

	t.Run("absolute path", func(t *testing.T) {
		meta, err := ResolveTranscript(dir, alphaPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta.Title != "Alpha" || meta.TurnCount != 2 {
			t.Errorf("unexpected meta: %+v", meta)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		if _, err := ResolveTranscript(dir, "  "); err == nil {
			t.Fatal("expected error for empty query")
		}
	})
}

func TestTranscriptsFormatterList(t *testing.T) {
	var buf bytes.Buffer
	f := NewTranscriptsFormatter(&buf)

	metas := []parley.TranscriptMeta{
		{Path: "/t/one.jsonl"},
		{Path: "/t/two.jsonl"},
	}
	if err := f.FormatList(metas); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "/t/one.jsonl\n/t/two.jsonl\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTranscriptsFormatterSummary(t *testing.T) {
	metas := []parley.TranscriptMeta{
		{
			Path:        "/t/old.jsonl",
			Title:       "Older chat",
			FirstPrompt: "how do I sort a slice",
			TurnCount:   4,
			SizeBytes:   2048,
			ModifiedAt:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			Path:       "/t/new.jsonl",
			TurnCount:  1,
			SizeBytes:  64,
			ModifiedAt: time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
			WriterPID:  os.Getpid(),
		},
	}

	var buf bytes.Buffer
	f := NewTranscriptsFormatter(&buf)
	if err := f.FormatSummary(metas, "", ListOptions{SortBy: "time", Descending: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Older chat", "(untitled)", "how do I sort a slice", "Writer:   live"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Descending by time puts the newer file first.
	if strings.Index(out, "new.jsonl") > strings.Index(out, "old.jsonl") {
		t.Errorf("expected new.jsonl before old.jsonl:\n%s", out)
	}
}

func TestTranscriptsFormatterSummaryCustomTemplate(t *testing.T) {
	metas := []parley.TranscriptMeta{
		{Path: "/t/b.jsonl", TurnCount: 2},
		{Path: "/t/a.jsonl", TurnCount: 7},
	}

	var buf bytes.Buffer
	f := NewTranscriptsFormatter(&buf)
	err := f.FormatSummary(metas, `{{range .}}{{.Path}}={{.Turns}};{{end}}`, ListOptions{SortBy: "name"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "/t/a.jsonl=7;/t/b.jsonl=2;"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTranscriptsFormatterSummaryBadTemplate(t *testing.T) {
	var buf bytes.Buffer
	f := NewTranscriptsFormatter(&buf)
	if err := f.FormatSummary(nil, "{{.Broken", ListOptions{}); err == nil {
		t.Fatal("expected parse error for broken template")
	}
}

func TestTranscriptDeleter_Force(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "doomed.jsonl", "Doomed")

	var stdout bytes.Buffer
	deleter := NewTranscriptDeleter(dir, DeleteOptions{
		Force:  true,
		Stdout: &stdout,
	})

	if err := deleter.Delete("doomed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("transcript file should be deleted")
	}
	if !strings.Contains(stdout.String(), "Deleted") {
		t.Errorf("expected 'Deleted' message, got: %s", stdout.String())
	}
}

func TestTranscriptDeleter_NotFound(t *testing.T) {
	dir := t.TempDir()

	var stdout bytes.Buffer
	deleter := NewTranscriptDeleter(dir, DeleteOptions{
		Force:  true,
		Stdout: &stdout,
	})

	err := deleter.Delete("missing")
	if err == nil {
		t.Error("expected error for missing transcript")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected 'not found' error, got: %v", err)
	}
}

func TestTranscriptCopier_ToDirectory(t *testing.T) {
	dir := t.TempDir()
	src := writeTranscript(t, dir, "keep.jsonl", "Keep")
	target := filepath.Join(t.TempDir(), "backup")

	var stdout bytes.Buffer
	copier := NewTranscriptCopier(dir, CopyOptions{Stdout: &stdout})

	if err := copier.Copy("keep", target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	copied := filepath.Join(target, "keep.jsonl")
	want, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(copied)
	if err != nil {
		t.Fatalf("copied file missing: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("copied content differs from source")
	}
	if !strings.Contains(stdout.String(), "Copied") {
		t.Errorf("expected 'Copied' message, got: %s", stdout.String())
	}
}

func TestTranscriptCopier_ToFilePath(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "keep.jsonl", "Keep")
	target := filepath.Join(t.TempDir(), "renamed.jsonl")

	var stdout bytes.Buffer
	copier := NewTranscriptCopier(dir, CopyOptions{Stdout: &stdout})

	if err := copier.Copy("keep.jsonl", target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("target file missing: %v", err)
	}
}

// Note: the interactive confirmation flow is not covered here because
// the confirm dialog needs a real terminal. The --force path bypasses
// it and is tested above.
