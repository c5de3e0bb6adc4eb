package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScan_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	names := []string{"old.jsonl", "mid.jsonl", "new.jsonl"}
	for i, name := range names {
		path := filepath.Join(dir, name)
		line := `{"type":"turn","id":"u1","role":"user","text":"prompt from ` + name + `"}` + "\n"
		if err := os.WriteFile(path, []byte(line), 0644); err != nil {
			t.Fatal(err)
		}
		mtime := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	// Neither of these should appear in the results.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "archive.jsonl.d"), 0755); err != nil {
		t.Fatal(err)
	}

	metas, err := Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(metas) != 3 {
		t.Fatalf("got %d metas, want 3", len(metas))
	}
	wantOrder := []string{"new.jsonl", "mid.jsonl", "old.jsonl"}
	for i, want := range wantOrder {
		if filepath.Base(metas[i].Path) != want {
			t.Errorf("metas[%d] = %s, want %s", i, filepath.Base(metas[i].Path), want)
		}
	}
	if metas[0].FirstPrompt != "prompt from new.jsonl" {
		t.Errorf("FirstPrompt = %q", metas[0].FirstPrompt)
	}
	if metas[0].TurnCount != 1 {
		t.Errorf("TurnCount = %d, want 1", metas[0].TurnCount)
	}
}

func TestScan_EmptyDir(t *testing.T) {
	metas, err := Scan(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("got %d metas, want 0", len(metas))
	}
}

func TestScan_MissingDir(t *testing.T) {
	if _, err := Scan(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWriterAlive(t *testing.T) {
	if !WriterAlive(os.Getpid()) {
		t.Error("WriterAlive(own pid) = false, want true")
	}
	if WriterAlive(0) {
		t.Error("WriterAlive(0) = true, want false")
	}
	if WriterAlive(-1) {
		t.Error("WriterAlive(-1) = true, want false")
	}
}
