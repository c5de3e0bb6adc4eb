package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/parleyhq/go-parley/internal/parley"
)

// scanConcurrency bounds parallel probes so large directories do not
// exhaust file descriptors.
const scanConcurrency = 8

// Scan lists transcript files under dir, newest first. Each file is
// probed concurrently for title, first prompt and turn count; files
// that cannot be read are skipped rather than failing the scan.
func Scan(ctx context.Context, dir string) ([]parley.TranscriptMeta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var (
		mu    sync.Mutex
		metas []parley.TranscriptMeta
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ReadFile(path)
			if err != nil {
				return nil
			}
			mu.Lock()
			metas = append(metas, res.Meta)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].ModifiedAt.After(metas[j].ModifiedAt)
	})
	return metas, nil
}
