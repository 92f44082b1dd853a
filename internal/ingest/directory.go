package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// DirOptions controls IngestDirectory.
type DirOptions struct {
	SkipHidden  bool
	Concurrency int // default 4
	// Handle, when set, runs on every ingested document. Its error marks the file failed.
	Handle func(ctx context.Context, doc entity.Document) error
}

// IngestDirectory walks root, then ingests matching files with bounded concurrency.
// Per-file failures are reported in the results; only walk setup errors and
// context cancellation are returned.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, opts DirOptions) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	var (
		stats   DirStats
		results []Result
		paths   []string
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, Result{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	out := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for idx, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[idx] = Result{SourcePath: p, Err: err.Error()}
				return nil
			}
			doc, err := i.IngestPath(gctx, p)
			if err == nil && opts.Handle != nil {
				err = opts.Handle(gctx, doc)
			}
			out[idx] = Result{SourcePath: p, Document: doc}
			if err != nil {
				out[idx].Err = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range out {
		if r.Err != "" {
			stats.Failed++
		} else {
			stats.Succeeded++
		}
	}
	results = append(results, out...)

	i.Logger.Info("ingest.directory.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	return results, stats, ctx.Err()
}
