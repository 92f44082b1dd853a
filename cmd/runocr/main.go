package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joseph-ayodele/post-advisor/internal/app"
	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
	"github.com/joseph-ayodele/post-advisor/internal/ingest"
)

type line struct {
	Path       string   `json:"path"`
	Method     string   `json:"method,omitempty"`
	Strategy   string   `json:"strategy,omitempty"`
	Pages      int      `json:"pages,omitempty"`
	Chars      int      `json:"chars"`
	Diagnostic string   `json:"diagnostic,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Text       string   `json:"text,omitempty"`
	Error      string   `json:"error,omitempty"`
	ElapsedMS  int64    `json:"elapsed_ms"`
}

func main() {
	var (
		dir         = flag.String("dir", "", "extract every supported file under this directory")
		concurrency = flag.Int("concurrency", 4, "parallel extractions for -dir")
		withText    = flag.Bool("text", false, "include extracted text in the output")
		skipHidden  = flag.Bool("skip-hidden", true, "skip dot files and directories")
		ledger      = flag.Bool("ledger", false, "record files in the upload ledger")
		timeout     = flag.Duration("timeout", 10*time.Minute, "overall deadline")
	)
	flag.Parse()

	if *dir == "" && flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: runocr [-dir DIR] [-text] [file ...]")
		os.Exit(2)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := app.Build(ctx, cfg, logger, app.Options{NoLedger: !*ledger})
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var mu sync.Mutex
	enc := json.NewEncoder(os.Stdout)
	emit := func(l line) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(l); err != nil {
			logger.Error("failed to write output", "error", err)
		}
	}
	extract := func(ctx context.Context, doc entity.Document) error {
		start := time.Now()
		x := a.Processor.ExtractStage.Run(ctx, doc)
		l := line{
			Path:       doc.Path,
			Method:     x.Method,
			Strategy:   x.Strategy,
			Pages:      x.Pages,
			Chars:      len([]rune(x.Text)),
			Diagnostic: x.Diagnostic,
			Warnings:   x.Warnings,
			ElapsedMS:  time.Since(start).Milliseconds(),
		}
		if *withText {
			l.Text = x.Text
		}
		emit(l)
		return nil
	}

	failed := 0
	for _, p := range flag.Args() {
		if err := common.NewValidator().Field("path", p, common.Required, common.SupportedDocument).Err(); err != nil {
			emit(line{Path: p, Error: err.Error()})
			failed++
			continue
		}
		doc, err := a.Ingestor.IngestPath(ctx, p)
		if err != nil {
			emit(line{Path: p, Error: err.Error()})
			failed++
			continue
		}
		_ = extract(ctx, doc)
	}

	if *dir != "" {
		results, stats, err := a.Ingestor.IngestDirectory(ctx, *dir, ingest.DirOptions{
			SkipHidden:  *skipHidden,
			Concurrency: *concurrency,
			Handle:      extract,
		})
		for _, r := range results {
			if r.Err != "" {
				emit(line{Path: r.SourcePath, Error: r.Err})
			}
		}
		failed += int(stats.Failed)
		if err != nil {
			logger.Error("directory run failed", "dir", *dir, "error", err)
			os.Exit(1)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
