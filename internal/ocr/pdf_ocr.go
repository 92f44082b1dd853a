package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// rasterOCR renders PDF pages to PNG and OCRs each page image.
type rasterOCR struct {
	cfg    Config
	runner Runner
	ocr    Strategy
	logger *slog.Logger
}

func (p *rasterOCR) Name() string { return "pdftoppm+" + p.ocr.Name() }

func (p *rasterOCR) Extract(ctx context.Context, path string) (Output, error) {
	tmpDir, err := os.MkdirTemp("", "pa-pp-*")
	if err != nil {
		return Output{}, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := p.runner.Run(ctx, p.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", p.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return Output{}, execError(p.cfg.Pdftoppm, err, errb)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if p.cfg.MaxPages > 0 && len(matches) > p.cfg.MaxPages {
		matches = matches[:p.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Output{Warnings: []string{"pdftoppm produced no images"}}, errors.New("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	var firstErr error
	ok := 0
	for _, img := range matches {
		out, err := p.ocr.Extract(ctx, img)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			warns = append(warns, err.Error())
			continue
		}
		ok++
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(out.Text)
		warns = append(warns, out.Warnings...)
	}
	if ok == 0 {
		return Output{Pages: len(matches), Warnings: warns}, firstErr
	}
	return Output{Text: b.String(), Pages: len(matches), Warnings: warns}, nil
}
