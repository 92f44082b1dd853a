package extract

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
	"github.com/joseph-ayodele/post-advisor/internal/ocr"
)

// OCRAdapter feeds documents to the ocr.Extractor. Documents that only carry
// Content (no stored Path) are spooled to a temp file first, since every
// strategy reads from disk.
type OCRAdapter struct {
	e      *ocr.Extractor
	logger *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

func (a *OCRAdapter) Extract(ctx context.Context, doc entity.Document) entity.ExtractedText {
	if doc.Kind == "" {
		name := doc.Filename
		if name == "" {
			name = doc.Path
		}
		doc.Kind = constants.MapExtToKind(filepath.Ext(name))
	}
	if doc.Path != "" || len(doc.Content) == 0 {
		return a.e.Extract(ctx, doc)
	}

	tmp, err := os.CreateTemp("", "pa-doc-*"+filepath.Ext(doc.Filename))
	if err != nil {
		return entity.ExtractedText{Diagnostic: "extraction error: spool document: " + err.Error()}
	}
	defer func(name string) {
		if err := os.Remove(name); err != nil {
			a.logger.Warn("failed to remove temp file", "path", name, "error", err)
		}
	}(tmp.Name())

	_, werr := tmp.Write(doc.Content)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		if werr == nil {
			werr = cerr
		}
		return entity.ExtractedText{Diagnostic: "extraction error: spool document: " + werr.Error()}
	}

	doc.Path = tmp.Name()
	return a.e.Extract(ctx, doc)
}
