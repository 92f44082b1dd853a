package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
	"github.com/joseph-ayodele/post-advisor/internal/extract"
	"github.com/joseph-ayodele/post-advisor/internal/repository"
)

// ExtractStage runs text extraction and records the outcome in the upload ledger.
type ExtractStage struct {
	TextExtractor extract.TextExtractor
	Uploads       repository.UploadRepository // optional
	Logger        *slog.Logger
}

func NewExtractStage(tx extract.TextExtractor, uploads repository.UploadRepository, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{TextExtractor: tx, Uploads: uploads, Logger: logger}
}

// Run never fails; extraction problems are carried in the Diagnostic and
// ledger problems are only logged.
func (s *ExtractStage) Run(ctx context.Context, doc entity.Document) entity.ExtractedText {
	log := common.LoggerFromContext(ctx, s.Logger)
	start := time.Now()

	x := s.TextExtractor.Extract(ctx, doc)
	if x.Duration == 0 {
		x.Duration = time.Since(start)
	}

	if x.Degraded() {
		log.Warn("processor.extract.degraded",
			"filename", doc.Filename,
			"method", x.Method,
			"diagnostic", x.Diagnostic,
		)
	} else {
		log.Info("processor.extract.ok",
			"filename", doc.Filename,
			"method", x.Method,
			"strategy", x.Strategy,
			"pages", x.Pages,
			"chars", len(x.Text),
			"elapsed_ms", x.Duration.Milliseconds(),
		)
	}

	if s.Uploads != nil && doc.UploadID != "" {
		if err := s.Uploads.UpdateExtraction(ctx, doc.UploadID, x); err != nil {
			log.Warn("processor.extract.ledger_update_failed", "upload_id", doc.UploadID, "error", err)
		}
	}
	return x
}
