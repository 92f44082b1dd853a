// Package app wires configuration into a ready-to-use pipeline. The binaries
// share it so the daemon, the batch tool and the CLI behave the same.
package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/engagement"
	"github.com/joseph-ayodele/post-advisor/internal/export"
	"github.com/joseph-ayodele/post-advisor/internal/extract"
	"github.com/joseph-ayodele/post-advisor/internal/ingest"
	"github.com/joseph-ayodele/post-advisor/internal/llm"
	"github.com/joseph-ayodele/post-advisor/internal/ocr"
	processor "github.com/joseph-ayodele/post-advisor/internal/pipeline"
	"github.com/joseph-ayodele/post-advisor/internal/recommend"
	"github.com/joseph-ayodele/post-advisor/internal/repository"
)

// App holds the wired components. Close releases the database and the provider.
type App struct {
	Config    *common.Config
	DB        *repository.DB // nil when the ledger is disabled
	Uploads   repository.UploadRepository
	Ingestor  *ingest.FSIngestor
	Processor *processor.Processor
	Exports   *export.Service
	Recommend *recommend.Client

	closers []func()
}

type Options struct {
	// NoLedger skips opening the database.
	NoLedger bool
}

// Build opens the ledger (unless disabled), builds the configured provider and
// assembles the pipeline. A ledger that cannot be opened is logged and skipped.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg}

	if !opts.NoLedger {
		db, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			logger.Warn("app.ledger.disabled", "error", err)
		} else {
			a.DB = db
			a.Uploads = repository.NewUploadRepository(db, logger)
			a.closers = append(a.closers, func() { repository.Close(db, logger) })
		}
	}

	extractor := ocr.NewExtractor(ocr.Config{
		PDFEngine:     cfg.OCR.PDFEngine,
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
	textExtractor := extract.NewOCRAdapter(extractor, logger)

	provider, err := recommend.NewProvider(cfg.LLM, logger)
	if err != nil {
		a.Close()
		return nil, common.WrapError(err, "build llm provider")
	}
	if c, ok := provider.(interface{ Close() error }); ok {
		a.closers = append(a.closers, func() {
			if err := c.Close(); err != nil {
				logger.Warn("app.provider.close_failed", "error", err)
			}
		})
	}
	a.Recommend = recommend.NewClient(recommend.Config{
		APIKey:         cfg.LLM.APIKey,
		Timeout:        cfg.LLM.Timeout,
		MaxPromptChars: cfg.LLM.MaxPromptChars,
		FallbackNote:   recommend.FallbackNoteFor(cfg.LLM.Provider),
	}, provider, logger)
	if a.Recommend.LocalFallback() {
		logger.Info("app.recommend.local_fallback", "provider", cfg.LLM.Provider)
	}

	normalizer := llm.NewNormalizer(llm.NormalizerConfig{Lenient: cfg.LLM.Lenient}, logger)
	a.Processor = processor.NewProcessor(logger,
		processor.NewExtractStage(textExtractor, a.Uploads, logger),
		processor.NewRecommendStage(a.Recommend, normalizer, logger),
		engagement.NewEstimator(nil, logger),
	)
	a.Ingestor = ingest.NewFSIngestor(cfg.Storage.UploadDir, cfg.Storage.MaxUploadBytes, a.Uploads, logger)
	a.Exports = export.NewService(logger)
	return a, nil
}

// Close runs the registered closers in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
