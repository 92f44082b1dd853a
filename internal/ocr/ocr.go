package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

type Config struct {
	PDFEngine string // "native" | "pdfcpu" | "pdftotext"; if empty -> "native"

	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Option overrides parts of the extractor, mostly for tests.
type Option func(*Extractor)

// WithRunner replaces the exec runner used by binary-backed strategies.
func WithRunner(r Runner) Option { return func(e *Extractor) { e.runner = r } }

// WithPDFText replaces the PDF text layer strategy.
func WithPDFText(s Strategy) Option { return func(e *Extractor) { e.pdfText = s } }

// WithPDFOCR replaces the strategy used when a PDF has no text layer.
func WithPDFOCR(s Strategy) Option { return func(e *Extractor) { e.pdfOCR = s } }

// WithImageOCR replaces the image OCR strategy.
func WithImageOCR(s Strategy) Option { return func(e *Extractor) { e.imageOCR = s } }

// Extractor is the extraction coordinator: it picks a strategy by document kind
// and falls back from an empty PDF text layer to OCR.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	pdfText  Strategy
	pdfOCR   Strategy
	imageOCR Strategy
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PDFEngine == "" {
		cfg.PDFEngine = constants.PDFEngineNative
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}

	e := &Extractor{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = execRunner{logger: logger}
	}
	tess := &tesseract{cfg: cfg, runner: e.runner}
	if e.imageOCR == nil {
		e.imageOCR = tess
	}
	if e.pdfOCR == nil {
		e.pdfOCR = &rasterOCR{cfg: cfg, runner: e.runner, ocr: tess, logger: logger}
	}
	if e.pdfText == nil {
		e.pdfText = newPDFTextStrategy(cfg, e.runner)
	}
	return e
}

// Extract never fails: unavailable capabilities and runtime errors are reported
// through ExtractedText.Diagnostic with empty Text.
func (e *Extractor) Extract(ctx context.Context, doc entity.Document) entity.ExtractedText {
	start := time.Now()
	kind := doc.Kind
	if kind == "" {
		kind = constants.MapExtToKind(filepath.Ext(doc.Path))
	}
	e.logger.Debug("ocr.extract.start", "path", doc.Path, "kind", kind, "pdf_engine", e.cfg.PDFEngine)

	var res entity.ExtractedText
	switch kind {
	case constants.PDF:
		res = e.extractPDF(ctx, doc.Path)
	case constants.IMAGE:
		res = e.extractImage(ctx, doc.Path)
	default:
		res = entity.ExtractedText{Diagnostic: fmt.Sprintf("unsupported document kind %q", kind)}
	}
	res.Duration = time.Since(start)

	if res.Degraded() {
		e.logger.Warn("ocr.extract.degraded",
			"path", doc.Path,
			"method", res.Method,
			"strategy", res.Strategy,
			"diagnostic", res.Diagnostic,
			"duration_ms", res.Duration.Milliseconds(),
		)
	} else {
		e.logger.Info("ocr.extract.ok",
			"path", doc.Path,
			"method", res.Method,
			"strategy", res.Strategy,
			"pages", res.Pages,
			"bytes", len(res.Text),
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
	return res
}

func (e *Extractor) extractPDF(ctx context.Context, path string) entity.ExtractedText {
	out, err := run(ctx, e.pdfText, path)
	if err != nil {
		return entity.ExtractedText{
			Method:     constants.MethodPDFText,
			Strategy:   e.pdfText.Name(),
			Diagnostic: diagnose("PDF extraction", err),
			Warnings:   out.Warnings,
		}
	}

	text := Normalize(out.Text)
	if text != "" {
		return entity.ExtractedText{
			Text:     text,
			Method:   constants.MethodPDFText,
			Strategy: e.pdfText.Name(),
			Pages:    out.Pages,
			Warnings: out.Warnings,
		}
	}

	// scanned PDF without a text layer: OCR the rendered pages instead
	e.logger.Info("ocr.pdf.empty_text_layer", "path", path, "strategy", e.pdfText.Name(), "fallback", e.pdfOCR.Name())
	warns := out.Warnings
	ocrOut, err := run(ctx, e.pdfOCR, path)
	warns = append(warns, ocrOut.Warnings...)
	if err != nil {
		return entity.ExtractedText{
			Method:     constants.MethodPDFOCR,
			Strategy:   e.pdfOCR.Name(),
			Diagnostic: "PDF has no text layer; " + diagnose("OCR", err),
			Pages:      out.Pages,
			Warnings:   warns,
		}
	}
	res := entity.ExtractedText{
		Text:     Normalize(ocrOut.Text),
		Method:   constants.MethodPDFOCR,
		Strategy: e.pdfOCR.Name(),
		Pages:    ocrOut.Pages,
		Warnings: warns,
	}
	if res.Text == "" {
		res.Diagnostic = "no text found in PDF: text layer and OCR output are both empty"
	}
	return res
}

func (e *Extractor) extractImage(ctx context.Context, path string) entity.ExtractedText {
	out, err := run(ctx, e.imageOCR, path)
	if err != nil {
		return entity.ExtractedText{
			Method:     constants.MethodImageOCR,
			Strategy:   e.imageOCR.Name(),
			Diagnostic: diagnose("OCR", err),
			Warnings:   out.Warnings,
		}
	}
	res := entity.ExtractedText{
		Text:     Normalize(out.Text),
		Method:   constants.MethodImageOCR,
		Strategy: e.imageOCR.Name(),
		Pages:    1,
		Warnings: out.Warnings,
	}
	if res.Text == "" {
		res.Diagnostic = "OCR found no text in image"
	}
	return res
}

// run invokes a strategy and turns panics from third-party decoders into errors.
func run(ctx context.Context, s Strategy, path string) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", s.Name(), r)
		}
	}()
	return s.Extract(ctx, path)
}

func diagnose(stage string, err error) string {
	if errors.Is(err, ErrUnavailable) {
		return stage + " not available: " + err.Error()
	}
	return stage + " error: " + strings.TrimSpace(err.Error())
}
