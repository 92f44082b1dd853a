package ocr

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/post-advisor/constants"
)

// ErrUnavailable marks a strategy whose backing library or binary is not present.
var ErrUnavailable = errors.New("not installed")

// Strategy maps a stored document to text. Implementations may fail independently.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, path string) (Output, error)
}

// Output is the raw (un-normalized) result of one strategy.
type Output struct {
	Text     string
	Pages    int
	Warnings []string
}

func newPDFTextStrategy(cfg Config, r Runner) Strategy {
	switch cfg.PDFEngine {
	case constants.PDFEnginePDFCPU:
		return pdfcpuText{}
	case constants.PDFEnginePdftotext:
		return &pdftotextText{bin: cfg.Pdftotext, runner: r}
	default:
		return nativeText{}
	}
}
