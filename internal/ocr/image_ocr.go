package ocr

import (
	"context"
	"fmt"
)

// tesseract OCRs a single image file.
type tesseract struct {
	cfg    Config
	runner Runner
}

func (t *tesseract) Name() string { return "tesseract" }

func (t *tesseract) Extract(ctx context.Context, path string) (Output, error) {
	args := []string{path, "stdout", "-l", t.cfg.TesseractLang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return Output{}, execError(t.cfg.Tesseract, err, errb)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return Output{Text: txt, Pages: 1}, nil
}
