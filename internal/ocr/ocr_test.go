package ocr

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jung-kurt/gofpdf"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

type stubStrategy struct {
	name  string
	out   Output
	err   error
	panic bool
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(_ context.Context, _ string) (Output, error) {
	s.calls++
	if s.panic {
		panic("boom")
	}
	return s.out, s.err
}

type call struct {
	name string
	args []string
}

// stubRunner answers per binary name and records every call.
type stubRunner struct {
	calls  []call
	answer func(name string, args []string) ([]byte, []byte, error)
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, call{name: name, args: args})
	if r.answer == nil {
		return nil, nil, exec.ErrNotFound
	}
	return r.answer(name, args)
}

func TestExtractImageWithoutOCREngine(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-tesseract")
	e := NewExtractor(Config{Tesseract: missing}, nil)

	for ext := range constants.AllowedExtensions {
		if constants.AllowedExtensions[ext] != constants.IMAGE {
			continue
		}
		t.Run(ext, func(t *testing.T) {
			res := e.Extract(context.Background(), entity.Document{
				Kind: constants.IMAGE,
				Path: filepath.Join(t.TempDir(), "post."+ext),
			})
			if res.Text != "" {
				t.Fatalf("text = %q, want empty", res.Text)
			}
			if !strings.HasPrefix(res.Diagnostic, "OCR not available:") {
				t.Fatalf("diagnostic = %q, want OCR not available prefix", res.Diagnostic)
			}
			if res.Method != constants.MethodImageOCR {
				t.Fatalf("method = %q", res.Method)
			}
		})
	}
}

func TestExtractImageOCRError(t *testing.T) {
	r := &stubRunner{answer: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Error opening data file"), errors.New("exit status 1")
	}}
	e := NewExtractor(Config{}, nil, WithRunner(r))

	res := e.Extract(context.Background(), entity.Document{Kind: constants.IMAGE, Path: "a.png"})
	if res.Text != "" || !strings.HasPrefix(res.Diagnostic, "OCR error:") {
		t.Fatalf("got %+v", res)
	}
	if !strings.Contains(res.Diagnostic, "Error opening data file") {
		t.Fatalf("diagnostic should carry stderr: %q", res.Diagnostic)
	}
}

func TestExtractImageOK(t *testing.T) {
	r := &stubRunner{answer: func(string, []string) ([]byte, []byte, error) {
		return []byte("Sunset  at the beach\r\n-----\r\n120 likes\n"), nil, nil
	}}
	e := NewExtractor(Config{TesseractLang: "eng+fra", PSM: 6, TessdataDir: "/td"}, nil, WithRunner(r))

	res := e.Extract(context.Background(), entity.Document{Path: "post.jpg"})
	if res.Diagnostic != "" {
		t.Fatalf("unexpected diagnostic %q", res.Diagnostic)
	}
	if diff := cmp.Diff("Sunset at the beach\n\n120 likes", res.Text); diff != "" {
		t.Fatalf("text mismatch (-want +got):\n%s", diff)
	}

	want := []call{{name: "tesseract", args: []string{"post.jpg", "stdout", "-l", "eng+fra", "--psm", "6", "--tessdata-dir", "/td"}}}
	if diff := cmp.Diff(want, r.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Fatalf("runner calls (-want +got):\n%s", diff)
	}
}

func TestExtractPDFFallsBackToOCROnBlankTextLayer(t *testing.T) {
	native := &stubStrategy{name: "native", out: Output{Text: "  \n\t \n", Pages: 2}}
	scan := &stubStrategy{name: "scan", out: Output{Text: "Scanned caption\n#travel", Pages: 2}}
	e := NewExtractor(Config{}, nil, WithPDFText(native), WithPDFOCR(scan))

	res := e.Extract(context.Background(), entity.Document{Kind: constants.PDF, Path: "scan.pdf"})
	if res.Text != "Scanned caption\n#travel" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Method != constants.MethodPDFOCR || res.Strategy != "scan" || res.Diagnostic != "" {
		t.Fatalf("got %+v", res)
	}
	if native.calls != 1 || scan.calls != 1 {
		t.Fatalf("calls native=%d scan=%d", native.calls, scan.calls)
	}
}

func TestExtractPDFTextLayerSkipsOCR(t *testing.T) {
	native := &stubStrategy{name: "native", out: Output{Text: "Caption text", Pages: 1}}
	scan := &stubStrategy{name: "scan"}
	e := NewExtractor(Config{}, nil, WithPDFText(native), WithPDFOCR(scan))

	res := e.Extract(context.Background(), entity.Document{Kind: constants.PDF, Path: "post.pdf"})
	if res.Text != "Caption text" || res.Method != constants.MethodPDFText {
		t.Fatalf("got %+v", res)
	}
	if scan.calls != 0 {
		t.Fatalf("OCR must not run when the text layer has content")
	}
}

func TestExtractPDFDiagnostics(t *testing.T) {
	tests := []struct {
		name       string
		native     *stubStrategy
		scan       *stubStrategy
		wantPrefix string
		wantParts  []string
	}{
		{
			name:       "native unavailable",
			native:     &stubStrategy{name: "native", err: ErrUnavailable},
			scan:       &stubStrategy{name: "scan"},
			wantPrefix: "PDF extraction not available:",
		},
		{
			name:       "native error",
			native:     &stubStrategy{name: "native", err: errors.New("malformed xref")},
			scan:       &stubStrategy{name: "scan"},
			wantPrefix: "PDF extraction error:",
			wantParts:  []string{"malformed xref"},
		},
		{
			name:       "native panics",
			native:     &stubStrategy{name: "native", panic: true},
			scan:       &stubStrategy{name: "scan"},
			wantPrefix: "PDF extraction error:",
			wantParts:  []string{"panicked"},
		},
		{
			name:       "fallback unavailable",
			native:     &stubStrategy{name: "native", out: Output{Text: " "}},
			scan:       &stubStrategy{name: "scan", err: ErrUnavailable},
			wantPrefix: "PDF has no text layer;",
			wantParts:  []string{"OCR not available"},
		},
		{
			name:       "fallback error",
			native:     &stubStrategy{name: "native"},
			scan:       &stubStrategy{name: "scan", err: errors.New("pdftoppm crashed")},
			wantPrefix: "PDF has no text layer;",
			wantParts:  []string{"OCR error", "pdftoppm crashed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(Config{}, nil, WithPDFText(tt.native), WithPDFOCR(tt.scan))
			res := e.Extract(context.Background(), entity.Document{Kind: constants.PDF, Path: "x.pdf"})
			if res.Text != "" {
				t.Fatalf("text = %q, want empty", res.Text)
			}
			if !strings.HasPrefix(res.Diagnostic, tt.wantPrefix) {
				t.Fatalf("diagnostic = %q, want prefix %q", res.Diagnostic, tt.wantPrefix)
			}
			for _, p := range tt.wantParts {
				if !strings.Contains(res.Diagnostic, p) {
					t.Fatalf("diagnostic = %q, missing %q", res.Diagnostic, p)
				}
			}
		})
	}
}

func TestExtractPDFNativeErrorDoesNotFallBack(t *testing.T) {
	native := &stubStrategy{name: "native", err: errors.New("bad pdf")}
	scan := &stubStrategy{name: "scan", out: Output{Text: "never"}}
	e := NewExtractor(Config{}, nil, WithPDFText(native), WithPDFOCR(scan))

	_ = e.Extract(context.Background(), entity.Document{Kind: constants.PDF, Path: "x.pdf"})
	if scan.calls != 0 {
		t.Fatal("a failing text layer strategy is terminal")
	}
}

func TestRasterOCRRendersAndReadsEachPage(t *testing.T) {
	r := &stubRunner{answer: func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			for _, n := range []string{"1", "2", "3"} {
				if err := os.WriteFile(prefix+"-"+n+".png", []byte("png"), 0o644); err != nil {
					return nil, nil, err
				}
			}
			return nil, nil, nil
		case "tesseract":
			return []byte("page " + strings.TrimSuffix(filepath.Base(args[0]), ".png")), nil, nil
		}
		return nil, nil, exec.ErrNotFound
	}}
	e := NewExtractor(Config{MaxPages: 2, DPI: 150}, nil, WithRunner(r), WithPDFText(&stubStrategy{name: "native"}))

	res := e.Extract(context.Background(), entity.Document{Kind: constants.PDF, Path: "scan.pdf"})
	if res.Diagnostic != "" {
		t.Fatalf("diagnostic = %q", res.Diagnostic)
	}
	if res.Text != "page page-1\n\npage page-2" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2 (MaxPages)", res.Pages)
	}
	if got := r.calls[0].args[:3]; !cmp.Equal(got, []string{"-r", "150", "-png"}) {
		t.Fatalf("pdftoppm args = %v", got)
	}
}

func TestNativeTextReadsGeneratedPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.pdf")
	writePDF(t, path, "Loving this sunset 1,234 likes")

	res := NewExtractor(Config{}, nil).Extract(context.Background(), entity.Document{Kind: constants.PDF, Path: path})
	if res.Diagnostic != "" {
		t.Fatalf("diagnostic = %q", res.Diagnostic)
	}
	if !strings.Contains(res.Text, "1,234 likes") {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Method != constants.MethodPDFText || res.Pages != 1 {
		t.Fatalf("got %+v", res)
	}
}

func TestUnsupportedKind(t *testing.T) {
	res := NewExtractor(Config{}, nil).Extract(context.Background(), entity.Document{Path: "notes.txt"})
	if res.Text != "" || res.Diagnostic == "" {
		t.Fatalf("got %+v", res)
	}
}

func writePDF(t *testing.T, path string, lines ...string) {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	for _, l := range lines {
		pdf.CellFormat(0, 8, l, "", 1, "L", false, 0, "")
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
}
