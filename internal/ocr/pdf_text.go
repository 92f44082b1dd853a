package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// nativeText reads the embedded text layer with a pure-Go PDF reader.
type nativeText struct{}

func (nativeText) Name() string { return "pdf-native" }

func (nativeText) Extract(ctx context.Context, path string) (Output, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Output{}, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	var warns []string
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, err := page.GetPlainText(nil)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return Output{Text: b.String(), Pages: pages, Warnings: warns}, nil
}

// pdfcpuText scans each page content stream for text-showing operators.
type pdfcpuText struct{}

func (pdfcpuText) Name() string { return "pdfcpu" }

var (
	// (string) Tj  |  (string) '  |  (string) "
	reShowString = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)\s*(?:Tj|'|")`)
	// [ (a) -120 (b) ] TJ
	reShowArray = regexp.MustCompile(`\[((?:\\.|[^\]\\])*)\]\s*TJ`)
	reArrayItem = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
	reTextBlock = regexp.MustCompile(`(?s)\bBT\b(.*?)\bET\b`)
)

func (pdfcpuText) Extract(ctx context.Context, path string) (Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return Output{}, err
	}
	defer func() { _ = f.Close() }()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return Output{}, fmt.Errorf("pdfcpu read: %w", err)
	}

	var b strings.Builder
	var warns []string
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}
		r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", pageNr, err))
			continue
		}
		if r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", pageNr, err))
			continue
		}
		txt := textFromContentStream(string(data))
		if txt == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return Output{Text: b.String(), Pages: pctx.PageCount, Warnings: warns}, nil
}

// textFromContentStream returns one line per BT..ET text block.
func textFromContentStream(stream string) string {
	var lines []string
	for _, block := range reTextBlock.FindAllStringSubmatch(stream, -1) {
		var b strings.Builder
		for _, m := range reShowString.FindAllStringSubmatch(block[1], -1) {
			b.WriteString(decodePDFString(m[1]))
		}
		for _, arr := range reShowArray.FindAllStringSubmatch(block[1], -1) {
			for _, m := range reArrayItem.FindAllStringSubmatch(arr[1], -1) {
				b.WriteString(decodePDFString(m[1]))
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

// decodePDFString handles the PDF literal string escape sequences.
func decodePDFString(raw string) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
			// backspace / form feed carry no text
		case '0', '1', '2', '3', '4', '5', '6', '7':
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

// pdftotextText shells out to poppler's pdftotext.
type pdftotextText struct {
	bin    string
	runner Runner
}

func (p *pdftotextText) Name() string { return "pdftotext" }

func (p *pdftotextText) Extract(ctx context.Context, path string) (Output, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := p.runner.Run(ctx, p.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return Output{}, execError(p.bin, err, errb)
	}
	text := string(out)
	// A form-feed \f is used as page separator by default
	pages := 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	return Output{Text: text, Pages: pages}, nil
}
