package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// ExportPDF renders a short A4 report: engagement table, then the recommendations.
func (s *Service) ExportPDF(ctx context.Context, res entity.PipelineResult) ([]byte, error) {
	start := time.Now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Post engagement report", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Post engagement report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if res.Filename != "" {
		pdf.CellFormat(0, 6, tr("File: "+res.Filename), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr("Source: "+string(res.Recommendations.Source)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	for _, h := range []string{"Metric", "Current", "Projected"} {
		pdf.CellFormat(40, 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range [][3]string{
		{"Likes", strconv.Itoa(res.Engagement.Likes), strconv.Itoa(res.Projected.Likes)},
		{"Comments", strconv.Itoa(res.Engagement.Comments), strconv.Itoa(res.Projected.Comments)},
	} {
		for _, v := range row {
			pdf.CellFormat(40, 7, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Recommendations", "", 1, "L", false, 0, "")
	if len(res.Recommendations.Items) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		msg := "No recommendations."
		if res.Recommendations.Error != "" {
			msg = "Recommendations unavailable: " + res.Recommendations.Error
		}
		pdf.MultiCell(0, 5, tr(msg), "", "L", false)
	}
	for _, r := range res.Recommendations.Items {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr(r.Aspect), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(r.Suggestion), "", "L", false)
		pdf.Ln(2)
	}
	if res.Recommendations.Note != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr(res.Recommendations.Note), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf write: %w", err)
	}

	common.LoggerFromContext(ctx, s.logger).Info("export.pdf.ok",
		"rows", len(res.Recommendations.Items),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
