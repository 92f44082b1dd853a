package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

const (
	SheetRecommendations = "Recommendations"
	SheetEngagement      = "Engagement"
)

// Service renders pipeline results as downloadable reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportXLSX returns a workbook with the recommendation list and the engagement
// figures on separate sheets.
func (s *Service) ExportXLSX(ctx context.Context, res entity.PipelineResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", "error", err)
		}
	}()

	// the default sheet becomes the recommendations sheet
	if err := f.SetSheetName(f.GetSheetName(0), SheetRecommendations); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetEngagement); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(0)

	write := func(sheet string, col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}

	rows := [][]any{{"Aspect", "Suggestion"}}
	for _, r := range res.Recommendations.Items {
		rows = append(rows, []any{r.Aspect, truncate(r.Suggestion, 1000)})
	}
	for i, row := range rows {
		for j, v := range row {
			if err := write(SheetRecommendations, j+1, i+1, v); err != nil {
				return nil, fmt.Errorf("write recommendations: %w", err)
			}
		}
	}
	_ = f.SetColWidth(SheetRecommendations, "A", "A", 22)
	_ = f.SetColWidth(SheetRecommendations, "B", "B", 90)

	meta := [][]any{
		{"Metric", "Current", "Projected"},
		{"Likes", res.Engagement.Likes, res.Projected.Likes},
		{"Comments", res.Engagement.Comments, res.Projected.Comments},
		{},
		{"Source", string(res.Recommendations.Source)},
	}
	if res.Filename != "" {
		meta = append(meta, []any{"File", res.Filename})
	}
	if res.Recommendations.Note != "" {
		meta = append(meta, []any{"Note", res.Recommendations.Note})
	}
	if res.Recommendations.Error != "" {
		meta = append(meta, []any{"Error", res.Recommendations.Error})
	}
	for i, row := range meta {
		for j, v := range row {
			if err := write(SheetEngagement, j+1, i+1, v); err != nil {
				return nil, fmt.Errorf("write engagement: %w", err)
			}
		}
	}
	_ = f.SetColWidth(SheetEngagement, "A", "A", 14)
	_ = f.SetColWidth(SheetEngagement, "B", "C", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	common.LoggerFromContext(ctx, s.logger).Info("export.xlsx.ok",
		"rows", len(res.Recommendations.Items),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
