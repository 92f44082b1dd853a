package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/post-advisor/internal/async"
	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// AdviceSuffix is appended to an inbox file's path for its result sidecar.
const AdviceSuffix = ".advice.json"

// DocumentProcessor is satisfied by *processor.Processor.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc entity.Document) entity.PipelineResult
}

// InboxHandler ingests a dropped file, runs the pipeline and writes the
// result next to the file as <file>.advice.json.
func InboxHandler(ing Ingestor, proc DocumentProcessor, logger *slog.Logger) async.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, job async.Job) error {
		ctx = common.WithRequestID(ctx, job.TraceID)
		doc, err := ing.IngestPath(ctx, job.Path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", job.Path, err)
		}
		res := proc.ProcessDocument(ctx, doc)

		out := job.Path + AdviceSuffix
		if err := WriteAdvice(out, res); err != nil {
			return err
		}
		logger.Info("ingest.inbox.written", "path", out, "source", res.Recommendations.Source)
		return nil
	}
}

// WriteAdvice stores res as indented JSON at path.
func WriteAdvice(path string, res entity.PipelineResult) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode advice: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write advice: %w", err)
	}
	return nil
}
