package processor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// NoTextError is reported when extraction yields nothing to recommend on.
const NoTextError = "no text extracted from document"

// Estimator is satisfied by *engagement.Estimator.
type Estimator interface {
	Estimate(text string) (entity.EngagementSnapshot, entity.ProjectedSnapshot)
}

// Processor coordinates extraction, then recommendations, then the engagement estimate.
// Each call is independent and shares no mutable state with other calls.
type Processor struct {
	Logger         *slog.Logger
	ExtractStage   *ExtractStage
	RecommendStage *RecommendStage
	Estimator      Estimator
}

func NewProcessor(logger *slog.Logger, extract *ExtractStage, recommend *RecommendStage, estimator Estimator) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, ExtractStage: extract, RecommendStage: recommend, Estimator: estimator}
}

// ProcessDocument runs the full pipeline for a stored document. It always returns a
// result; failures surface as the extraction diagnostic or an error-tagged set.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.Document) entity.PipelineResult {
	log := common.LoggerFromContext(ctx, p.Logger)
	log.Info("processor.document.start", "filename", doc.Filename, "kind", doc.Kind, "size", doc.Size)

	x := p.ExtractStage.Run(ctx, doc)

	var set entity.RecommendationSet
	if strings.TrimSpace(x.Text) == "" {
		set = entity.RecommendationSet{
			Source: constants.SourceError,
			Items:  []entity.Recommendation{},
			Error:  NoTextError,
		}
		if x.Diagnostic != "" {
			set.Error = NoTextError + ": " + x.Diagnostic
		}
	} else {
		set = p.RecommendStage.Run(ctx, x.Text)
	}

	snap, proj := p.Estimator.Estimate(x.Text)
	log.Info("processor.document.done",
		"filename", doc.Filename,
		"source", set.Source,
		"likes", snap.Likes,
		"comments", snap.Comments,
	)
	return entity.PipelineResult{
		Filename:        doc.Filename,
		Text:            x.Text,
		Extraction:      &x,
		Recommendations: set,
		Engagement:      snap,
		Projected:       proj,
	}
}

// Recommend skips extraction and estimation.
func (p *Processor) Recommend(ctx context.Context, text string) entity.RecommendationSet {
	return p.RecommendStage.Run(ctx, text)
}

// Analyze runs recommendations and the estimate over already-extracted text.
func (p *Processor) Analyze(ctx context.Context, text string) entity.PipelineResult {
	set := p.RecommendStage.Run(ctx, text)
	snap, proj := p.Estimator.Estimate(text)
	return entity.PipelineResult{
		Text:            text,
		Recommendations: set,
		Engagement:      snap,
		Projected:       proj,
	}
}
