package processor

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
	"github.com/joseph-ayodele/post-advisor/internal/llm"
)

// Recommender is satisfied by *recommend.Client.
type Recommender interface {
	Recommend(ctx context.Context, text string) llm.RawOutput
}

// RecommendStage asks for recommendations and normalizes whatever comes back.
type RecommendStage struct {
	Client     Recommender
	Normalizer *llm.Normalizer
	Logger     *slog.Logger
}

func NewRecommendStage(client Recommender, normalizer *llm.Normalizer, logger *slog.Logger) *RecommendStage {
	if logger == nil {
		logger = slog.Default()
	}
	if normalizer == nil {
		normalizer = llm.NewNormalizer(llm.NormalizerConfig{}, logger)
	}
	return &RecommendStage{Client: client, Normalizer: normalizer, Logger: logger}
}

func (s *RecommendStage) Run(ctx context.Context, text string) entity.RecommendationSet {
	log := common.LoggerFromContext(ctx, s.Logger)

	raw := s.Client.Recommend(ctx, text)
	set := s.Normalizer.Normalize(raw)

	log.Info("processor.recommend.done",
		"source", set.Source,
		"items", len(set.Items),
		"model", set.Model,
		"has_error", set.Error != "",
	)
	return set
}
