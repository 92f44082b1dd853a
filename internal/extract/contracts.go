package extract

import (
	"context"

	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// TextExtractor is Stage 1: document -> text. It never fails; problems are
// reported through ExtractedText.Diagnostic.
type TextExtractor interface {
	Extract(ctx context.Context, doc entity.Document) entity.ExtractedText
}
