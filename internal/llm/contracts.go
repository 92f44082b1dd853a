package llm

import (
	"context"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// Generation is a provider's answer to one prompt. REST providers hand back the
// undecoded response Body; SDK providers fill Text directly.
type Generation struct {
	Text  string
	Body  []byte
	Model string
}

// Provider is the interface the recommendation client depends on.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (Generation, error)
}

// RawOutput is the provenance-tagged output of the recommendation client,
// before normalization.
type RawOutput struct {
	Source constants.Source

	// service
	Text  string
	Body  []byte
	Model string

	// local-fallback
	Items []entity.Recommendation
	Note  string

	// error
	Error string
}
