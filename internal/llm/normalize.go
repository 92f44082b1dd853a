package llm

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// AspectGeneral labels the single entry produced when model output cannot be parsed.
const AspectGeneral = "General"

// ``` or ```json / ```JSON5 / ```c++ ... anywhere in the text
var reFence = regexp.MustCompile("```[A-Za-z0-9_+.-]*")

// NormalizerConfig toggles the lenient repair pass.
type NormalizerConfig struct {
	// Lenient retries validation after SanitizeRecommendations when the strict parse fails.
	Lenient bool
}

// Normalizer turns untrusted model output into a RecommendationSet. It never fails.
type Normalizer struct {
	cfg    NormalizerConfig
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewNormalizer(cfg NormalizerConfig, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := CompileSchema(BuildRecommendationJSONSchema())
	if err != nil {
		// static schema; only a programming error gets here
		panic(err)
	}
	return &Normalizer{cfg: cfg, schema: schema, logger: logger}
}

// Normalize passes local-fallback and error outputs through, and parses service
// output strictly, degrading to a single "General" entry holding the cleaned text.
func (n *Normalizer) Normalize(raw RawOutput) entity.RecommendationSet {
	switch raw.Source {
	case constants.SourceLocalFallback:
		return entity.RecommendationSet{
			Source: raw.Source,
			Items:  nonNil(raw.Items),
			Note:   raw.Note,
		}
	case constants.SourceError:
		// no recommendations are synthesized; the description travels in Error
		return entity.RecommendationSet{
			Source: raw.Source,
			Items:  []entity.Recommendation{},
			Error:  raw.Error,
			Model:  raw.Model,
		}
	}

	text := raw.Text
	if text == "" && len(raw.Body) > 0 {
		text = CandidateText(raw.Body)
	}
	cleaned := StripFences(text)
	set := entity.RecommendationSet{Source: constants.SourceService, Model: raw.Model, Items: []entity.Recommendation{}}
	if cleaned == "" {
		n.logger.Warn("llm.normalize.empty", "model", raw.Model, "body_bytes", len(raw.Body))
		return set
	}

	if items, ok := n.parse([]byte(cleaned)); ok {
		set.Items = items
		n.logger.Debug("llm.normalize.ok", "items", len(items))
		return set
	}

	n.logger.Warn("llm.normalize.degraded", "model", raw.Model, "chars", len(cleaned))
	set.Items = []entity.Recommendation{{Aspect: AspectGeneral, Suggestion: cleaned}}
	return set
}

func (n *Normalizer) parse(data []byte) ([]entity.Recommendation, bool) {
	err := ValidateJSON(n.schema, data)
	if err != nil && n.cfg.Lenient {
		cleaned, _, sErr := SanitizeRecommendations(data, n.logger)
		if sErr == nil {
			if vErr := ValidateJSON(n.schema, cleaned); vErr == nil {
				data, err = cleaned, nil
			}
		}
	}
	if err != nil {
		n.logger.Debug("llm.normalize.schema_validation_failed", "error", err)
		return nil, false
	}

	var items []entity.Recommendation
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return nonNil(items), true
}

// StripFences removes every fenced-code marker (with or without a language tag)
// and trims surrounding whitespace.
func StripFences(s string) string {
	return strings.TrimSpace(reFence.ReplaceAllString(s, ""))
}

// CandidateText extracts candidates[0].content.parts[*].text from a
// generateContent response body. Missing fields yield "".
func CandidateText(body []byte) string {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func nonNil(items []entity.Recommendation) []entity.Recommendation {
	if items == nil {
		return []entity.Recommendation{}
	}
	return items
}
