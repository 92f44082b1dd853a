package recommend

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
	"github.com/joseph-ayodele/post-advisor/internal/llm"
)

// FallbackNote is attached to local-fallback output.
const FallbackNote = "Set GEMINI_API_KEY env var to enable AI recommendations."

// fallbackItems is the fixed local heuristic set.
var fallbackItems = []entity.Recommendation{
	{Aspect: "Caption length", Suggestion: "Use shorter captions (<= 100 chars) to increase readability."},
	{Aspect: "Hashtags", Suggestion: "Add 1-2 relevant hashtags."},
	{Aspect: "Call to action", Suggestion: "Include a call-to-action (e.g., 'Tell us your thoughts!')."},
	{Aspect: "Multimedia", Suggestion: "Post image carousels for higher engagement on multi-photo posts."},
}

// Config is fixed at construction; nothing is read from the environment at call time.
type Config struct {
	APIKey         string        // empty -> local fallback
	Timeout        time.Duration // bound on the single provider call, default 30s
	MaxPromptChars int           // 0 = no limit
	FallbackNote   string        // default FallbackNote
}

// Client builds the prompt and invokes the provider once, or answers locally
// when no credential is configured.
type Client struct {
	cfg      Config
	provider llm.Provider
	logger   *slog.Logger
}

func NewClient(cfg Config, provider llm.Provider, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FallbackNote == "" {
		cfg.FallbackNote = FallbackNote
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, provider: provider, logger: logger}
}

// LocalFallback reports whether Recommend answers without calling the provider.
func (c *Client) LocalFallback() bool {
	return c.cfg.APIKey == "" || c.provider == nil
}

// Recommend never returns an error: provider failures come back tagged
// constants.SourceError with the description. There are no retries.
func (c *Client) Recommend(ctx context.Context, text string) llm.RawOutput {
	log := common.LoggerFromContext(ctx, c.logger)

	if c.LocalFallback() {
		log.Info("recommend.fallback", "reason", "no credential configured", "text_len", len(text))
		items := make([]entity.Recommendation, len(fallbackItems))
		copy(items, fallbackItems)
		return llm.RawOutput{
			Source: constants.SourceLocalFallback,
			Items:  items,
			Note:   c.cfg.FallbackNote,
		}
	}

	prompt := llm.BuildRecommendationPrompt(text, c.cfg.MaxPromptChars)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	gen, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		desc := err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			desc = "recommendation service timed out after " + c.cfg.Timeout.String() + ": " + desc
		}
		log.Warn("recommend.service_error",
			"provider", c.provider.Name(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.RawOutput{Source: constants.SourceError, Error: desc, Model: gen.Model}
	}

	log.Info("recommend.service_ok",
		"provider", c.provider.Name(),
		"model", gen.Model,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.RawOutput{
		Source: constants.SourceService,
		Text:   gen.Text,
		Body:   gen.Body,
		Model:  gen.Model,
	}
}
