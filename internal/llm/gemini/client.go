package gemini

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/llm"
)

func (c *Client) Name() string { return "gemini" }

// Generate posts a single-prompt generateContent request and returns the raw
// response body; decoding candidates is left to the normalizer.
func (c *Client) Generate(ctx context.Context, prompt string) (llm.Generation, error) {
	log := common.LoggerFromContext(ctx, c.logger)
	start := time.Now()

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     c.cfg.Temperature,
			"maxOutputTokens": c.cfg.MaxOutputTokens,
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + url.PathEscape(c.cfg.Model) +
		":generateContent?key=" + url.QueryEscape(c.cfg.APIKey)

	log.Info("llm.generate.start", "provider", c.Name(), "model", c.cfg.Model, "prompt_len", len(prompt))
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, nil, log)
	if err != nil {
		log.Error("llm.generate.http_error",
			"provider", c.Name(), "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Generation{Model: c.cfg.Model}, err
	}

	log.Info("llm.generate.ok",
		"provider", c.Name(), "model", c.cfg.Model, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Generation{Body: raw, Model: c.cfg.Model}, nil
}
