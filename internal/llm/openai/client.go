package openai

import (
	"context"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/llm"
)

func (c *Client) Name() string { return "openai" }

// Generate sends the prompt as a single user message. A response without choices
// yields empty text, which the normalizer treats like any other empty answer.
func (c *Client) Generate(ctx context.Context, prompt string) (llm.Generation, error) {
	log := common.LoggerFromContext(ctx, c.logger)
	start := time.Now()

	log.Info("llm.generate.start",
		"provider", c.Name(),
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(prompt),
	)

	resp, err := c.chat.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		log.Error("llm.generate.http_error",
			"provider", c.Name(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Generation{Model: c.cfg.Model}, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		log.Warn("llm.generate.no_choices", "provider", c.Name(), "id", resp.ID)
		return llm.Generation{Model: modelOr(resp.Model, c.cfg.Model)}, nil
	}

	content := resp.Choices[0].Message.Content
	log.Info("llm.generate.ok",
		"provider", c.Name(),
		"model", resp.Model,
		"finish_reason", resp.Choices[0].FinishReason,
		"chars", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Generation{Text: content, Model: modelOr(resp.Model, c.cfg.Model)}, nil
}

func modelOr(m, def string) string {
	if m != "" {
		return m
	}
	return def
}
