package vertex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/llm"
)

// Config for the Vertex AI Gemini client. Authentication comes from
// Application Default Credentials.
type Config struct {
	ProjectID       string
	Region          string // default us-central1
	Model           string // default gemini-1.5-flash
	Temperature     float32
	MaxOutputTokens int32
	Timeout         time.Duration
}

// Client connects on first use; credential problems surface from Generate.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	base  *genai.Client
	model *genai.GenerativeModel
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Region == "" {
		cfg.Region = "us-central1"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 512
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, logger: logger}
}

func (c *Client) Name() string { return "vertex" }

func (c *Client) generativeModel(ctx context.Context) (*genai.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != nil {
		return c.model, nil
	}
	if c.cfg.ProjectID == "" {
		return nil, fmt.Errorf("vertex: project id is empty")
	}
	base, err := genai.NewClient(ctx, c.cfg.ProjectID, c.cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	m := base.GenerativeModel(c.cfg.Model)
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(c.cfg.Temperature),
		MaxOutputTokens:  genai.Ptr(c.cfg.MaxOutputTokens),
	}
	c.base, c.model = base, m
	return m, nil
}

// Generate sends the prompt and concatenates the text parts of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (llm.Generation, error) {
	log := common.LoggerFromContext(ctx, c.logger)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	model, err := c.generativeModel(ctx)
	if err != nil {
		log.Error("llm.generate.client_error", "provider", c.Name(), "error", err)
		return llm.Generation{Model: c.cfg.Model}, err
	}

	log.Info("llm.generate.start", "provider", c.Name(), "model", c.cfg.Model, "region", c.cfg.Region, "prompt_len", len(prompt))
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error("llm.generate.error",
			"provider", c.Name(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Generation{Model: c.cfg.Model}, fmt.Errorf("vertex generate: %w", err)
	}

	text := responseText(resp)
	log.Info("llm.generate.ok",
		"provider", c.Name(), "model", c.cfg.Model, "chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Generation{Text: text, Model: c.cfg.Model}, nil
}

// Close releases the underlying client, if one was created.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return nil
	}
	err := c.base.Close()
	c.base, c.model = nil, nil
	return err
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
