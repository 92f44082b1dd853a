package openai

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// Config for the OpenAI-compatible client.
type Config struct {
	APIKey      string        // bearer token
	BaseURL     string        // default https://api.openai.com/v1; any compatible endpoint works
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0..2
	MaxTokens   int           // default 512
	Timeout     time.Duration // http client timeout
}

// ChatClient is the subset of *goopenai.Client we call; tests can stub it.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

type Client struct {
	cfg    Config
	chat   ChatClient
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	oc := goopenai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		cfg:    cfg,
		chat:   goopenai.NewClientWithConfig(oc),
		logger: logger,
	}
}

// NewClientWith wires a custom ChatClient.
func NewClientWith(cfg Config, chat ChatClient, logger *slog.Logger) *Client {
	c := NewClient(cfg, logger)
	c.chat = chat
	return c
}
