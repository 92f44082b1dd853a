package gemini

import (
	"log/slog"
	"net/http"
	"time"
)

// Config for the Gemini REST client.
type Config struct {
	APIKey          string        // sent as the ?key= query parameter
	BaseURL         string        // default https://generativelanguage.googleapis.com/v1beta
	Model           string        // e.g., "gemini-1.5-flash"
	Temperature     float32       // 0..2
	MaxOutputTokens int           // default 512
	Timeout         time.Duration // http client timeout, default 30s
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
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
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
