package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/post-advisor/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	OCR      OCRConfig
	LLM      LLMConfig
	LogLevel string
}

// DatabaseConfig holds upload ledger configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds listener configuration
type ServerConfig struct {
	HTTPAddr string
	GRPCAddr string // optional gRPC health endpoint
}

// StorageConfig holds upload storage configuration
type StorageConfig struct {
	UploadDir      string
	MaxUploadBytes int64
	InboxDir       string
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	PDFEngine     string
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MaxPages      int
}

// LLMConfig holds recommendation service configuration
type LLMConfig struct {
	Provider       string
	APIKey         string
	Model          string
	BaseURL        string
	Region         string // vertex only
	Temperature    float32
	MaxOutputToken int
	MaxPromptChars int
	Timeout        time.Duration
	Lenient        bool // repair near-miss JSON shapes before degrading
}

// LoadConfig loads configuration from environment variables, then fills
// unset values from the file named by CONFIG_FILE when present.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "file:post-advisor.db"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":5000"),
			GRPCAddr: getEnv("GRPC_ADDR", ""),
		},
		Storage: StorageConfig{
			UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", constants.MaxUploadMBDefault)) << 20,
			InboxDir:       getEnv("INBOX_DIR", ""),
		},
		OCR: OCRConfig{
			PDFEngine:     getEnv("PDF_ENGINE", constants.PDFEngineNative),
			Pdftotext:     getEnv("PDFTOTEXT", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		LLM:      loadLLMConfig(),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := LoadConfigFile(path)
		if err != nil {
			return nil, WrapError(err, "load config file")
		}
		ApplyFileConfig(cfg, fc)
	}
	return cfg, nil
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", constants.ProviderGemini))
	c := LLMConfig{
		Provider:       provider,
		Temperature:    getEnvAsFloat32("LLM_TEMPERATURE", 0.2),
		MaxOutputToken: getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 512),
		MaxPromptChars: getEnvAsInt("LLM_MAX_PROMPT_CHARS", 8000),
		Timeout:        getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		Lenient:        getEnvAsBool("LLM_LENIENT", false),
	}
	switch provider {
	case constants.ProviderOpenAI:
		c.APIKey = getEnv("OPENAI_API_KEY", "")
		c.Model = getEnv("OPENAI_MODEL", "gpt-4o-mini")
		c.BaseURL = getEnv("OPENAI_BASE_URL", "")
	case constants.ProviderVertex:
		// the project id plays the credential role; auth itself comes from ADC
		c.APIKey = getEnv("VERTEX_PROJECT", "")
		c.Model = getEnv("VERTEX_MODEL", "gemini-1.5-flash")
		c.Region = getEnv("VERTEX_REGION", "us-central1")
	default:
		c.APIKey = getEnv("GEMINI_API_KEY", "")
		c.Model = getEnv("GEMINI_MODEL", "gemini-1.5-flash")
		c.BaseURL = getEnv("GEMINI_BASE_URL", "")
	}
	return c
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the loaded configuration. A missing LLM credential is
// not an error: recommendations fall back to local heuristics.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Storage.UploadDir == "" {
		return NewAppError("CONFIG_ERROR", "UPLOAD_DIR is required", ErrInvalidInput)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_MB must be positive", ErrInvalidInput)
	}
	switch c.OCR.PDFEngine {
	case constants.PDFEngineNative, constants.PDFEnginePDFCPU, constants.PDFEnginePdftotext:
	default:
		return NewAppError("CONFIG_ERROR", "PDF_ENGINE must be one of native, pdfcpu, pdftotext", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case constants.ProviderGemini, constants.ProviderOpenAI, constants.ProviderVertex:
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be one of gemini, openai, vertex", ErrInvalidInput)
	}
	if c.LLM.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "LLM_TIMEOUT must be positive", ErrInvalidInput)
	}
	return nil
}
