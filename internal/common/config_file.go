package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional on-disk configuration. Environment variables win
// over anything set here.
type FileConfig struct {
	Database struct {
		DSN string `yaml:"dsn" json:"dsn"`
	} `yaml:"database" json:"database"`

	Server struct {
		HTTPAddr string `yaml:"http" json:"http"`
		GRPCAddr string `yaml:"grpc" json:"grpc"`
	} `yaml:"server" json:"server"`

	Storage struct {
		UploadDir   string `yaml:"uploadDir" json:"uploadDir"`
		MaxUploadMB int    `yaml:"maxUploadMB" json:"maxUploadMB"`
		InboxDir    string `yaml:"inboxDir" json:"inboxDir"`
	} `yaml:"storage" json:"storage"`

	OCR struct {
		PDFEngine   string `yaml:"pdfEngine" json:"pdfEngine"`
		Tesseract   string `yaml:"tesseract" json:"tesseract"`
		Lang        string `yaml:"lang" json:"lang"`
		TessdataDir string `yaml:"tessdataDir" json:"tessdataDir"`
		DPI         int    `yaml:"dpi" json:"dpi"`
		MaxPages    int    `yaml:"maxPages" json:"maxPages"`
	} `yaml:"ocr" json:"ocr"`

	LLM struct {
		Provider string        `yaml:"provider" json:"provider"`
		Key      string        `yaml:"key" json:"key"`
		Model    string        `yaml:"model" json:"model"`
		BaseURL  string        `yaml:"base" json:"base"`
		Region   string        `yaml:"region" json:"region"`
		Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"llm" json:"llm"`

	LogLevel string `yaml:"logLevel" json:"logLevel"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values onto cfg for every field that was not
// set through the environment.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	set := func(env string, dst *string, v string) {
		if v != "" && os.Getenv(env) == "" {
			*dst = v
		}
	}
	setInt := func(env string, dst *int, v int) {
		if v > 0 && os.Getenv(env) == "" {
			*dst = v
		}
	}

	set("DB_URL", &cfg.Database.DSN, fc.Database.DSN)
	set("HTTP_ADDR", &cfg.Server.HTTPAddr, fc.Server.HTTPAddr)
	set("GRPC_ADDR", &cfg.Server.GRPCAddr, fc.Server.GRPCAddr)

	set("UPLOAD_DIR", &cfg.Storage.UploadDir, fc.Storage.UploadDir)
	set("INBOX_DIR", &cfg.Storage.InboxDir, fc.Storage.InboxDir)
	if fc.Storage.MaxUploadMB > 0 && os.Getenv("MAX_UPLOAD_MB") == "" {
		cfg.Storage.MaxUploadBytes = int64(fc.Storage.MaxUploadMB) << 20
	}

	set("PDF_ENGINE", &cfg.OCR.PDFEngine, fc.OCR.PDFEngine)
	set("TESSERACT", &cfg.OCR.Tesseract, fc.OCR.Tesseract)
	set("TESSERACT_LANG", &cfg.OCR.TesseractLang, fc.OCR.Lang)
	set("TESSDATA_PREFIX", &cfg.OCR.TessdataDir, fc.OCR.TessdataDir)
	setInt("OCR_DPI", &cfg.OCR.DPI, fc.OCR.DPI)
	setInt("OCR_MAX_PAGES", &cfg.OCR.MaxPages, fc.OCR.MaxPages)

	if fc.LLM.Provider != "" && os.Getenv("LLM_PROVIDER") == "" {
		cfg.LLM.Provider = fc.LLM.Provider
	}
	if cfg.LLM.APIKey == "" && fc.LLM.Key != "" {
		cfg.LLM.APIKey = fc.LLM.Key
	}
	if fc.LLM.Model != "" && os.Getenv("GEMINI_MODEL") == "" && os.Getenv("OPENAI_MODEL") == "" && os.Getenv("VERTEX_MODEL") == "" {
		cfg.LLM.Model = fc.LLM.Model
	}
	if cfg.LLM.BaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLM.BaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Region != "" && os.Getenv("VERTEX_REGION") == "" {
		cfg.LLM.Region = fc.LLM.Region
	}
	if fc.LLM.Timeout > 0 && os.Getenv("LLM_TIMEOUT") == "" {
		cfg.LLM.Timeout = fc.LLM.Timeout
	}
	set("LOG_LEVEL", &cfg.LogLevel, fc.LogLevel)
}
