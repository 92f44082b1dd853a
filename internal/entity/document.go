package entity

import (
	"time"

	"github.com/joseph-ayodele/post-advisor/constants"
)

// Document is an uploaded artifact stored under its sanitized filename. It is never mutated.
type Document struct {
	UploadID     string         `json:"upload_id,omitempty"`
	Filename     string         `json:"filename"`
	OriginalName string         `json:"original_name,omitempty"`
	Kind         constants.Kind `json:"kind"`
	Format       string         `json:"format"`
	Path         string         `json:"-"`
	Content      []byte         `json:"-"`
	Size         int            `json:"size"`
	HashHex      string         `json:"content_hash"`
	UploadedAt   time.Time      `json:"uploaded_at"`
}

// ExtractedText is always produced by extraction; failures live in Diagnostic.
type ExtractedText struct {
	Text       string        `json:"text"`
	Method     string        `json:"method,omitempty"`
	Strategy   string        `json:"strategy,omitempty"`
	Diagnostic string        `json:"diagnostic,omitempty"`
	Pages      int           `json:"pages,omitempty"`
	Duration   time.Duration `json:"-"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// Degraded reports whether extraction produced a diagnostic instead of clean text.
func (e ExtractedText) Degraded() bool {
	return e.Diagnostic != ""
}
