package ingest

import (
	"context"
	"io"

	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// Result is the per-file outcome of a directory run.
type Result struct {
	SourcePath string
	Document   entity.Document
	Err        string
}

// DirStats summarizes a directory run.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Ingestor is the behavior the server and the inbox depend on.
type Ingestor interface {
	// SaveUpload validates and stores an uploaded file under its sanitized name.
	SaveUpload(ctx context.Context, originalName string, r io.Reader) (entity.Document, error)
	// IngestPath registers a file that already sits on disk.
	IngestPath(ctx context.Context, path string) (entity.Document, error)
	// Resolve maps a stored filename to its path on disk.
	Resolve(filename string) (string, error)
}
