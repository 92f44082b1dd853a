package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
	"github.com/joseph-ayodele/post-advisor/internal/repository"
)

// FSIngestor stores uploads on the local filesystem and records them in the ledger.
type FSIngestor struct {
	UploadDir string
	MaxBytes  int64
	Uploads   repository.UploadRepository // optional
	Logger    *slog.Logger
}

func NewFSIngestor(uploadDir string, maxBytes int64, uploads repository.UploadRepository, logger *slog.Logger) *FSIngestor {
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if maxBytes <= 0 {
		maxBytes = constants.MaxUploadMBDefault << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{UploadDir: uploadDir, MaxBytes: maxBytes, Uploads: uploads, Logger: logger}
}

// SaveUpload rejects the file before anything is written when its name is empty or
// its extension is not in the allowlist. An existing file with the same sanitized
// name is replaced.
func (i *FSIngestor) SaveUpload(ctx context.Context, originalName string, r io.Reader) (entity.Document, error) {
	log := common.LoggerFromContext(ctx, i.Logger)

	if strings.TrimSpace(originalName) == "" {
		return entity.Document{}, common.InvalidInput("no selected file")
	}
	if err := checkExt(originalName); err != nil {
		log.Warn("ingest.upload.rejected", "original_name", originalName, "error", err)
		return entity.Document{}, err
	}
	name := SecureFilename(originalName)
	if name == "" || !AllowedExt(filepath.Ext(name)) {
		log.Warn("ingest.upload.rejected", "original_name", originalName, "reason", "unusable filename")
		return entity.Document{}, common.InvalidInputf("invalid filename %q", originalName)
	}

	body, err := io.ReadAll(io.LimitReader(r, i.MaxBytes+1))
	if err != nil {
		return entity.Document{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(body)) > i.MaxBytes {
		return entity.Document{}, common.NewAppError("TOO_LARGE",
			fmt.Sprintf("file exceeds %d bytes", i.MaxBytes), common.ErrTooLarge)
	}

	if err := os.MkdirAll(i.UploadDir, 0o755); err != nil {
		return entity.Document{}, fmt.Errorf("create upload dir: %w", err)
	}
	dst := filepath.Join(i.UploadDir, name)
	if err := writeFileAtomic(dst, body); err != nil {
		log.Error("ingest.upload.write_failed", "path", dst, "error", err)
		return entity.Document{}, fmt.Errorf("store upload: %w", err)
	}

	sum := sha256.Sum256(body)
	doc := entity.Document{
		Filename:     name,
		OriginalName: originalName,
		Kind:         constants.MapExtToKind(filepath.Ext(name)),
		Format:       constants.NormalizeExt(filepath.Ext(name)),
		Path:         dst,
		Size:         len(body),
		HashHex:      hex.EncodeToString(sum[:]),
		UploadedAt:   time.Now().UTC(),
	}
	i.record(ctx, &doc)

	log.Info("ingest.upload.stored", "filename", doc.Filename, "size", doc.Size, "kind", doc.Kind)
	return doc, nil
}

// IngestPath registers a file in place without copying it.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (entity.Document, error) {
	log := common.LoggerFromContext(ctx, i.Logger)

	abs, err := filepath.Abs(path)
	if err != nil {
		return entity.Document{}, fmt.Errorf("abs path: %w", err)
	}
	if err := checkExt(abs); err != nil {
		return entity.Document{}, err
	}

	f, err := os.Open(abs)
	if err != nil {
		log.Warn("ingest.path.open_failed", "path", abs, "error", err)
		return entity.Document{}, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			log.Warn("ingest.path.close_failed", "path", abs, "error", err)
		}
	}(f)

	h := sha256.New()
	n, err := io.Copy(h, io.LimitReader(f, i.MaxBytes+1))
	if err != nil {
		return entity.Document{}, fmt.Errorf("hash: %w", err)
	}
	if n > i.MaxBytes {
		return entity.Document{}, common.NewAppError("TOO_LARGE",
			fmt.Sprintf("file exceeds %d bytes", i.MaxBytes), common.ErrTooLarge)
	}

	base := filepath.Base(abs)
	doc := entity.Document{
		Filename:     base,
		OriginalName: base,
		Kind:         constants.MapExtToKind(filepath.Ext(abs)),
		Format:       constants.NormalizeExt(filepath.Ext(abs)),
		Path:         abs,
		Size:         int(n),
		HashHex:      hex.EncodeToString(h.Sum(nil)),
		UploadedAt:   time.Now().UTC(),
	}
	i.record(ctx, &doc)
	return doc, nil
}

// Resolve only accepts names that are already in sanitized form.
func (i *FSIngestor) Resolve(filename string) (string, error) {
	safe := SecureFilename(filename)
	if safe == "" || safe != filename {
		return "", common.NotFoundf("file %q not found", filename)
	}
	p := filepath.Join(i.UploadDir, safe)
	st, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && st.IsDir()) {
		return "", common.NotFoundf("file %q not found", filename)
	}
	if err != nil {
		return "", fmt.Errorf("stat upload: %w", err)
	}
	return p, nil
}

func (i *FSIngestor) record(ctx context.Context, doc *entity.Document) {
	if i.Uploads == nil {
		return
	}
	u, err := i.Uploads.Record(ctx, *doc)
	if err != nil {
		common.LoggerFromContext(ctx, i.Logger).Warn("ingest.ledger.record_failed", "filename", doc.Filename, "error", err)
		return
	}
	doc.UploadID = u.ID
}

func checkExt(name string) error {
	ext := constants.NormalizeExt(filepath.Ext(name))
	if ext == "" {
		return common.NewAppError("UNSUPPORTED_TYPE", "file has no extension", common.ErrUnsupportedType)
	}
	if !AllowedExt(ext) {
		return common.NewAppError("UNSUPPORTED_TYPE", fmt.Sprintf("unsupported file type: .%s", ext), common.ErrUnsupportedType)
	}
	return nil
}

func writeFileAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
