package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// Upload is one ledger row: which file arrived and how its text was extracted.
// Extracted text and recommendations are not persisted.
type Upload struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name,omitempty"`
	Format       string    `json:"format"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentHash  string    `json:"content_hash"`
	Method       string    `json:"method,omitempty"`
	Strategy     string    `json:"strategy,omitempty"`
	Diagnostic   string    `json:"diagnostic,omitempty"`
	TextChars    int       `json:"text_chars"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// UploadRepository defines ledger operations.
type UploadRepository interface {
	Record(ctx context.Context, doc entity.Document) (Upload, error)
	UpdateExtraction(ctx context.Context, id string, x entity.ExtractedText) error
	GetByID(ctx context.Context, id string) (Upload, error)
	GetLatestByFilename(ctx context.Context, filename string) (Upload, error)
	ListRecent(ctx context.Context, limit int) ([]Upload, error)
}

type uploadRepository struct {
	db     *DB
	logger *slog.Logger
}

// NewUploadRepository creates a new upload ledger.
func NewUploadRepository(db *DB, logger *slog.Logger) UploadRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &uploadRepository{db: db, logger: logger}
}

const uploadColumns = `id, filename, original_name, format, size_bytes, content_hash,
	method, strategy, diagnostic, text_chars, uploaded_at`

func (r *uploadRepository) Record(ctx context.Context, doc entity.Document) (Upload, error) {
	u := Upload{
		ID:           uuid.NewString(),
		Filename:     doc.Filename,
		OriginalName: doc.OriginalName,
		Format:       doc.Format,
		SizeBytes:    int64(doc.Size),
		ContentHash:  doc.HashHex,
		UploadedAt:   doc.UploadedAt.UTC(),
	}
	if u.UploadedAt.IsZero() {
		u.UploadedAt = time.Now().UTC()
	}

	q := r.db.Rebind(`INSERT INTO uploads (` + uploadColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, '', '', '', 0, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Filename, u.OriginalName, u.Format, u.SizeBytes, u.ContentHash, u.UploadedAt.UnixMilli())
	if err != nil {
		r.logger.Error("failed to record upload", "filename", u.Filename, "error", err)
		return Upload{}, common.DatabaseError("record upload", err)
	}
	r.logger.Debug("recorded upload", "id", u.ID, "filename", u.Filename, "size", u.SizeBytes)
	return u, nil
}

func (r *uploadRepository) UpdateExtraction(ctx context.Context, id string, x entity.ExtractedText) error {
	q := r.db.Rebind(`UPDATE uploads SET method = ?, strategy = ?, diagnostic = ?, text_chars = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q, x.Method, x.Strategy, x.Diagnostic, len([]rune(x.Text)), id)
	if err != nil {
		r.logger.Error("failed to update extraction", "id", id, "error", err)
		return common.DatabaseError("update extraction", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NotFoundf("upload %s not found", id)
	}
	return nil
}

func (r *uploadRepository) GetByID(ctx context.Context, id string) (Upload, error) {
	q := r.db.Rebind(`SELECT ` + uploadColumns + ` FROM uploads WHERE id = ?`)
	return r.getOne(ctx, q, id)
}

func (r *uploadRepository) GetLatestByFilename(ctx context.Context, filename string) (Upload, error) {
	q := r.db.Rebind(`SELECT ` + uploadColumns + ` FROM uploads WHERE filename = ?
		ORDER BY uploaded_at DESC LIMIT 1`)
	return r.getOne(ctx, q, filename)
}

func (r *uploadRepository) ListRecent(ctx context.Context, limit int) ([]Upload, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > 500:
		limit = 500
	}
	q := r.db.Rebind(`SELECT ` + uploadColumns + ` FROM uploads ORDER BY uploaded_at DESC LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		r.logger.Error("failed to list uploads", "error", err)
		return nil, common.DatabaseError("list uploads", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close rows", "error", err)
		}
	}()

	out := make([]Upload, 0, limit)
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, common.DatabaseError("scan upload", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, common.DatabaseError("list uploads", err)
	}
	return out, nil
}

func (r *uploadRepository) getOne(ctx context.Context, q string, arg any) (Upload, error) {
	u, err := scanUpload(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Upload{}, common.NotFoundf("upload %v not found", arg)
	}
	if err != nil {
		r.logger.Error("failed to get upload", "key", arg, "error", err)
		return Upload{}, common.DatabaseError("get upload", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(s rowScanner) (Upload, error) {
	var (
		u  Upload
		ms int64
	)
	err := s.Scan(&u.ID, &u.Filename, &u.OriginalName, &u.Format, &u.SizeBytes, &u.ContentHash,
		&u.Method, &u.Strategy, &u.Diagnostic, &u.TextChars, &ms)
	if err != nil {
		return Upload{}, err
	}
	u.UploadedAt = time.UnixMilli(ms).UTC()
	return u, nil
}
