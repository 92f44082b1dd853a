package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "ledger.db")
	db, err := Open(context.Background(), Config{DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func TestUploadLedger(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewUploadRepository(db, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := repo.Record(ctx, entity.Document{
		Filename: "post.pdf", OriginalName: "My Post.pdf", Format: "pdf",
		Size: 1024, HashHex: "abc", UploadedAt: base,
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.Record(ctx, entity.Document{
		Filename: "post.pdf", Format: "pdf", Size: 2048, HashHex: "def", UploadedAt: base.Add(time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids = %q, %q", first.ID, second.ID)
	}

	x := entity.ExtractedText{Text: "héllo", Method: "pdf-text", Strategy: "ledongthuc"}
	if err := repo.UpdateExtraction(ctx, first.ID, x); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Method != "pdf-text" || got.Strategy != "ledongthuc" || got.TextChars != 5 {
		t.Fatalf("extraction not stored: %+v", got)
	}
	if got.OriginalName != "My Post.pdf" || got.SizeBytes != 1024 || !got.UploadedAt.Equal(base) {
		t.Fatalf("row = %+v", got)
	}

	latest, err := repo.GetLatestByFilename(ctx, "post.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.ID {
		t.Fatalf("latest = %s, want %s", latest.ID, second.ID)
	}

	list, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("list order = %+v", list)
	}
	if list, _ := repo.ListRecent(ctx, 1); len(list) != 1 {
		t.Fatalf("limit ignored: %d rows", len(list))
	}
}

func TestUploadLedgerNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewUploadRepository(openTestDB(t), nil)

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("GetByID err = %v", err)
	}
	if _, err := repo.GetLatestByFilename(ctx, "missing.pdf"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("GetLatestByFilename err = %v", err)
	}
	if err := repo.UpdateExtraction(ctx, "missing", entity.ExtractedText{}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("UpdateExtraction err = %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	if err := HealthCheck(context.Background(), db, time.Second, nil); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM uploads WHERE id = ? AND filename = ?"
	pg := &DB{Dialect: DialectPostgres}
	if got := pg.Rebind(q); got != "SELECT * FROM uploads WHERE id = $1 AND filename = $2" {
		t.Fatalf("postgres rebind = %q", got)
	}
	lite := &DB{Dialect: DialectSQLite}
	if got := lite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind = %q", got)
	}
}

func TestDialectFor(t *testing.T) {
	tests := map[string]Dialect{
		"postgres://u:p@localhost/db": DialectPostgres,
		"postgresql://localhost/db":   DialectPostgres,
		"file:ledger.db":              DialectSQLite,
		"":                            DialectSQLite,
		"/var/lib/post-advisor/a.db":  DialectSQLite,
	}
	for dsn, want := range tests {
		if got := DialectFor(dsn); got != want {
			t.Errorf("DialectFor(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := sqliteDSN("file:a.db?mode=rwc")
	want := "file:a.db?mode=rwc&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	if got != want {
		t.Fatalf("sqliteDSN = %q", got)
	}
	if got := sqliteDSN("file:a.db?_pragma=busy_timeout(1)"); got != "file:a.db?_pragma=busy_timeout(1)" {
		t.Fatalf("explicit pragmas rewritten: %q", got)
	}
}
