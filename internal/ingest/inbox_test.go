package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/async"
	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

type stubProcessor struct {
	reqID string
	doc   entity.Document
}

func (s *stubProcessor) ProcessDocument(ctx context.Context, doc entity.Document) entity.PipelineResult {
	s.reqID = common.RequestIDFromContext(ctx)
	s.doc = doc
	return entity.PipelineResult{
		Filename: doc.Filename,
		Recommendations: entity.RecommendationSet{
			Source: constants.SourceLocalFallback,
			Items:  []entity.Recommendation{{Aspect: "Hashtags", Suggestion: "Add 1-2 relevant hashtags."}},
		},
	}
}

func TestInboxHandlerWritesAdvice(t *testing.T) {
	src := filepath.Join(t.TempDir(), "post.png")
	if err := os.WriteFile(src, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	proc := &stubProcessor{}
	h := InboxHandler(NewFSIngestor(t.TempDir(), 0, nil, nil), proc, nil)

	if err := h(context.Background(), async.Job{Path: src, TraceID: "trace-1"}); err != nil {
		t.Fatal(err)
	}
	if proc.reqID != "trace-1" || proc.doc.Filename != "post.png" {
		t.Fatalf("processor saw req_id=%q doc=%+v", proc.reqID, proc.doc)
	}

	b, err := os.ReadFile(src + AdviceSuffix)
	if err != nil {
		t.Fatal(err)
	}
	var res entity.PipelineResult
	if err := json.Unmarshal(b, &res); err != nil {
		t.Fatal(err)
	}
	if res.Recommendations.Source != constants.SourceLocalFallback || len(res.Recommendations.Items) != 1 {
		t.Fatalf("advice = %+v", res)
	}
}

func TestInboxHandlerIngestError(t *testing.T) {
	h := InboxHandler(NewFSIngestor(t.TempDir(), 0, nil, nil), &stubProcessor{}, nil)
	if err := h(context.Background(), async.Job{Path: filepath.Join(t.TempDir(), "gone.pdf")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "existing.pdf", "skip.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, SkipHidden: true})
	if err != nil {
		t.Fatal(err)
	}

	next := func() string {
		t.Helper()
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("no watcher event")
			return ""
		}
	}
	if p := next(); filepath.Base(p) != "existing.pdf" {
		t.Fatalf("initial event = %q", p)
	}

	writeTree(t, root, "notes.txt", ".hidden.png", "new.jpg")
	if p := next(); filepath.Base(p) != "new.jpg" {
		t.Fatalf("event = %q, want new.jpg", p)
	}

	cancel()
	for range events {
	}
}

func TestStartWatcherNoRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Fatal("expected error")
	}
}
