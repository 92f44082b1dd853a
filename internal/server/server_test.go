package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/joseph-ayodele/post-advisor/constants"
	"github.com/joseph-ayodele/post-advisor/internal/app"
	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
	"github.com/joseph-ayodele/post-advisor/internal/repository"
)

type testEnv struct {
	srv       *httptest.Server
	uploadDir string
	app       *app.App
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	dir := t.TempDir()
	conf := &common.Config{
		Database: common.DatabaseConfig{DSN: "file:" + filepath.Join(dir, "ledger.db")},
		Storage:  common.StorageConfig{UploadDir: filepath.Join(dir, "uploads"), MaxUploadBytes: cfg.MaxUploadBytes},
		LLM:      common.LLMConfig{Provider: constants.ProviderGemini},
	}
	a, err := app.Build(context.Background(), conf, nil, app.Options{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Close)

	deps := Deps{Ingestor: a.Ingestor, Pipeline: a.Processor, Exports: a.Exports, Uploads: a.Uploads}
	if a.DB != nil {
		deps.DB = a.DB
	}
	srv := httptest.NewServer(New(deps, cfg, nil).Routes())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, uploadDir: conf.Storage.UploadDir, app: a}
}

func (e *testEnv) upload(t *testing.T, filename string, body []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(body)
	_ = mw.Close()

	resp, err := http.Post(e.srv.URL+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) postJSON(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(e.srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func textPDF(t *testing.T, lines ...string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	for _, l := range lines {
		pdf.CellFormat(0, 8, l, "", 1, "L", false, 0, "")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadDirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploadTextPDFWithoutCredential(t *testing.T) {
	env := newTestEnv(t, Config{})

	resp := env.upload(t, "My Post.pdf", textPDF(t, "Golden hour at the pier", "1,234 likes"))
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}
	res := decode[entity.PipelineResult](t, resp)

	if res.Filename != "My_Post.pdf" {
		t.Fatalf("filename = %q", res.Filename)
	}
	if !strings.Contains(res.Text, "Golden hour") {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Recommendations.Source != constants.SourceLocalFallback {
		t.Fatalf("source = %q", res.Recommendations.Source)
	}
	if !strings.Contains(res.Recommendations.Note, "GEMINI_API_KEY") {
		t.Fatalf("note = %q", res.Recommendations.Note)
	}
	if len(res.Recommendations.Items) == 0 {
		t.Fatal("no fallback recommendations")
	}
	if res.Engagement.Likes != 1234 || res.Projected.Likes != 1480 {
		t.Fatalf("engagement = %+v / %+v", res.Engagement, res.Projected)
	}
	if res.Extraction == nil || res.Extraction.Method != constants.MethodPDFText {
		t.Fatalf("extraction = %+v", res.Extraction)
	}

	// ledger row carries the extraction outcome
	list := decode[[]repository.Upload](t, mustGet(t, env.srv.URL+"/uploads?limit=5"))
	if len(list) != 1 || list[0].Filename != "My_Post.pdf" || list[0].Method != constants.MethodPDFText {
		t.Fatalf("ledger = %+v", list)
	}

	dl := mustGet(t, env.srv.URL+"/download/My_Post.pdf")
	if dl.StatusCode != http.StatusOK || !strings.Contains(dl.Header.Get("Content-Disposition"), "attachment") {
		t.Fatalf("download status = %d, disposition = %q", dl.StatusCode, dl.Header.Get("Content-Disposition"))
	}
	if b, _ := io.ReadAll(dl.Body); !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatal("downloaded file is not the stored PDF")
	}
}

func TestUploadDisallowedExtension(t *testing.T) {
	env := newTestEnv(t, Config{})

	resp := env.upload(t, "notes.txt", []byte("hello"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decode[errorBody](t, resp)
	if body.Error == "" || body.RequestID == "" {
		t.Fatalf("error body = %+v", body)
	}
	if names := uploadDirEntries(t, env.uploadDir); len(names) != 0 {
		t.Fatalf("upload dir holds %v", names)
	}
}

func TestUploadMissingFile(t *testing.T) {
	env := newTestEnv(t, Config{})

	resp := env.upload(t, "", []byte("x"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty filename status = %d", resp.StatusCode)
	}
	if got := decode[errorBody](t, resp).Error; got != "no selected file" {
		t.Fatalf("error = %q", got)
	}

	resp = env.postJSON(t, "/upload", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("non-multipart status = %d", resp.StatusCode)
	}
	if got := decode[errorBody](t, resp).Error; got != "no file part" {
		t.Fatalf("error = %q", got)
	}
}

func TestUploadTooLarge(t *testing.T) {
	env := newTestEnv(t, Config{MaxUploadBytes: 1024})

	resp := env.upload(t, "big.png", bytes.Repeat([]byte("a"), 2048))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}
	if names := uploadDirEntries(t, env.uploadDir); len(names) != 0 {
		t.Fatalf("upload dir holds %v", names)
	}
}

func TestRecommendEndpoint(t *testing.T) {
	env := newTestEnv(t, Config{})

	resp := env.postJSON(t, "/recommend", `{"text":"Sunset vibes"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	set := decode[entity.RecommendationSet](t, resp)
	if set.Source != constants.SourceLocalFallback || len(set.Items) == 0 {
		t.Fatalf("set = %+v", set)
	}

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{}`, `not json`} {
		resp := env.postJSON(t, "/recommend", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestAnalyzePost(t *testing.T) {
	env := newTestEnv(t, Config{})

	resp := env.postJSON(t, "/analyze_post", `{"text":"Beach day\n500 likes\n@sam love this\nwhat a great view today"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[AnalyzeResponse](t, resp)
	if got.Likes != 500 || got.UpdatedLikes != 600 {
		t.Fatalf("likes = %d -> %d", got.Likes, got.UpdatedLikes)
	}
	if got.Comments != 2 || got.UpdatedComments != 2 {
		t.Fatalf("comments = %d -> %d", got.Comments, got.UpdatedComments)
	}
	if got.Recommendations.Source != constants.SourceLocalFallback {
		t.Fatalf("source = %q", got.Recommendations.Source)
	}
}

func TestExportEndpoint(t *testing.T) {
	env := newTestEnv(t, Config{})
	payload := `{"filename":"post.pdf","text":"x","recommendations":{"source":"service","recommendations":[{"aspect":"Tone","suggestion":"Be warmer."}]},"engagement":{"likes":500,"comments":50},"projected":{"likes":600,"comments":65}}`

	resp := env.postJSON(t, "/export", payload)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != contentTypeXLSX {
		t.Fatalf("xlsx: status = %d, type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp = env.postJSON(t, "/export?format=pdf", payload)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != contentTypePDF {
		t.Fatalf("pdf: status = %d", resp.StatusCode)
	}
	if b, _ := io.ReadAll(resp.Body); !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatal("pdf export is not a PDF")
	}

	if resp := env.postJSON(t, "/export?format=csv", payload); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("csv status = %d", resp.StatusCode)
	}
}

func TestDownloadNotFound(t *testing.T) {
	env := newTestEnv(t, Config{})
	for _, name := range []string{"missing.pdf", "..%2Fledger.db"} {
		if resp := mustGet(t, env.srv.URL+"/download/"+name); resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", name, resp.StatusCode)
		}
	}
}

func TestHealthzAndRequestID(t *testing.T) {
	env := newTestEnv(t, Config{})

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get(headerRequestID) != "abc-123" {
		t.Fatalf("status = %d, req id = %q", resp.StatusCode, resp.Header.Get(headerRequestID))
	}

	resp2 := mustGet(t, env.srv.URL+"/healthz")
	if resp2.Header.Get(headerRequestID) == "" {
		t.Fatal("request id not minted")
	}
}

type downDB struct{}

func (downDB) PingContext(context.Context) error { return context.DeadlineExceeded }

func TestHealthzDegraded(t *testing.T) {
	srv := httptest.NewServer(New(Deps{DB: downDB{}}, Config{}, nil).Routes())
	defer srv.Close()
	if resp := mustGet(t, srv.URL+"/healthz"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func mustGet(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRecommendTextTooLong(t *testing.T) {
	env := newTestEnv(t, Config{MaxTextChars: 5})
	resp := env.postJSON(t, "/recommend", `{"text":"more than five"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := decode[errorBody](t, resp).Error; got != "text must be at most 5 characters" {
		t.Fatalf("error = %q", got)
	}
}
