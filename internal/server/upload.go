package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/post-advisor/internal/common"
)

// multipart framing allowance on top of the file size limit
const multipartOverhead = 1 << 20

// handleUpload streams the "file" part straight into the ingestor, which rejects
// bad names and types before writing anything, then runs the pipeline.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, r, common.InvalidInput("no file part"))
		return
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			s.writeError(w, r, common.InvalidInput("no file part"))
			return
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				s.writeError(w, r, err)
				return
			}
			s.writeError(w, r, common.InvalidInputf("malformed multipart body: %v", err))
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		name := part.FileName()
		if strings.TrimSpace(name) == "" {
			_ = part.Close()
			s.writeError(w, r, common.InvalidInput("no selected file"))
			return
		}

		doc, err := s.deps.Ingestor.SaveUpload(ctx, name, part)
		_ = part.Close()
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		res := s.deps.Pipeline.ProcessDocument(ctx, doc)
		writeJSON(w, http.StatusOK, res)
		return
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	path, err := s.deps.Ingestor.Resolve(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeFile(w, r, path)
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	if s.deps.Uploads == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, r, common.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}
	rows, err := s.deps.Uploads.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
