package server

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// handleExport renders a posted PipelineResult as an XLSX or PDF attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		s.writeError(w, r, common.InvalidInputf("unsupported export format %q", format))
		return
	}

	var res entity.PipelineResult
	if err := decodeJSON(r, s.cfg.MaxJSONBytes, w, &res); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		body  []byte
		err   error
		ctype string
	)
	switch format {
	case "pdf":
		body, err = s.deps.Exports.ExportPDF(r.Context(), res)
		ctype = contentTypePDF
	default:
		body, err = s.deps.Exports.ExportXLSX(r.Context(), res)
		ctype = contentTypeXLSX
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "post-report." + format}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
