package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/post-advisor/internal/common"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("server.write_json_failed", "error", err)
	}
}

// writeError maps err onto a status code and a caller-safe message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		status = http.StatusRequestEntityTooLarge
	}
	msg := common.PublicMessage(err)
	if status == http.StatusRequestEntityTooLarge && mbe != nil {
		msg = "request body too large"
	}

	log := common.LoggerFromContext(r.Context(), s.logger)
	if status >= 500 {
		log.Error("server.request_failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		log.Warn("server.request_rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: msg, RequestID: common.RequestIDFromContext(r.Context())})
}

func decodeJSON(r *http.Request, limit int64, w http.ResponseWriter, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return common.InvalidInputf("invalid JSON body: %v", err)
	}
	return nil
}
