package server

import (
	"net/http"
	"strings"

	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

type textRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse is the /analyze_post payload.
type AnalyzeResponse struct {
	Likes           int                      `json:"likes"`
	Comments        int                      `json:"comments"`
	UpdatedLikes    int                      `json:"updated_likes"`
	UpdatedComments int                      `json:"updated_comments"`
	Recommendations entity.RecommendationSet `json:"recommendations"`
}

func (s *Server) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req textRequest
	if err := decodeJSON(r, s.cfg.MaxJSONBytes, w, &req); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, r, common.InvalidInput("no text provided"))
		return "", false
	}
	if err := common.NewValidator().Field("text", req.Text, common.MaxLength(s.cfg.MaxTextChars)).Err(); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return req.Text, true
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Pipeline.Recommend(r.Context(), text))
}

func (s *Server) handleAnalyzePost(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}
	res := s.deps.Pipeline.Analyze(r.Context(), text)
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Likes:           res.Engagement.Likes,
		Comments:        res.Engagement.Comments,
		UpdatedLikes:    res.Projected.Likes,
		UpdatedComments: res.Projected.Comments,
		Recommendations: res.Recommendations,
	})
}
