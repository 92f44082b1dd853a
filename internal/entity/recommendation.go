package entity

import "github.com/joseph-ayodele/post-advisor/constants"

// Recommendation is one structured suggestion.
type Recommendation struct {
	Aspect     string `json:"aspect"`
	Suggestion string `json:"suggestion"`
}

// RecommendationSet is the normalized recommendation list tagged with its provenance.
type RecommendationSet struct {
	Source constants.Source `json:"source"`
	Items  []Recommendation `json:"recommendations"`
	Note   string           `json:"note,omitempty"`
	Error  string           `json:"error,omitempty"`
	Model  string           `json:"model,omitempty"`
}
