package entity

// PipelineResult is the per-request response payload. It is never persisted.
type PipelineResult struct {
	Filename        string             `json:"filename,omitempty"`
	Text            string             `json:"text"`
	Extraction      *ExtractedText     `json:"extraction,omitempty"`
	Recommendations RecommendationSet  `json:"recommendations"`
	Engagement      EngagementSnapshot `json:"engagement"`
	Projected       ProjectedSnapshot  `json:"projected"`
}
