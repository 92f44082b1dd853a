package entity

// EngagementSnapshot holds like/comment counts, either read from text or synthesized.
type EngagementSnapshot struct {
	Likes               int  `json:"likes"`
	Comments            int  `json:"comments"`
	LikesSynthesized    bool `json:"likes_synthesized"`
	CommentsSynthesized bool `json:"comments_synthesized"`
}

// ProjectedSnapshot is the expected engagement after applying the recommendations.
type ProjectedSnapshot struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}
