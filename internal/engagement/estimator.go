// Package engagement estimates like/comment counts for a post. It is a demo
// heuristic, not analytics: counts missing from the text are synthesized at random.
package engagement

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/post-advisor/internal/entity"
)

// synthesized ranges, [min, max)
const (
	minLikes    = 100
	maxLikes    = 1000
	minComments = 10
	maxComments = 100

	likesGrowth    = 1.2
	commentsGrowth = 1.3
)

// "1,234 likes", "12 Likes", "3.400 LIKES"
var reLikes = regexp.MustCompile(`(?i)(\d{1,3}(?:[,.]\d{3})+|\d+)\s*likes\b`)

// Rand is the randomness the estimator needs; *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type Estimator struct {
	rnd    Rand
	logger *slog.Logger
}

// NewEstimator uses rnd for synthesized counts; nil means a time-seeded source.
func NewEstimator(rnd Rand, logger *slog.Logger) *Estimator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{rnd: rnd, logger: logger}
}

// Estimate derives the snapshot from text (synthesizing what it can't find) and
// its projection.
func (e *Estimator) Estimate(text string) (entity.EngagementSnapshot, entity.ProjectedSnapshot) {
	var snap entity.EngagementSnapshot

	snap.Likes = ParseLikes(text)
	if snap.Likes <= 0 {
		snap.Likes = minLikes + e.rnd.IntN(maxLikes-minLikes)
		snap.LikesSynthesized = true
	}

	snap.Comments = CountCommentLines(text)
	if snap.Comments == 0 {
		snap.Comments = minComments + e.rnd.IntN(maxComments-minComments)
		snap.CommentsSynthesized = true
	}

	proj := Project(snap)
	e.logger.Debug("engagement.estimate",
		"likes", snap.Likes, "likes_synthesized", snap.LikesSynthesized,
		"comments", snap.Comments, "comments_synthesized", snap.CommentsSynthesized,
		"projected_likes", proj.Likes, "projected_comments", proj.Comments,
	)
	return snap, proj
}

// Project scales a snapshot by the fixed growth factors, rounding down.
func Project(s entity.EngagementSnapshot) entity.ProjectedSnapshot {
	return entity.ProjectedSnapshot{
		Likes:    scale(s.Likes, likesGrowth),
		Comments: scale(s.Comments, commentsGrowth),
	}
}

// scale computes floor(n*f) on integers so 50*1.3 is 65, not 64.99...
func scale(n int, f float64) int {
	num := int64(math.Round(f * 10))
	return int(int64(n) * num / 10)
}

// ParseLikes returns the first "<n> likes" count in text, or 0.
func ParseLikes(text string) int {
	m := reLikes.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// CountCommentLines counts lines that mention someone ("@") or carry more than
// three whitespace-separated tokens.
func CountCommentLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "@") || len(strings.Fields(line)) > 3 {
			n++
		}
	}
	return n
}
