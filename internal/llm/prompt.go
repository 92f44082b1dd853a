package llm

import (
	"strings"
	"unicode/utf8"
)

// BuildRecommendationPrompt embeds the post text in the instruction and pins the
// output format to a JSON array of {aspect, suggestion} objects. Text longer than
// maxChars runes is cut (0 = no limit).
func BuildRecommendationPrompt(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	truncated := false
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		text = string([]rune(text)[:maxChars])
		truncated = true
	}

	parts := []string{
		"You are a social media engagement advisor.",
		"Analyze the following social media post content and provide concise suggestions to improve engagement.",
		"Focus on caption length, hashtags, tone, multimedia suggestions and posting time.",
		"",
		"Post content:",
		text,
	}
	if truncated {
		parts = append(parts, "…(truncated)")
	}
	parts = append(parts,
		"",
		`Return ONLY a JSON array. Each element MUST be an object with exactly two string fields: "aspect" (a short label such as "Hashtags") and "suggestion" (one or two sentences).`,
		"Do not wrap the JSON in markdown code fences and do not add any text before or after it.",
	)
	return strings.Join(parts, "\n")
}
