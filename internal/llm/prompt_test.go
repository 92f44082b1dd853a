package llm

import (
	"strings"
	"testing"
)

func TestBuildRecommendationPrompt(t *testing.T) {
	p := BuildRecommendationPrompt("  Sunset at the beach #travel  ", 0)
	for _, want := range []string{
		"Sunset at the beach #travel",
		"caption length",
		"hashtags",
		"posting time",
		"JSON array",
		`"aspect"`,
		`"suggestion"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "(truncated)") {
		t.Error("short text must not be marked truncated")
	}
}

func TestBuildRecommendationPromptTruncates(t *testing.T) {
	text := strings.Repeat("é", 50)
	p := BuildRecommendationPrompt(text, 10)
	if !strings.Contains(p, strings.Repeat("é", 10)+"\n…(truncated)") {
		t.Fatalf("prompt not truncated on rune boundary:\n%s", p)
	}
	if strings.Contains(p, strings.Repeat("é", 11)) {
		t.Fatal("prompt kept more than maxChars runes")
	}
}
