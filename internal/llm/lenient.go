package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// wrapper keys models like to put the list under
var listKeys = []string{"recommendations", "suggestions", "items", "data"}

// SanitizeRecommendations repairs near-miss shapes so a strict re-validation can pass:
//   - unwraps {"recommendations": [...]}-style objects
//   - turns bare string items into {"aspect":"General","suggestion":...}
//   - renames known synonyms (title/category -> aspect, recommendation/text/tip -> suggestion)
//   - drops unknown keys, trims strings, drops items with an empty suggestion
//
// It only rewrites valid JSON; anything else is returned as an error.
func SanitizeRecommendations(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var changes []string
	if obj, ok := doc.(map[string]any); ok {
		for _, k := range listKeys {
			if v, ok := obj[k].([]any); ok {
				doc = v
				changes = append(changes, "unwrap("+k+")")
				break
			}
		}
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, changes, fmt.Errorf("sanitize: top-level value is %T, not a list", doc)
	}

	out := make([]map[string]string, 0, len(list))
	for i, item := range list {
		switch t := item.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, map[string]string{"aspect": "General", "suggestion": s})
				changes = append(changes, fmt.Sprintf("[%d](string)", i))
			}
		case map[string]any:
			aspect := firstString(t, "aspect", "title", "category", "area", "topic")
			suggestion := firstString(t, "suggestion", "recommendation", "text", "tip", "advice", "description")
			if suggestion == "" {
				changes = append(changes, fmt.Sprintf("[%d](empty)", i))
				continue
			}
			if aspect == "" {
				aspect = "General"
			}
			if len(t) != 2 || t["aspect"] == nil || t["suggestion"] == nil {
				changes = append(changes, fmt.Sprintf("[%d](renamed)", i))
			}
			out = append(out, map[string]string{"aspect": aspect, "suggestion": suggestion})
		default:
			changes = append(changes, fmt.Sprintf("[%d](type)", i))
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, changes, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changes) > 0 {
		logger.Warn("llm.normalize.sanitize", "changes", changes)
	}
	return b, changes, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64, bool:
			return fmt.Sprint(v)
		}
	}
	return ""
}
