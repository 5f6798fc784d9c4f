package analysis

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/reasonforge/reasonforge/internal/domain"
)

const (
	defaultGrade = "C"

	// fallbackFeedback is returned when the provider reply cannot be
	// parsed at all.
	fallbackFeedback = "The analysis could not be completed because the model returned an unreadable response. Your argument was not graded this time; please try again."

	// defaultFeedback replaces a feedback field of the wrong type.
	defaultFeedback = "No written feedback was provided for this analysis."
)

var gradePattern = regexp.MustCompile(`^[A-F][+-]?$`)

var requiredKeys = []string{"fallacies", "suggestions", "strength", "grade", "feedback"}

// Normalize converts the raw provider reply into a schema-valid
// AnalysisResult. It never fails: an unparseable reply or one missing a
// required key degrades to a fixed fallback result, and individual
// malformed fields are coerced or dropped. The second return value
// reports whether any repair fired.
func Normalize(raw string) (*domain.AnalysisResult, bool) {
	text := stripCodeFence(raw)

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return fallbackResult(), true
	}
	for _, key := range requiredKeys {
		if _, ok := payload[key]; !ok {
			return fallbackResult(), true
		}
	}

	repaired := false
	result := &domain.AnalysisResult{
		Strength:    coerceStrength(payload["strength"], &repaired),
		Grade:       coerceGrade(payload["grade"], &repaired),
		Feedback:    coerceFeedback(payload["feedback"], &repaired),
		Fallacies:   coerceFallacies(payload["fallacies"], &repaired),
		Suggestions: coerceSuggestions(payload["suggestions"], &repaired),
	}
	return result, repaired
}

func fallbackResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Strength:    0,
		Grade:       "F",
		Feedback:    fallbackFeedback,
		Fallacies:   []domain.Fallacy{},
		Suggestions: []domain.Suggestion{},
	}
}

// stripCodeFence removes a Markdown code-fence wrapper, with or without a
// language tag, from around the reply text.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	} else {
		t = strings.TrimPrefix(t, "```")
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

func coerceStrength(v any, repaired *bool) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			*repaired = true
			return 0
		}
		*repaired = true
		f = parsed
	default:
		*repaired = true
		return 0
	}

	if f != math.Trunc(f) {
		*repaired = true
	}
	// Clamp before converting: a float beyond the int range would wrap
	// on conversion and clamp to the wrong end.
	if f < 0 {
		*repaired = true
		return 0
	}
	if f > 100 {
		*repaired = true
		return 100
	}
	return int(math.Round(f))
}

func coerceGrade(v any, repaired *bool) string {
	s, ok := v.(string)
	if !ok || !gradePattern.MatchString(strings.TrimSpace(s)) {
		*repaired = true
		return defaultGrade
	}
	return strings.TrimSpace(s)
}

func coerceFeedback(v any, repaired *bool) string {
	s, ok := v.(string)
	if !ok {
		*repaired = true
		return defaultFeedback
	}
	if runes := []rune(s); len(runes) > maxContentLen {
		*repaired = true
		return string(runes[:maxContentLen])
	}
	return s
}

func coerceFallacies(v any, repaired *bool) []domain.Fallacy {
	out := []domain.Fallacy{}
	arr, ok := v.([]any)
	if !ok {
		*repaired = true
		return out
	}
	for _, entry := range arr {
		obj, ok := entry.(map[string]any)
		if !ok {
			*repaired = true
			continue
		}
		ftype, okT := obj["type"].(string)
		desc, okD := obj["description"].(string)
		if !okT || !okD {
			*repaired = true
			continue
		}
		f := domain.Fallacy{Type: ftype, Description: desc}
		if excerpt, ok := obj["block_excerpt"].(string); ok {
			f.BlockExcerpt = excerpt
		}
		out = append(out, f)
	}
	return out
}

func coerceSuggestions(v any, repaired *bool) []domain.Suggestion {
	out := []domain.Suggestion{}
	switch arr := v.(type) {
	case []any:
		for _, entry := range arr {
			switch item := entry.(type) {
			case string:
				// Bare strings are wrapped as premise suggestions.
				*repaired = true
				out = append(out, domain.Suggestion{Type: string(domain.BlockPremise), Content: item})
			case map[string]any:
				content, ok := item["content"].(string)
				if !ok {
					*repaired = true
					continue
				}
				stype, ok := item["type"].(string)
				if !ok || stype == "" {
					*repaired = true
					stype = string(domain.BlockPremise)
				}
				out = append(out, domain.Suggestion{Type: stype, Content: content})
			default:
				*repaired = true
			}
		}
	case string:
		// A single bare string instead of an array.
		*repaired = true
		out = append(out, domain.Suggestion{Type: string(domain.BlockPremise), Content: arr})
	default:
		*repaired = true
	}
	return out
}
