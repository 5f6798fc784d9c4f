package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/reasonforge/reasonforge/internal/domain"
)

// checkSchema asserts the invariants every normalized result must satisfy.
func checkSchema(t *testing.T, r *domain.AnalysisResult) {
	t.Helper()
	if r.Strength < 0 || r.Strength > 100 {
		t.Errorf("Strength = %d, want [0,100]", r.Strength)
	}
	if !gradePattern.MatchString(r.Grade) {
		t.Errorf("Grade = %q, want ^[A-F][+-]?$", r.Grade)
	}
	if len(r.Feedback) > 1000 {
		t.Errorf("Feedback length = %d, want <= 1000", len(r.Feedback))
	}
	if r.Fallacies == nil {
		t.Error("Fallacies is nil")
	}
	if r.Suggestions == nil {
		t.Error("Suggestions is nil")
	}
	for i, f := range r.Fallacies {
		if f.Type == "" && f.Description == "" {
			t.Errorf("Fallacies[%d] is empty", i)
		}
	}
	for i, s := range r.Suggestions {
		if s.Type == "" {
			t.Errorf("Suggestions[%d] has empty type", i)
		}
	}
}

func TestNormalizeWellFormed(t *testing.T) {
	raw := `{
		"strength": 82,
		"grade": "B+",
		"feedback": "Solid premises, weak rebuttal.",
		"fallacies": [{"type": "straw man", "description": "Misstates the objection.", "block_excerpt": "nobody believes"}],
		"suggestions": [{"type": "rebuttal", "content": "Address the cost objection directly."}]
	}`

	result, repaired := Normalize(raw)
	checkSchema(t, result)
	if repaired {
		t.Error("Well-formed input should not be marked repaired")
	}
	if result.Strength != 82 || result.Grade != "B+" {
		t.Errorf("Got %d/%s, want 82/B+", result.Strength, result.Grade)
	}
	if len(result.Fallacies) != 1 || result.Fallacies[0].BlockExcerpt != "nobody believes" {
		t.Errorf("Fallacies = %+v", result.Fallacies)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0].Type != "rebuttal" {
		t.Errorf("Suggestions = %+v", result.Suggestions)
	}
}

func TestNormalizeStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"strength\": 50, \"grade\": \"C\", \"feedback\": \"ok\", \"fallacies\": [], \"suggestions\": []}\n```"

	result, repaired := Normalize(raw)
	checkSchema(t, result)
	if repaired {
		t.Error("Fenced but valid input should not be marked repaired")
	}
	if result.Strength != 50 {
		t.Errorf("Strength = %d, want 50", result.Strength)
	}
}

func TestNormalizeMalformedFallsBack(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"non-json":       "I think your argument is quite good overall!",
		"truncated":      `{"strength": 70, "grade": "B", "feedb`,
		"array":          `[1, 2, 3]`,
		"missing keys":   `{"strength": 70, "grade": "B"}`,
		"missing single": `{"strength": 70, "grade": "B", "feedback": "x", "fallacies": []}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			result, repaired := Normalize(raw)
			checkSchema(t, result)
			if !repaired {
				t.Error("Malformed input should be marked repaired")
			}
			if result.Strength != 0 || result.Grade != "F" {
				t.Errorf("Fallback = %d/%s, want 0/F", result.Strength, result.Grade)
			}
			if result.Feedback == "" {
				t.Error("Fallback feedback is empty")
			}
			if len(result.Fallacies) != 0 || len(result.Suggestions) != 0 {
				t.Error("Fallback lists should be empty")
			}
		})
	}
}

func TestNormalizeCoercesWrongTypes(t *testing.T) {
	// Out-of-range strength, invalid grade, non-array fallacies, and a
	// bare-string suggestions field all repair in one pass.
	raw := "```json\n" + `{"strength":150,"grade":"Z","feedback":"","fallacies":"x","suggestions":"improve premise 1"}` + "\n```"

	result, repaired := Normalize(raw)
	checkSchema(t, result)
	if !repaired {
		t.Error("Coerced input should be marked repaired")
	}
	if result.Strength != 100 {
		t.Errorf("Strength = %d, want 100 (clamped)", result.Strength)
	}
	if result.Grade != "C" {
		t.Errorf("Grade = %q, want C", result.Grade)
	}
	if len(result.Fallacies) != 0 {
		t.Errorf("Fallacies = %+v, want empty", result.Fallacies)
	}
	if len(result.Suggestions) != 1 {
		t.Fatalf("Suggestions = %+v, want 1 entry", result.Suggestions)
	}
	if result.Suggestions[0].Type != "premise" || result.Suggestions[0].Content != "improve premise 1" {
		t.Errorf("Suggestion = %+v", result.Suggestions[0])
	}
}

func TestNormalizeStrengthCoercion(t *testing.T) {
	cases := []struct {
		value string
		want  int
	}{
		{`-5`, 0},
		{`0`, 0},
		{`100`, 100},
		{`150`, 100},
		{`1e308`, 100},
		{`-1e308`, 0},
		{`61.4`, 61},
		{`"72"`, 72},
		{`"seventy"`, 0},
		{`null`, 0},
		{`true`, 0},
		{`[50]`, 0},
	}

	for _, tc := range cases {
		raw := fmt.Sprintf(`{"strength": %s, "grade": "B", "feedback": "x", "fallacies": [], "suggestions": []}`, tc.value)
		result, _ := Normalize(raw)
		checkSchema(t, result)
		if result.Strength != tc.want {
			t.Errorf("strength %s -> %d, want %d", tc.value, result.Strength, tc.want)
		}
	}
}

func TestNormalizeGradeValidation(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{`"A+"`, "A+"},
		{`"F"`, "F"},
		{`"C-"`, "C-"},
		{`"Z"`, "C"},
		{`"AA"`, "C"},
		{`"a+"`, "C"},
		{`42`, "C"},
		{`null`, "C"},
	}

	for _, tc := range cases {
		raw := fmt.Sprintf(`{"strength": 50, "grade": %s, "feedback": "x", "fallacies": [], "suggestions": []}`, tc.value)
		result, _ := Normalize(raw)
		checkSchema(t, result)
		if result.Grade != tc.want {
			t.Errorf("grade %s -> %q, want %q", tc.value, result.Grade, tc.want)
		}
	}
}

func TestNormalizeFeedbackTruncation(t *testing.T) {
	long := strings.Repeat("f", 1800)
	raw := fmt.Sprintf(`{"strength": 50, "grade": "B", "feedback": %q, "fallacies": [], "suggestions": []}`, long)

	result, repaired := Normalize(raw)
	checkSchema(t, result)
	if !repaired {
		t.Error("Truncation should mark the result repaired")
	}
	if len(result.Feedback) != 1000 {
		t.Errorf("Feedback length = %d, want 1000", len(result.Feedback))
	}
}

func TestNormalizeDropsMalformedEntries(t *testing.T) {
	raw := `{
		"strength": 40,
		"grade": "D",
		"feedback": "weak",
		"fallacies": [
			{"type": "ad hominem", "description": "Attacks the person."},
			{"type": 7, "description": "bad type"},
			{"description": "no type"},
			"bare string",
			{"type": "hasty generalization", "description": 9}
		],
		"suggestions": [
			{"type": "evidence", "content": "Add a citation."},
			{"content": "untyped suggestion"},
			{"type": "evidence"},
			{"type": 3, "content": "numeric type"},
			17
		]
	}`

	result, repaired := Normalize(raw)
	checkSchema(t, result)
	if !repaired {
		t.Error("Entry repair should mark the result repaired")
	}
	if len(result.Fallacies) != 1 {
		t.Errorf("Fallacies = %+v, want 1 well-formed entry", result.Fallacies)
	}
	// Untyped and numerically typed suggestions default to premise; the
	// content-less one is dropped.
	if len(result.Suggestions) != 3 {
		t.Fatalf("Suggestions = %+v, want 3 entries", result.Suggestions)
	}
	if result.Suggestions[1].Type != "premise" || result.Suggestions[1].Content != "untyped suggestion" {
		t.Errorf("Suggestions[1] = %+v", result.Suggestions[1])
	}
	if result.Suggestions[2].Type != "premise" || result.Suggestions[2].Content != "numeric type" {
		t.Errorf("Suggestions[2] = %+v", result.Suggestions[2])
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  ```json\n{\"a\":1}\n```  ", "{\"a\":1}"},
	}
	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
