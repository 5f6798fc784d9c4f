package checklist

import (
	"testing"

	"github.com/reasonforge/reasonforge/internal/domain"
)

// shape strips ids for comparison; Merge generates fresh ids for new
// items, so equality is defined over (type, content, implemented).
func shape(items []domain.ChecklistItem) []domain.ChecklistItem {
	out := make([]domain.ChecklistItem, len(items))
	for i, item := range items {
		out[i] = domain.ChecklistItem{Type: item.Type, Content: item.Content, Implemented: item.Implemented}
	}
	return out
}

func equalShapes(a, b []domain.ChecklistItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMergeDiscardsImplementedDuplicates(t *testing.T) {
	previous := []domain.ChecklistItem{
		{ID: "prev-1", Type: "evidence", Content: "Add more evidence", Implemented: true},
	}
	fresh := []domain.Suggestion{
		{Type: "evidence", Content: "Add more evidence"},
		{Type: "rebuttal", Content: "Consider a rebuttal"},
	}

	merged := Merge(previous, fresh)
	if len(merged) != 2 {
		t.Fatalf("Merged length = %d, want 2", len(merged))
	}
	if merged[0].Content != "Add more evidence" || !merged[0].Implemented {
		t.Errorf("merged[0] = %+v, want implemented original", merged[0])
	}
	if merged[0].ID != "prev-1" {
		t.Error("Implemented item must keep its id")
	}
	if merged[1].Content != "Consider a rebuttal" || merged[1].Implemented {
		t.Errorf("merged[1] = %+v, want fresh pending item", merged[1])
	}
	if merged[1].ID == "" {
		t.Error("Fresh item must get a generated id")
	}
}

func TestMergeMatchingIgnoresCaseAndWhitespace(t *testing.T) {
	previous := []domain.ChecklistItem{
		{ID: "prev-1", Type: "evidence", Content: "Add more evidence", Implemented: true},
	}
	fresh := []domain.Suggestion{
		{Type: "evidence", Content: "  add   MORE evidence "},
	}

	merged := Merge(previous, fresh)
	if len(merged) != 1 {
		t.Errorf("Reworded duplicate was re-offered: %+v", merged)
	}
}

func TestMergeDropsStalePending(t *testing.T) {
	previous := []domain.ChecklistItem{
		{ID: "prev-1", Type: "premise", Content: "Old pending suggestion"},
		{ID: "prev-2", Type: "evidence", Content: "Done already", Implemented: true},
	}
	fresh := []domain.Suggestion{
		{Type: "rebuttal", Content: "Brand new"},
	}

	merged := Merge(previous, fresh)
	if len(merged) != 2 {
		t.Fatalf("Merged length = %d, want 2", len(merged))
	}
	for _, item := range merged {
		if item.Content == "Old pending suggestion" {
			t.Error("Pending item that did not reappear must be dropped")
		}
	}
}

func TestMergePreservesOrder(t *testing.T) {
	previous := []domain.ChecklistItem{
		{ID: "a", Type: "premise", Content: "First done", Implemented: true},
		{ID: "b", Type: "premise", Content: "Second done", Implemented: true},
	}
	fresh := []domain.Suggestion{
		{Type: "evidence", Content: "New one"},
		{Type: "rebuttal", Content: "New two"},
	}

	merged := Merge(previous, fresh)
	want := []string{"First done", "Second done", "New one", "New two"}
	if len(merged) != len(want) {
		t.Fatalf("Merged length = %d, want %d", len(merged), len(want))
	}
	for i, content := range want {
		if merged[i].Content != content {
			t.Errorf("merged[%d].Content = %q, want %q", i, merged[i].Content, content)
		}
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	previous := []domain.ChecklistItem{
		{ID: "prev-1", Type: "evidence", Content: "Add more evidence", Implemented: true},
		{ID: "prev-2", Type: "premise", Content: "Pending thing"},
	}
	fresh := []domain.Suggestion{
		{Type: "evidence", Content: "Add more evidence"},
		{Type: "rebuttal", Content: "Consider a rebuttal"},
	}

	once := Merge(previous, fresh)
	twice := Merge(once, fresh)
	if !equalShapes(shape(once), shape(twice)) {
		t.Errorf("Merge not idempotent:\nonce:  %+v\ntwice: %+v", shape(once), shape(twice))
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	if merged := Merge(nil, nil); len(merged) != 0 {
		t.Errorf("Merge(nil, nil) = %+v, want empty", merged)
	}

	fresh := []domain.Suggestion{{Type: "premise", Content: "Something"}}
	merged := Merge(nil, fresh)
	if len(merged) != 1 || merged[0].Implemented {
		t.Errorf("Merge(nil, fresh) = %+v", merged)
	}
}

func TestToggle(t *testing.T) {
	items := []domain.ChecklistItem{
		{ID: "a", Type: "premise", Content: "One"},
		{ID: "b", Type: "evidence", Content: "Two"},
	}

	if !Toggle(items, "b") {
		t.Fatal("Toggle returned false for existing id")
	}
	if !items[1].Implemented {
		t.Error("Item b not flipped on")
	}

	if !Toggle(items, "b") {
		t.Fatal("Second toggle failed")
	}
	if items[1].Implemented {
		t.Error("Item b not flipped back off")
	}

	if Toggle(items, "zzz") {
		t.Error("Toggle returned true for missing id")
	}
}
