// Package checklist reconciles freshly suggested content with the
// suggestions a user has already implemented.
package checklist

import (
	"crypto/sha256"
	"strings"

	"github.com/google/uuid"
	"github.com/reasonforge/reasonforge/internal/domain"
)

// contentKey produces the identity hash used to recognize the same
// suggestion across independent analysis passes. Matching is
// case-insensitive and ignores whitespace differences, so a trivially
// reworded suggestion is still recognized as already implemented.
func contentKey(content string) [32]byte {
	normalized := strings.ToLower(strings.Join(strings.Fields(content), " "))
	return sha256.Sum256([]byte(normalized))
}

// Merge combines the previous checklist with freshly suggested items.
// Implemented items are kept unchanged in their original order. Fresh
// suggestions whose content matches an implemented item are discarded
// rather than re-offered; the rest are appended in provider order with
// newly generated ids. Pending items that do not reappear in the fresh
// list are dropped: the merge has no memory of pending items beyond what
// the latest result contains.
func Merge(previous []domain.ChecklistItem, fresh []domain.Suggestion) []domain.ChecklistItem {
	implemented := make([]domain.ChecklistItem, 0, len(previous))
	done := make(map[[32]byte]bool, len(previous))
	for _, item := range previous {
		if !item.Implemented {
			continue
		}
		implemented = append(implemented, item)
		done[contentKey(item.Content)] = true
	}

	merged := implemented
	for _, s := range fresh {
		if done[contentKey(s.Content)] {
			continue
		}
		merged = append(merged, domain.ChecklistItem{
			ID:      uuid.NewString(),
			Type:    s.Type,
			Content: s.Content,
		})
	}
	return merged
}

// Toggle flips the implemented flag on the item with the given id.
// Returns false if no item matches.
func Toggle(items []domain.ChecklistItem, id string) bool {
	for i := range items {
		if items[i].ID == id {
			items[i].Implemented = !items[i].Implemented
			return true
		}
	}
	return false
}
