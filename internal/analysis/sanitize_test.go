package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/reasonforge/reasonforge/internal/domain"
)

func TestSanitizeContentAllowList(t *testing.T) {
	got := sanitizeContent(`Remote work <b>boosts</b> productivity; see "Bloom, 2015" (Stanford)!`)
	want := `Remote work bboostsb productivity; see "Bloom, 2015" (Stanford)!`
	if got != want {
		t.Errorf("sanitizeContent = %q, want %q", got, want)
	}
}

func TestSanitizeContentStripsControlAndSymbols(t *testing.T) {
	got := sanitizeContent("a\x00b{}|`$#@c")
	if got != "abc" {
		t.Errorf("sanitizeContent = %q, want abc", got)
	}
}

func TestSanitizeContentTruncates(t *testing.T) {
	got := sanitizeContent(strings.Repeat("a", 1500))
	if len(got) != 1000 {
		t.Errorf("len = %d, want 1000", len(got))
	}
}

func TestPrepareDropsEmptyBlocks(t *testing.T) {
	req := Request{Blocks: []BlockInput{
		{Type: domain.BlockPremise, Content: "Fewer interruptions at home"},
		{Type: domain.BlockEvidence, Content: "   \t  "},
		{Type: domain.BlockEvidence, Content: "<<<>>>"},
		{Type: domain.BlockConclusion, Content: "Remote work is productive"},
	}}

	prepared, err := Prepare(req)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if len(prepared.Blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(prepared.Blocks))
	}
	if prepared.Blocks[0].Type != domain.BlockPremise || prepared.Blocks[1].Type != domain.BlockConclusion {
		t.Errorf("Block order changed: %+v", prepared.Blocks)
	}
}

func TestPrepareSingleBlockIsInsufficient(t *testing.T) {
	req := Request{Blocks: []BlockInput{
		{Type: domain.BlockPremise, Content: "Only one non-empty block"},
		{Type: domain.BlockEvidence, Content: ""},
	}}

	_, err := Prepare(req)
	if !errors.Is(err, ErrInsufficientInput) {
		t.Errorf("Expected ErrInsufficientInput, got %v", err)
	}
}

func TestPrepareSanitizesInstructions(t *testing.T) {
	req := Request{
		Blocks: []BlockInput{
			{Type: domain.BlockPremise, Content: "p"},
			{Type: domain.BlockConclusion, Content: "c"},
		},
		Instructions: "focus on <script>fallacies</script>: " + strings.Repeat("x", 1200),
	}

	prepared, err := Prepare(req)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(prepared.Instructions, "<") {
		t.Error("Instructions not sanitized")
	}
	if len(prepared.Instructions) > 1000 {
		t.Errorf("Instructions len = %d, want <= 1000", len(prepared.Instructions))
	}
}
