package analysis

import (
	"strings"
	"unicode"
)

const (
	// maxContentLen caps each block's content and the custom instructions.
	maxContentLen = 1000

	// allowedPunct is the fixed punctuation allow-list. Everything outside
	// letters, digits, whitespace, and this set is stripped before the
	// content is embedded in a prompt.
	allowedPunct = `.,!?;:'"()-`

	// minBlocks is the minimum number of non-empty sanitized blocks.
	minBlocks = 2
)

// sanitizeContent applies the allow-list character filter, trims, and
// truncates to maxContentLen.
func sanitizeContent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune(allowedPunct, r) {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if runes := []rune(out); len(runes) > maxContentLen {
		out = strings.TrimSpace(string(runes[:maxContentLen]))
	}
	return out
}

func sanitizeRequest(req Request) Request {
	out := Request{Instructions: sanitizeContent(req.Instructions)}
	for _, b := range req.Blocks {
		content := sanitizeContent(b.Content)
		if content == "" {
			continue
		}
		out.Blocks = append(out.Blocks, BlockInput{Type: b.Type, Content: content})
	}
	return out
}

// Prepare sanitizes a request: each block is filtered, trimmed, and
// truncated, blocks left empty are dropped, and instructions get the same
// treatment. Returns ErrInsufficientInput if fewer than two blocks
// survive. Callers gate credit consumption on this check so an invalid
// request never spends a credit.
func Prepare(req Request) (Request, error) {
	out := sanitizeRequest(req)
	if len(out.Blocks) < minBlocks {
		return Request{}, ErrInsufficientInput
	}
	return out, nil
}

// PrepareSuggest is the single-block variant of Prepare used for block
// suggestions, which only need one non-empty block of context.
func PrepareSuggest(req Request) (Request, error) {
	out := sanitizeRequest(req)
	if len(out.Blocks) == 0 {
		return Request{}, ErrInsufficientInput
	}
	return out, nil
}
