package analysis

import (
	"fmt"
	"strings"

	"github.com/reasonforge/reasonforge/internal/domain"
)

// systemInstruction is the fixed system message sent with every request.
const systemInstruction = `You are an argument analysis assistant for a structured reasoning tool. You evaluate arguments for logical soundness and respond only in the requested format.`

// buildAnalysisPrompt assembles the full-analysis prompt. The output is
// deterministic for a given sanitized request.
func buildAnalysisPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Analyze the following structured argument. Each line is one block in the form \"type: content\".\n\n")

	for _, blk := range req.Blocks {
		fmt.Fprintf(&b, "%s: %s\n", blk.Type, blk.Content)
	}
	b.WriteString("\n")

	if req.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions from the author: %s\n\n", req.Instructions)
	}

	b.WriteString(`## Rules

1. Never fabricate sources. Cite only verifiable sources, in "Author, Year" form.
2. Identify logical fallacies by name and explain each one briefly.
3. Suggest concrete blocks the author could add, each typed as premise, conclusion, evidence, objection, or rebuttal.
4. Grade the argument from A+ (airtight) to F (unsound) and rate its strength from 0 to 100.
5. Keep the feedback under 1000 characters.

`)

	b.WriteString(`Reply with a single JSON object with exactly the keys fallacies, suggestions, strength, grade, feedback:

{
  "fallacies": [{"type": string, "description": string, "block_excerpt": string}],
  "suggestions": [{"type": string, "content": string}],
  "strength": integer (0-100),
  "grade": "A+" through "F",
  "feedback": string
}
`)

	return b.String()
}

// buildSuggestPrompt assembles the prompt for a single block suggestion.
func buildSuggestPrompt(req Request, blockType domain.BlockType) string {
	var b strings.Builder

	b.WriteString("Here is a structured argument in progress. Each line is one block in the form \"type: content\".\n\n")

	for _, blk := range req.Blocks {
		fmt.Fprintf(&b, "%s: %s\n", blk.Type, blk.Content)
	}
	b.WriteString("\n")

	if req.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions from the author: %s\n\n", req.Instructions)
	}

	fmt.Fprintf(&b, "Write the content for one new %s block that strengthens this argument. Never fabricate sources; cite only verifiable sources in \"Author, Year\" form. Reply with the block content only, as plain text with no preamble.\n", blockType)

	return b.String()
}
