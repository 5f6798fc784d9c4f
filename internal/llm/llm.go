// Package llm defines the provider interface and implementations for
// external language model interaction.
package llm

import "context"

// Settings configures a single model request.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// System is a fixed system instruction sent alongside the prompt.
	System string
	// JSONResponse asks the provider to return a JSON-formatted reply
	// where the API supports such a hint.
	JSONResponse bool
}

// Provider generates text from a prompt using an external model.
type Provider interface {
	Generate(ctx context.Context, prompt string, settings Settings) (string, error)
	Name() string
}
