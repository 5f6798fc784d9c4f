package llm

import "context"

// MockProvider is a test double that returns canned responses.
type MockProvider struct {
	Response string
	Err      error
	// LastPrompt records the most recent prompt for assertions.
	LastPrompt string
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, prompt string, _ Settings) (string, error) {
	m.LastPrompt = prompt
	return m.Response, m.Err
}
