package domain

// Fallacy is a single logical flaw identified by an analysis.
type Fallacy struct {
	Type         string `json:"type"`
	Description  string `json:"description"`
	BlockExcerpt string `json:"block_excerpt,omitempty"`
}

// Suggestion is a proposed block surfaced by an analysis.
type Suggestion struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// AnalysisResult is the normalized output of one analysis request.
// Every instance satisfies the full schema: Strength in [0,100], Grade
// matching ^[A-F][+-]?$, Feedback at most 1000 characters, and both
// lists populated with well-formed entries only.
type AnalysisResult struct {
	Strength    int          `json:"strength"`
	Grade       string       `json:"grade"`
	Feedback    string       `json:"feedback"`
	Fallacies   []Fallacy    `json:"fallacies"`
	Suggestions []Suggestion `json:"suggestions"`
}

// ChecklistItem tracks whether a suggested block has been implemented.
type ChecklistItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Implemented bool   `json:"implemented"`
}
