package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reasonforge/reasonforge/internal/domain"
	"github.com/reasonforge/reasonforge/internal/llm"
)

// Fixed request parameters. Temperature and output size are not
// caller-configurable.
const (
	requestTemperature = 0.3
	analysisMaxTokens  = 2048
	suggestMaxTokens   = 512
)

// fallbackSuggestion replaces an empty or fully stripped block
// suggestion so callers always receive usable content.
const fallbackSuggestion = "Consider adding a statement that directly supports your conclusion."

// Orchestrator runs the analysis pipeline: sanitize, request, normalize.
// Every successful provider reply yields a schema-valid result; callers
// never re-validate.
type Orchestrator struct {
	provider llm.Provider
}

// NewOrchestrator creates an Orchestrator over the given provider.
func NewOrchestrator(provider llm.Provider) *Orchestrator {
	return &Orchestrator{provider: provider}
}

// Analyze runs one full analysis. It returns ErrInsufficientInput if the
// sanitized request is too small and ErrProvider on transport failure;
// any malformed response text is absorbed into a schema-valid result.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) (*domain.AnalysisResult, error) {
	return o.AnalyzeStream(ctx, req, nil)
}

// AnalyzeStream is Analyze with a progress observer. notify may be nil;
// it is called synchronously with each pipeline stage.
func (o *Orchestrator) AnalyzeStream(ctx context.Context, req Request, notify func(Stage)) (*domain.AnalysisResult, error) {
	observe := func(s Stage) {
		if notify != nil {
			notify(s)
		}
	}

	observe(StageSanitizing)
	prepared, err := Prepare(req)
	if err != nil {
		return nil, err
	}

	observe(StageRequesting)
	raw, err := o.provider.Generate(ctx, buildAnalysisPrompt(prepared), llm.Settings{
		Temperature:  requestTemperature,
		MaxTokens:    analysisMaxTokens,
		System:       systemInstruction,
		JSONResponse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	observe(StageParsing)
	result, repaired := Normalize(raw)
	if repaired {
		slog.Warn("analysis response required repair", "provider", o.provider.Name(), "response_bytes", len(raw))
		observe(StageRepaired)
	} else {
		observe(StageValidated)
	}
	return result, nil
}

// SuggestBlock asks the model for the content of one new block of the
// given type. At least one non-empty block of context is required. The
// reply is passed through the same sanitizer as user content.
func (o *Orchestrator) SuggestBlock(ctx context.Context, req Request, blockType domain.BlockType) (string, error) {
	prepared, err := PrepareSuggest(req)
	if err != nil {
		return "", err
	}

	raw, err := o.provider.Generate(ctx, buildSuggestPrompt(prepared, blockType), llm.Settings{
		Temperature: requestTemperature,
		MaxTokens:   suggestMaxTokens,
		System:      systemInstruction,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}

	content := sanitizeContent(stripCodeFence(raw))
	if content == "" {
		slog.Warn("suggestion response was empty after sanitization", "provider", o.provider.Name())
		content = fallbackSuggestion
	}
	return content, nil
}
