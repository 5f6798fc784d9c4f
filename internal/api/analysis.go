package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reasonforge/reasonforge/internal/analysis"
	"github.com/reasonforge/reasonforge/internal/checklist"
	"github.com/reasonforge/reasonforge/internal/domain"
	"github.com/reasonforge/reasonforge/internal/identity"
)

type analyzeRequest struct {
	Instructions string `json:"instructions,omitempty"`
}

type analyzeResponse struct {
	Result    *domain.AnalysisResult `json:"result"`
	Checklist []domain.ChecklistItem `json:"checklist"`
}

// analysisInput converts an argument's blocks into an orchestrator request.
func analysisInput(arg *domain.Argument, instructions string) analysis.Request {
	req := analysis.Request{Instructions: instructions}
	for _, b := range arg.Blocks {
		req.Blocks = append(req.Blocks, analysis.BlockInput{Type: b.Type, Content: b.Content})
	}
	return req
}

// handleAnalyze runs a full analysis of an argument. Sequencing matters:
// input is pre-checked before the advanced credit is consumed, so an
// undersized argument never wastes a credit; a provider failure after
// the spend is surfaced without a refund.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	arg := h.ownedArgument(w, r)
	if arg == nil {
		return
	}
	if h.orch == nil {
		Error(w, http.StatusServiceUnavailable, "analysis is not available")
		return
	}

	var req analyzeRequest
	if r.Body != nil {
		// The body is optional; instructions default to empty.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	input := analysisInput(arg, req.Instructions)
	if _, err := analysis.Prepare(input); err != nil {
		Error(w, http.StatusBadRequest, "argument needs at least two non-empty blocks")
		return
	}

	acct := identity.AccountFromContext(r.Context())
	ok, err := h.ledger.Consume(r.Context(), acct, domain.CreditAdvanced)
	if err != nil || !ok {
		// Store failures deny the credit rather than granting usage.
		Error(w, http.StatusPaymentRequired, "no advanced credits remaining")
		return
	}

	result, err := h.orch.Analyze(r.Context(), input)
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientInput) {
			Error(w, http.StatusBadRequest, "argument needs at least two non-empty blocks")
			return
		}
		Error(w, http.StatusBadGateway, "analysis provider is unavailable")
		return
	}

	previous, err := h.repo.GetChecklist(r.Context(), arg.ID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load checklist")
		return
	}
	merged := checklist.Merge(previous, result.Suggestions)
	if err := h.repo.ReplaceChecklist(r.Context(), arg.ID, merged); err != nil {
		Error(w, http.StatusInternalServerError, "failed to save checklist")
		return
	}

	JSON(w, http.StatusOK, analyzeResponse{Result: result, Checklist: merged})
}

type suggestRequest struct {
	Type         domain.BlockType `json:"type"`
	Instructions string           `json:"instructions,omitempty"`
}

type suggestResponse struct {
	Type        domain.BlockType `json:"type"`
	Content     string           `json:"content"`
	AIGenerated bool             `json:"ai_generated"`
}

// handleSuggest asks the model for one new block, gated by a basic credit.
func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	arg := h.ownedArgument(w, r)
	if arg == nil {
		return
	}
	if h.orch == nil {
		Error(w, http.StatusServiceUnavailable, "analysis is not available")
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		Error(w, http.StatusBadRequest, "unknown block type")
		return
	}

	input := analysisInput(arg, req.Instructions)
	if _, err := analysis.PrepareSuggest(input); err != nil {
		Error(w, http.StatusBadRequest, "argument has no usable content")
		return
	}

	acct := identity.AccountFromContext(r.Context())
	ok, err := h.ledger.Consume(r.Context(), acct, domain.CreditBasic)
	if err != nil || !ok {
		Error(w, http.StatusPaymentRequired, "no basic credits remaining")
		return
	}

	content, err := h.orch.SuggestBlock(r.Context(), input, req.Type)
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientInput) {
			Error(w, http.StatusBadRequest, "argument has no usable content")
			return
		}
		Error(w, http.StatusBadGateway, "analysis provider is unavailable")
		return
	}

	JSON(w, http.StatusOK, suggestResponse{Type: req.Type, Content: content, AIGenerated: true})
}

func (h *Handler) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	arg := h.ownedArgument(w, r)
	if arg == nil {
		return
	}

	items, err := h.repo.GetChecklist(r.Context(), arg.ID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load checklist")
		return
	}
	if items == nil {
		items = []domain.ChecklistItem{}
	}
	JSON(w, http.StatusOK, items)
}

func (h *Handler) handleToggleChecklist(w http.ResponseWriter, r *http.Request) {
	arg := h.ownedArgument(w, r)
	if arg == nil {
		return
	}

	items, err := h.repo.GetChecklist(r.Context(), arg.ID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load checklist")
		return
	}

	itemID := chi.URLParam(r, "itemID")
	if !checklist.Toggle(items, itemID) {
		Error(w, http.StatusNotFound, "checklist item not found")
		return
	}
	if err := h.repo.ReplaceChecklist(r.Context(), arg.ID, items); err != nil {
		Error(w, http.StatusInternalServerError, "failed to save checklist")
		return
	}

	JSON(w, http.StatusOK, items)
}
