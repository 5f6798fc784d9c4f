// Package api provides HTTP handlers for the ReasonForge API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reasonforge/reasonforge/internal/analysis"
	"github.com/reasonforge/reasonforge/internal/credit"
	"github.com/reasonforge/reasonforge/internal/store"
	"github.com/reasonforge/reasonforge/internal/tier"
)

// Handler provides the HTTP surface over the store, ledger, and
// orchestrator.
type Handler struct {
	repo   store.Repository
	ledger *credit.Ledger
	orch   *analysis.Orchestrator // nil when no model provider is configured
	tiers  *tier.Catalog
}

// NewHandler creates a new Handler with common dependencies. orch may be
// nil, in which case the paid endpoints respond 503.
func NewHandler(repo store.Repository, ledger *credit.Ledger, orch *analysis.Orchestrator, tiers *tier.Catalog) *Handler {
	return &Handler{
		repo:   repo,
		ledger: ledger,
		orch:   orch,
		tiers:  tiers,
	}
}

// RegisterRoutes mounts all API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/credits", h.handleGetCredits)
		r.Post("/billing/upgrade", h.handleUpgradeTier)

		r.Route("/arguments", func(r chi.Router) {
			r.Post("/", h.handleCreateArgument)
			r.Get("/", h.handleListArguments)

			r.Route("/{argumentID}", func(r chi.Router) {
				r.Get("/", h.handleGetArgument)
				r.Post("/blocks", h.handleCreateBlock)
				r.Put("/blocks/{blockID}", h.handleUpdateBlock)
				r.Delete("/blocks/{blockID}", h.handleDeleteBlock)
				r.Post("/analyze", h.handleAnalyze)
				r.Post("/suggest", h.handleSuggest)
				r.Get("/checklist", h.handleGetChecklist)
				r.Post("/checklist/{itemID}/toggle", h.handleToggleChecklist)
			})
		})
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
