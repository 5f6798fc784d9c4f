package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/reasonforge/reasonforge/internal/identity"
)

type creditsResponse struct {
	Tier              string `json:"tier"`
	BasicRemaining    int    `json:"basic_remaining"`
	AdvancedRemaining int    `json:"advanced_remaining"`
	MaxBasic          int    `json:"max_basic"`
	MaxAdvanced       int    `json:"max_advanced"`
	IsAdmin           bool   `json:"is_admin"`
}

func (h *Handler) handleGetCredits(w http.ResponseWriter, r *http.Request) {
	acct := identity.AccountFromContext(r.Context())
	if acct == nil {
		Error(w, http.StatusUnauthorized, "no account")
		return
	}

	resp := creditsResponse{
		Tier:              string(acct.Tier),
		BasicRemaining:    acct.BasicRemaining,
		AdvancedRemaining: acct.AdvancedRemaining,
		IsAdmin:           acct.IsAdmin,
	}
	if def, ok := h.tiers.Lookup(string(acct.Tier)); ok {
		resp.MaxBasic = def.MaxBasic
		resp.MaxAdvanced = def.MaxAdvanced
	}

	JSON(w, http.StatusOK, resp)
}

type upgradeRequest struct {
	TierID string `json:"tier_id"`
}

// handleUpgradeTier applies a tier upgrade after an external payment
// confirmation. The payment itself is not validated here.
func (h *Handler) handleUpgradeTier(w http.ResponseWriter, r *http.Request) {
	acct := identity.AccountFromContext(r.Context())
	if acct == nil {
		Error(w, http.StatusUnauthorized, "no account")
		return
	}

	var req upgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.ledger.UpgradeTier(r.Context(), acct, req.TierID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to upgrade tier")
		return
	}
	if !ok {
		Error(w, http.StatusBadRequest, "unknown tier")
		return
	}

	slog.Info("tier upgraded", "account_id", acct.ID, "tier", req.TierID)
	JSON(w, http.StatusOK, acct)
}
