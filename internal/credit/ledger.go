// Package credit enforces per-account consumable quotas.
package credit

import (
	"context"
	"errors"
	"fmt"

	"github.com/reasonforge/reasonforge/internal/domain"
	"github.com/reasonforge/reasonforge/internal/store"
	"github.com/reasonforge/reasonforge/internal/tier"
)

// ErrExhausted indicates the account has no remaining credits of the
// required kind. Callers must not invoke the paid operation.
var ErrExhausted = errors.New("credit exhausted")

// Ledger gates paid operations against per-account credit counters.
type Ledger struct {
	repo  store.Repository
	tiers *tier.Catalog
}

// NewLedger creates a Ledger backed by the given repository and tier catalog.
func NewLedger(repo store.Repository, tiers *tier.Catalog) *Ledger {
	return &Ledger{repo: repo, tiers: tiers}
}

// HasCredits reports whether the account can perform an operation of the
// given kind. Admins always can. This is a pure read on the account
// snapshot; Consume is the authoritative gate.
func (l *Ledger) HasCredits(acct *domain.Account, kind domain.CreditKind) bool {
	if acct.IsAdmin {
		return true
	}
	return acct.Remaining(kind) > 0
}

// Consume spends one credit of the given kind. Admin accounts are granted
// without any write. For everyone else the decrement is a single
// conditional update guarded by remaining > 0, so the counter can never
// go below zero even under concurrent requests. Returns ErrExhausted when
// the counter is already at zero. A store failure is treated as "no
// credit available" rather than silently granting usage.
func (l *Ledger) Consume(ctx context.Context, acct *domain.Account, kind domain.CreditKind) (bool, error) {
	if acct.IsAdmin {
		return true, nil
	}
	if !kind.Valid() {
		return false, fmt.Errorf("unknown credit kind: %q", kind)
	}

	ok, err := l.repo.ConsumeCredit(ctx, acct.ID, kind)
	if err != nil {
		return false, fmt.Errorf("consume %s credit: %w", kind, err)
	}
	if !ok {
		return false, ErrExhausted
	}
	return true, nil
}

// UpgradeTier looks up the tier's caps and resets both remaining counters
// to those caps. Returns false if the tier id is unknown. The counters are
// reset, not added to, so leftover credits from the previous tier do not
// carry over. The account snapshot is updated in place on success.
func (l *Ledger) UpgradeTier(ctx context.Context, acct *domain.Account, tierID string) (bool, error) {
	def, ok := l.tiers.Lookup(tierID)
	if !ok {
		return false, nil
	}

	if err := l.repo.SetTier(ctx, acct.ID, domain.Tier(def.ID), def.MaxBasic, def.MaxAdvanced); err != nil {
		return false, fmt.Errorf("upgrade tier: %w", err)
	}

	acct.Tier = domain.Tier(def.ID)
	acct.BasicRemaining = def.MaxBasic
	acct.AdvancedRemaining = def.MaxAdvanced
	return true, nil
}
