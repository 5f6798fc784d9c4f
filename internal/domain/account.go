// Package domain contains core domain types for the ReasonForge application.
package domain

import (
	"time"
)

// Tier is a named subscription level defining credit caps.
type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// CreditKind distinguishes the two independent consumable quotas.
type CreditKind string

const (
	// CreditBasic gates block-level suggestions.
	CreditBasic CreditKind = "basic"
	// CreditAdvanced gates full argument analyses.
	CreditAdvanced CreditKind = "advanced"
)

// Valid reports whether the kind is one of the known credit kinds.
func (k CreditKind) Valid() bool {
	return k == CreditBasic || k == CreditAdvanced
}

// Account represents a credit-bearing identity in the system.
// IsAdmin is resolved externally per request and never persisted.
type Account struct {
	ID                string    `json:"id"`
	Email             string    `json:"email,omitempty"`
	Tier              Tier      `json:"tier"`
	BasicRemaining    int       `json:"basic_remaining"`
	AdvancedRemaining int       `json:"advanced_remaining"`
	IsAdmin           bool      `json:"is_admin,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Remaining returns the remaining credit count for the given kind.
func (a *Account) Remaining(kind CreditKind) int {
	if kind == CreditAdvanced {
		return a.AdvancedRemaining
	}
	return a.BasicRemaining
}
