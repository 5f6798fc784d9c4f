// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/reasonforge/reasonforge/internal/domain"
)

// Repository defines the interface for persisting accounts, arguments,
// and suggestion checklists.
type Repository interface {
	// GetAccount retrieves an account by id. Returns (nil, nil) if absent.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// CreateAccount inserts a new account record. Existing rows are left
	// untouched so a concurrent first request cannot clobber credit state.
	CreateAccount(ctx context.Context, acct *domain.Account) error

	// UpdateAccountEmail records the email claim for an account.
	UpdateAccountEmail(ctx context.Context, accountID, email string) error

	// ConsumeCredit atomically decrements the remaining counter for the
	// given kind, guarded by remaining > 0. Returns false if the account
	// had no credit of that kind left.
	ConsumeCredit(ctx context.Context, accountID string, kind domain.CreditKind) (bool, error)

	// SetTier sets the account tier and resets both remaining counters
	// to the given caps.
	SetTier(ctx context.Context, accountID string, tier domain.Tier, maxBasic, maxAdvanced int) error

	// CreateArgument inserts a new argument.
	CreateArgument(ctx context.Context, arg *domain.Argument) error

	// GetArgument retrieves an argument with its blocks ordered by
	// position. Returns (nil, nil) if absent.
	GetArgument(ctx context.Context, argumentID string) (*domain.Argument, error)

	// ListArguments retrieves all arguments owned by an account, newest
	// first, without blocks.
	ListArguments(ctx context.Context, accountID string) ([]*domain.Argument, error)

	// CreateBlock inserts a block.
	CreateBlock(ctx context.Context, block *domain.Block) error

	// UpdateBlock updates a block's content, type, and position.
	UpdateBlock(ctx context.Context, block *domain.Block) error

	// DeleteBlock removes a block from an argument.
	DeleteBlock(ctx context.Context, argumentID, blockID string) error

	// GetChecklist retrieves the suggestion checklist for an argument
	// in stored order.
	GetChecklist(ctx context.Context, argumentID string) ([]domain.ChecklistItem, error)

	// ReplaceChecklist replaces the stored checklist for an argument.
	ReplaceChecklist(ctx context.Context, argumentID string, items []domain.ChecklistItem) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
