package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/reasonforge/reasonforge/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db          *sql.DB
	checklistMu sync.Mutex // Serializes checklist rewrites to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS accounts (
		account_id TEXT PRIMARY KEY,
		email TEXT,
		tier TEXT NOT NULL,
		basic_remaining INTEGER NOT NULL,
		advanced_remaining INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		CHECK (basic_remaining >= 0),
		CHECK (advanced_remaining >= 0)
	);

	CREATE TABLE IF NOT EXISTS arguments (
		argument_id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		title TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_arguments_account ON arguments(account_id);

	CREATE TABLE IF NOT EXISTS blocks (
		block_id TEXT PRIMARY KEY,
		argument_id TEXT NOT NULL,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		ai_generated INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_blocks_argument ON blocks(argument_id, position);

	CREATE TABLE IF NOT EXISTS checklist_items (
		item_id TEXT PRIMARY KEY,
		argument_id TEXT NOT NULL,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		implemented INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checklist_argument ON checklist_items(argument_id, position);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetAccount retrieves an account by id.
func (s *SQLiteStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, email, tier, basic_remaining, advanced_remaining,
		       created_at, updated_at
		FROM accounts WHERE account_id = ?`

	row := s.db.QueryRowContext(ctx, query, accountID)

	var acct domain.Account
	var email sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&acct.ID, &email, &acct.Tier,
		&acct.BasicRemaining, &acct.AdvancedRemaining,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan account row: %w", err)
	}

	acct.Email = email.String
	acct.CreatedAt = time.Unix(createdAt, 0)
	acct.UpdatedAt = time.Unix(updatedAt, 0)

	return &acct, nil
}

// CreateAccount inserts a new account record. Existing rows are left untouched.
func (s *SQLiteStore) CreateAccount(ctx context.Context, acct *domain.Account) error {
	query := `
	INSERT INTO accounts (account_id, email, tier, basic_remaining, advanced_remaining, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(account_id) DO NOTHING`

	var email interface{}
	if acct.Email != "" {
		email = acct.Email
	}

	_, err := s.db.ExecContext(ctx, query,
		acct.ID, email, acct.Tier,
		acct.BasicRemaining, acct.AdvancedRemaining,
		acct.CreatedAt.Unix(), acct.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// UpdateAccountEmail records the email claim for an account.
func (s *SQLiteStore) UpdateAccountEmail(ctx context.Context, accountID, email string) error {
	query := `UPDATE accounts SET email = ?, updated_at = ? WHERE account_id = ?`
	result, err := s.db.ExecContext(ctx, query, email, time.Now().Unix(), accountID)
	if err != nil {
		return fmt.Errorf("update account email: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateAccountEmail affected 0 rows", "account_id", accountID)
	}

	return nil
}

// ConsumeCredit atomically decrements the remaining counter for the given
// kind. The decrement is guarded by remaining > 0 in a single statement,
// so concurrent consumers cannot drive the counter below zero.
func (s *SQLiteStore) ConsumeCredit(ctx context.Context, accountID string, kind domain.CreditKind) (bool, error) {
	col, err := creditColumn(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(
		`UPDATE accounts SET %s = %s - 1, updated_at = ? WHERE account_id = ? AND %s > 0`,
		col, col, col,
	)
	result, err := s.db.ExecContext(ctx, query, time.Now().Unix(), accountID)
	if err != nil {
		return false, fmt.Errorf("consume %s credit: %w", kind, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func creditColumn(kind domain.CreditKind) (string, error) {
	switch kind {
	case domain.CreditBasic:
		return "basic_remaining", nil
	case domain.CreditAdvanced:
		return "advanced_remaining", nil
	default:
		return "", fmt.Errorf("unknown credit kind: %q", kind)
	}
}

// SetTier sets the account tier and resets both remaining counters to the
// given caps.
func (s *SQLiteStore) SetTier(ctx context.Context, accountID string, tier domain.Tier, maxBasic, maxAdvanced int) error {
	query := `
		UPDATE accounts
		SET tier = ?, basic_remaining = ?, advanced_remaining = ?, updated_at = ?
		WHERE account_id = ?`
	result, err := s.db.ExecContext(ctx, query, tier, maxBasic, maxAdvanced, time.Now().Unix(), accountID)
	if err != nil {
		return fmt.Errorf("set tier: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account not found: %s", accountID)
	}
	return nil
}

// CreateArgument inserts a new argument.
func (s *SQLiteStore) CreateArgument(ctx context.Context, arg *domain.Argument) error {
	query := `
	INSERT INTO arguments (argument_id, account_id, title, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		arg.ID, arg.AccountID, arg.Title,
		arg.CreatedAt.Unix(), arg.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create argument: %w", err)
	}
	return nil
}

// GetArgument retrieves an argument with its blocks ordered by position.
func (s *SQLiteStore) GetArgument(ctx context.Context, argumentID string) (*domain.Argument, error) {
	query := `
		SELECT argument_id, account_id, title, created_at, updated_at
		FROM arguments WHERE argument_id = ?`

	row := s.db.QueryRowContext(ctx, query, argumentID)

	var arg domain.Argument
	var createdAt, updatedAt int64

	err := row.Scan(&arg.ID, &arg.AccountID, &arg.Title, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan argument row: %w", err)
	}

	arg.CreatedAt = time.Unix(createdAt, 0)
	arg.UpdatedAt = time.Unix(updatedAt, 0)

	blocks, err := s.getBlocks(ctx, argumentID)
	if err != nil {
		return nil, err
	}
	arg.Blocks = blocks

	return &arg, nil
}

func (s *SQLiteStore) getBlocks(ctx context.Context, argumentID string) ([]domain.Block, error) {
	query := `
		SELECT block_id, argument_id, type, content, ai_generated, position, created_at, updated_at
		FROM blocks WHERE argument_id = ? ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, argumentID)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close block rows", "error", closeErr)
		}
	}()

	var blocks []domain.Block
	for rows.Next() {
		var b domain.Block
		var createdAt, updatedAt int64

		if err := rows.Scan(
			&b.ID, &b.ArgumentID, &b.Type, &b.Content,
			&b.AIGenerated, &b.Position, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan block row: %w", err)
		}

		b.CreatedAt = time.Unix(createdAt, 0)
		b.UpdatedAt = time.Unix(updatedAt, 0)
		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}

	return blocks, nil
}

// ListArguments retrieves all arguments owned by an account, newest first.
func (s *SQLiteStore) ListArguments(ctx context.Context, accountID string) ([]*domain.Argument, error) {
	query := `
		SELECT argument_id, account_id, title, created_at, updated_at
		FROM arguments WHERE account_id = ? ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query arguments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close argument rows", "error", closeErr)
		}
	}()

	var args []*domain.Argument
	for rows.Next() {
		var arg domain.Argument
		var createdAt, updatedAt int64

		if err := rows.Scan(&arg.ID, &arg.AccountID, &arg.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan argument row: %w", err)
		}

		arg.CreatedAt = time.Unix(createdAt, 0)
		arg.UpdatedAt = time.Unix(updatedAt, 0)
		args = append(args, &arg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate arguments: %w", err)
	}

	return args, nil
}

// CreateBlock inserts a block.
func (s *SQLiteStore) CreateBlock(ctx context.Context, block *domain.Block) error {
	query := `
	INSERT INTO blocks (block_id, argument_id, type, content, ai_generated, position, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		block.ID, block.ArgumentID, block.Type, block.Content,
		block.AIGenerated, block.Position,
		block.CreatedAt.Unix(), block.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

// UpdateBlock updates a block's content, type, and position.
func (s *SQLiteStore) UpdateBlock(ctx context.Context, block *domain.Block) error {
	query := `
		UPDATE blocks SET type = ?, content = ?, position = ?, updated_at = ?
		WHERE block_id = ? AND argument_id = ?`
	result, err := s.db.ExecContext(ctx, query,
		block.Type, block.Content, block.Position, time.Now().Unix(),
		block.ID, block.ArgumentID,
	)
	if err != nil {
		return fmt.Errorf("update block: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("block not found: %s", block.ID)
	}
	return nil
}

// DeleteBlock removes a block from an argument.
func (s *SQLiteStore) DeleteBlock(ctx context.Context, argumentID, blockID string) error {
	query := `DELETE FROM blocks WHERE block_id = ? AND argument_id = ?`
	result, err := s.db.ExecContext(ctx, query, blockID, argumentID)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("block not found: %s", blockID)
	}
	return nil
}

// GetChecklist retrieves the suggestion checklist for an argument.
func (s *SQLiteStore) GetChecklist(ctx context.Context, argumentID string) ([]domain.ChecklistItem, error) {
	query := `
		SELECT item_id, type, content, implemented
		FROM checklist_items WHERE argument_id = ? ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, argumentID)
	if err != nil {
		return nil, fmt.Errorf("query checklist: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close checklist rows", "error", closeErr)
		}
	}()

	var items []domain.ChecklistItem
	for rows.Next() {
		var item domain.ChecklistItem
		if err := rows.Scan(&item.ID, &item.Type, &item.Content, &item.Implemented); err != nil {
			return nil, fmt.Errorf("scan checklist row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist: %w", err)
	}

	return items, nil
}

// ReplaceChecklist replaces the stored checklist for an argument.
// Implements retry logic with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLiteStore) ReplaceChecklist(ctx context.Context, argumentID string, items []domain.ChecklistItem) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.replaceChecklistOnce(ctx, argumentID, items)
		if err == nil {
			return nil
		}

		if isSQLiteConflict(err) {
			if i < maxRetries-1 {
				delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
				slog.Debug("ReplaceChecklist failed with SQLITE_BUSY, retrying",
					"argument_id", argumentID,
					"attempt", i+1,
					"delay", delay)
				time.Sleep(delay)
				continue
			}
		}

		// Non-retryable error or max retries exceeded
		return fmt.Errorf("failed to replace checklist for %s after %d attempts: %w", argumentID, maxRetries, err)
	}

	return nil
}

func (s *SQLiteStore) replaceChecklistOnce(ctx context.Context, argumentID string, items []domain.ChecklistItem) error {
	s.checklistMu.Lock()
	defer s.checklistMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checklist tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM checklist_items WHERE argument_id = ?`, argumentID); err != nil {
		return fmt.Errorf("clear checklist: %w", err)
	}

	now := time.Now().Unix()
	insert := `
	INSERT INTO checklist_items (item_id, argument_id, type, content, implemented, position, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, insert,
			item.ID, argumentID, item.Type, item.Content, item.Implemented, i, now,
		); err != nil {
			return fmt.Errorf("insert checklist item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checklist tx: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
