package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fadedpez/tucoleague/pkg/db"
	"github.com/fadedpez/tucoleague/pkg/entities"
)

// SQLiteRepository implements Repository on a migrated SQLite database
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an open database. Schema comes from pkg/db migrations.
func NewSQLiteRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: conn}
}

// GetWallet retrieves a wallet by user ID
func (r *SQLiteRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	var wallet entities.Wallet
	var updatedAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, balance, updated_at FROM wallets WHERE user_id = ?`, userID,
	).Scan(&wallet.UserID, &wallet.Balance, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}

	if wallet.LastUpdated, err = db.ParseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// SaveWallet creates a wallet or touches an existing one without changing its balance
func (r *SQLiteRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	wallet.LastUpdated = time.Now()
	now := db.FormatTimestamp(wallet.LastUpdated)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, created_at, updated_at)
		VALUES (?, 0, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET updated_at = excluded.updated_at
	`, wallet.UserID, now, now)
	if err != nil {
		log.Printf("[WALLET_REPO] Error saving wallet for user %s: %v", wallet.UserID, err)
		return fmt.Errorf("error saving wallet: %w", err)
	}

	saved, err := r.GetWallet(ctx, wallet.UserID)
	if err != nil {
		return err
	}
	wallet.Balance = saved.Balance
	return nil
}

// Credit appends one transaction in its own database transaction
func (r *SQLiteRepository) Credit(ctx context.Context, t *entities.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := CreditTx(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// CreditTx appends t and updates the balance inside an open transaction so
// callers can make wallet credits part of a larger commit.
func CreditTx(ctx context.Context, tx *sql.Tx, t *entities.Transaction) error {
	if err := prepareTransaction(t); err != nil {
		return err
	}
	now := db.FormatTimestamp(t.Timestamp)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			balance = balance + excluded.balance,
			updated_at = excluded.updated_at
	`, t.UserID, t.Amount, now, now)
	if err != nil {
		return fmt.Errorf("error updating balance: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE user_id = ?`, t.UserID).Scan(&t.BalanceAfter); err != nil {
		return fmt.Errorf("error reading balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, session_id, amount, type, description, timestamp, balance_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.SessionID, t.Amount, t.Type, t.Description, now, t.BalanceAfter)
	if err != nil {
		return fmt.Errorf("error adding transaction: %w", err)
	}

	log.Printf("[WALLET_REPO] Credited %d to user %s (%s), balance now %d", t.Amount, t.UserID, t.Type, t.BalanceAfter)
	return nil
}

const selectTransactionsSQL = `
	SELECT id, user_id, COALESCE(session_id, ''), amount, type, COALESCE(description, ''), timestamp, balance_after
	FROM transactions
`

// GetTransactions retrieves recent transactions for a user, newest first
func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactionsSQL+`
		WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	return scanTransactions(rows)
}

// GetSessionTransactions retrieves every transaction a session produced, oldest first
func (r *SQLiteRepository) GetSessionTransactions(ctx context.Context, sessionID string) ([]*entities.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactionsSQL+`
		WHERE session_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying session transactions: %w", err)
	}
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]*entities.Transaction, error) {
	defer rows.Close()

	transactions := make([]*entities.Transaction, 0)
	for rows.Next() {
		var t entities.Transaction
		var timestamp string

		if err := rows.Scan(&t.ID, &t.UserID, &t.SessionID, &t.Amount, &t.Type, &t.Description, &timestamp, &t.BalanceAfter); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}

		ts, err := db.ParseTimestamp(timestamp)
		if err != nil {
			return nil, err
		}
		t.Timestamp = ts
		transactions = append(transactions, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
