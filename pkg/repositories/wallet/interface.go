package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/fadedpez/tucoleague/pkg/entities"
	"github.com/google/uuid"
)

var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// Repository is the wallet ledger. Balances only change by appending a
// transaction, and both happen in one atomic step.
type Repository interface {
	// GetWallet retrieves a wallet by user ID
	GetWallet(ctx context.Context, userID string) (*entities.Wallet, error)

	// SaveWallet creates a wallet or touches an existing one without changing its balance
	SaveWallet(ctx context.Context, wallet *entities.Wallet) error

	// Credit appends t and adds t.Amount to the user's balance, creating the
	// wallet when missing. t.BalanceAfter is filled in.
	Credit(ctx context.Context, t *entities.Transaction) error

	// GetTransactions retrieves the most recent transactions for a user, newest first
	GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)

	// GetSessionTransactions retrieves every transaction produced by a session, oldest first
	GetSessionTransactions(ctx context.Context, sessionID string) ([]*entities.Transaction, error)

	Close() error
}

// prepareTransaction fills in generated fields and rejects entries without an owner
func prepareTransaction(t *entities.Transaction) error {
	if t == nil || t.UserID == "" {
		return ErrInvalidTransaction
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	return nil
}
