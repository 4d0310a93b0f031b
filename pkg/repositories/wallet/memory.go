package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fadedpez/tucoleague/pkg/entities"
)

// MemoryRepository implements Repository using in-memory storage
type MemoryRepository struct {
	wallets      map[string]*entities.Wallet
	transactions []*entities.Transaction
	mu           sync.RWMutex
}

// NewMemoryRepository creates a new in-memory wallet repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		wallets: make(map[string]*entities.Wallet),
	}
}

// GetWallet retrieves a wallet by user ID
func (r *MemoryRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wallet, exists := r.wallets[userID]
	if !exists {
		return nil, ErrWalletNotFound
	}

	walletCopy := *wallet
	return &walletCopy, nil
}

// SaveWallet creates a wallet or touches an existing one
func (r *MemoryRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallet.LastUpdated = time.Now()
	if existing, ok := r.wallets[wallet.UserID]; ok {
		existing.LastUpdated = wallet.LastUpdated
		wallet.Balance = existing.Balance
		return nil
	}

	walletCopy := *wallet
	r.wallets[wallet.UserID] = &walletCopy
	return nil
}

// Credit appends one transaction
func (r *MemoryRepository) Credit(ctx context.Context, t *entities.Transaction) error {
	return r.ApplyCredits([]*entities.Transaction{t})
}

// ApplyCredits appends every transaction and updates balances as one unit.
// Either all of them are applied or none.
func (r *MemoryRepository) ApplyCredits(txs []*entities.Transaction) error {
	for _, t := range txs {
		if err := prepareTransaction(t); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range txs {
		wallet, ok := r.wallets[t.UserID]
		if !ok {
			wallet = &entities.Wallet{UserID: t.UserID}
			r.wallets[t.UserID] = wallet
		}
		wallet.Balance += t.Amount
		wallet.LastUpdated = t.Timestamp
		t.BalanceAfter = wallet.Balance

		txCopy := *t
		r.transactions = append(r.transactions, &txCopy)
	}
	return nil
}

// GetTransactions retrieves recent transactions for a user, newest first
func (r *MemoryRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Transaction, 0)
	for i := len(r.transactions) - 1; i >= 0 && len(result) < limit; i-- {
		if r.transactions[i].UserID == userID {
			txCopy := *r.transactions[i]
			result = append(result, &txCopy)
		}
	}
	return result, nil
}

// GetSessionTransactions retrieves a session's transactions in the order they were written
func (r *MemoryRepository) GetSessionTransactions(ctx context.Context, sessionID string) ([]*entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Transaction, 0)
	for _, t := range r.transactions {
		if t.SessionID == sessionID {
			txCopy := *t
			result = append(result, &txCopy)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// Close is a no-op for the memory repository
func (r *MemoryRepository) Close() error {
	return nil
}
