package wallet

import (
	"context"

	"github.com/fadedpez/tucoleague/pkg/entities"
)

// WalletService is the read side of the wallet ledger used by the bot and CLI
type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error)
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)
	GetSessionPayouts(ctx context.Context, sessionID string) ([]*entities.Transaction, error)
}
