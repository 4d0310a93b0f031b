package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/fadedpez/tucoleague/internal/logging"
	"github.com/fadedpez/tucoleague/internal/types"
	"github.com/fadedpez/tucoleague/pkg/entities"
	walletRepo "github.com/fadedpez/tucoleague/pkg/repositories/wallet"
)

// DefaultHistoryLimit is how many transactions a history view shows
const DefaultHistoryLimit = 10

// Service exposes wallet balances and history. Balances are only ever
// changed by Victory Point commits through the league repository.
type Service struct {
	repo   walletRepo.Repository
	logger *logging.Logger
}

var _ WalletService = (*Service)(nil)

// NewService creates a new wallet service
func NewService(repo walletRepo.Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetOrCreateWallet retrieves a wallet or creates an empty one
func (s *Service) GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error) {
	if userID == "" {
		return nil, false, types.NewLeagueError(types.ErrValidation, "user ID is required")
	}

	wallet, err := s.repo.GetWallet(ctx, userID)
	if err == nil {
		return wallet, false, nil
	}
	if !errors.Is(err, walletRepo.ErrWalletNotFound) {
		return nil, false, types.WrapError(types.ErrInternal, "failed to load wallet", err)
	}

	newWallet := &entities.Wallet{
		UserID:      userID,
		LastUpdated: time.Now(),
	}
	if err := s.repo.SaveWallet(ctx, newWallet); err != nil {
		return nil, false, types.WrapError(types.ErrInternal, "failed to create wallet", err)
	}

	s.logger.Debug("[WALLET] Created wallet for user %s", userID)
	return newWallet, true, nil
}

// GetBalance returns the current balance for a user, zero when they have no wallet
func (s *Service) GetBalance(ctx context.Context, userID string) (int64, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if errors.Is(err, walletRepo.ErrWalletNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, types.WrapError(types.ErrInternal, "failed to load wallet", err)
	}
	return wallet.Balance, nil
}

// GetRecentTransactions returns a user's newest transactions
func (s *Service) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	txs, err := s.repo.GetTransactions(ctx, userID, limit)
	if err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to load transactions", err)
	}
	return txs, nil
}

// GetSessionPayouts returns every transaction a session's Victory Point commit produced
func (s *Service) GetSessionPayouts(ctx context.Context, sessionID string) ([]*entities.Transaction, error) {
	txs, err := s.repo.GetSessionTransactions(ctx, sessionID)
	if err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to load session transactions", err)
	}
	return txs, nil
}
