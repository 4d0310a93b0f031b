package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/fadedpez/tucoleague/internal/types"
	"github.com/fadedpez/tucoleague/pkg/entities"
	walletRepo "github.com/fadedpez/tucoleague/pkg/repositories/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the wallet repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(*entities.Wallet)
	return w, args.Error(1)
}

func (m *MockRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockRepository) Credit(ctx context.Context, t *entities.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	txs, _ := args.Get(0).([]*entities.Transaction)
	return txs, args.Error(1)
}

func (m *MockRepository) GetSessionTransactions(ctx context.Context, sessionID string) ([]*entities.Transaction, error) {
	args := m.Called(ctx, sessionID)
	txs, _ := args.Get(0).([]*entities.Transaction)
	return txs, args.Error(1)
}

func (m *MockRepository) Close() error {
	return m.Called().Error(0)
}

func TestGetOrCreateWalletCreatesEmptyWallet(t *testing.T) {
	repo := new(MockRepository)
	ctx := context.Background()
	repo.On("GetWallet", ctx, "u1").Return(nil, walletRepo.ErrWalletNotFound)
	repo.On("SaveWallet", ctx, mock.MatchedBy(func(w *entities.Wallet) bool {
		return w.UserID == "u1" && w.Balance == 0
	})).Return(nil)

	service := NewService(repo, nil)
	w, created, err := service.GetOrCreateWallet(ctx, "u1")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(0), w.Balance)
	repo.AssertExpectations(t)
}

func TestGetOrCreateWalletReturnsExisting(t *testing.T) {
	repo := new(MockRepository)
	ctx := context.Background()
	repo.On("GetWallet", ctx, "u1").Return(&entities.Wallet{UserID: "u1", Balance: 18}, nil)

	service := NewService(repo, nil)
	w, created, err := service.GetOrCreateWallet(ctx, "u1")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(18), w.Balance)
	repo.AssertNotCalled(t, "SaveWallet", mock.Anything, mock.Anything)
}

func TestGetOrCreateWalletStorageFailure(t *testing.T) {
	repo := new(MockRepository)
	ctx := context.Background()
	repo.On("GetWallet", ctx, "u1").Return(nil, errors.New("disk full"))

	_, _, err := NewService(repo, nil).GetOrCreateWallet(ctx, "u1")
	assert.True(t, types.IsLeagueError(err, types.ErrInternal))

	_, _, err = NewService(repo, nil).GetOrCreateWallet(ctx, "")
	assert.True(t, types.IsLeagueError(err, types.ErrValidation))
}

func TestGetBalanceWithoutWallet(t *testing.T) {
	repo := new(MockRepository)
	ctx := context.Background()
	repo.On("GetWallet", ctx, "ghost").Return(nil, walletRepo.ErrWalletNotFound)

	balance, err := NewService(repo, nil).GetBalance(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestHistoryDefaultsLimit(t *testing.T) {
	repo := walletRepo.NewMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		require.NoError(t, repo.Credit(ctx, &entities.Transaction{UserID: "u1", SessionID: "s1", Amount: 1, Type: entities.TransactionTypeVictoryPointAward}))
	}

	service := NewService(repo, nil)
	txs, err := service.GetRecentTransactions(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, txs, DefaultHistoryLimit)

	payouts, err := service.GetSessionPayouts(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, payouts, 12)
}
