package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/tucoleague/pkg/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletModel is the wallets table for the gorm back-end
type WalletModel struct {
	UserID    string `gorm:"primaryKey;type:text"`
	Balance   int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (WalletModel) TableName() string { return "wallets" }

// TransactionModel is the transactions table for the gorm back-end
type TransactionModel struct {
	ID           string    `gorm:"primaryKey;type:text"`
	UserID       string    `gorm:"index;not null"`
	SessionID    string    `gorm:"index"`
	Amount       int64     `gorm:"not null"`
	Type         string    `gorm:"type:varchar(32);not null"`
	Description  string    `gorm:"type:text"`
	Timestamp    time.Time `gorm:"index;not null"`
	BalanceAfter int64     `gorm:"not null"`
}

func (TransactionModel) TableName() string { return "transactions" }

func (m *TransactionModel) toEntity() *entities.Transaction {
	return &entities.Transaction{
		ID:           m.ID,
		UserID:       m.UserID,
		SessionID:    m.SessionID,
		Amount:       m.Amount,
		Type:         entities.TransactionType(m.Type),
		Description:  m.Description,
		Timestamp:    m.Timestamp,
		BalanceAfter: m.BalanceAfter,
	}
}

// GormRepository implements Repository on Postgres through gorm
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository migrates the wallet tables and returns the repository
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&WalletModel{}, &TransactionModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate wallet tables: %w", err)
	}
	return &GormRepository{db: db}, nil
}

// GetWallet retrieves a wallet by user ID
func (r *GormRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	var m WalletModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}
	return &entities.Wallet{UserID: m.UserID, Balance: m.Balance, LastUpdated: m.UpdatedAt}, nil
}

// SaveWallet creates a wallet or touches an existing one without changing its balance
func (r *GormRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	now := time.Now()
	m := WalletModel{UserID: wallet.UserID, CreatedAt: now, UpdatedAt: now}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": now}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("error saving wallet: %w", err)
	}

	saved, err := r.GetWallet(ctx, wallet.UserID)
	if err != nil {
		return err
	}
	*wallet = *saved
	return nil
}

// Credit appends one transaction in its own database transaction
func (r *GormRepository) Credit(ctx context.Context, t *entities.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return CreditGorm(tx, t)
	})
}

// CreditGorm appends t and updates the balance inside an open gorm transaction.
// The wallet row is locked for the rest of the transaction.
func CreditGorm(tx *gorm.DB, t *entities.Transaction) error {
	if err := prepareTransaction(t); err != nil {
		return err
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&WalletModel{UserID: t.UserID, CreatedAt: t.Timestamp, UpdatedAt: t.Timestamp}).Error
	if err != nil {
		return fmt.Errorf("error creating wallet: %w", err)
	}

	var locked WalletModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", t.UserID).
		First(&locked).Error; err != nil {
		return fmt.Errorf("failed to lock wallet for update: %w", err)
	}

	t.BalanceAfter = locked.Balance + t.Amount
	if err := tx.Model(&WalletModel{}).
		Where("user_id = ?", t.UserID).
		Updates(map[string]interface{}{
			"balance":    t.BalanceAfter,
			"updated_at": t.Timestamp,
		}).Error; err != nil {
		return fmt.Errorf("error updating balance: %w", err)
	}

	m := TransactionModel{
		ID:           t.ID,
		UserID:       t.UserID,
		SessionID:    t.SessionID,
		Amount:       t.Amount,
		Type:         string(t.Type),
		Description:  t.Description,
		Timestamp:    t.Timestamp,
		BalanceAfter: t.BalanceAfter,
	}
	if err := tx.Create(&m).Error; err != nil {
		return fmt.Errorf("error adding transaction: %w", err)
	}
	return nil
}

// GetTransactions retrieves recent transactions for a user, newest first
func (r *GormRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	var models []TransactionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	return toEntities(models), nil
}

// GetSessionTransactions retrieves every transaction a session produced, oldest first
func (r *GormRepository) GetSessionTransactions(ctx context.Context, sessionID string) ([]*entities.Transaction, error) {
	var models []TransactionModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("error querying session transactions: %w", err)
	}
	return toEntities(models), nil
}

func toEntities(models []TransactionModel) []*entities.Transaction {
	out := make([]*entities.Transaction, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return out
}

// Close closes the underlying connection pool
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
