package storage

import (
	"errors"
	"fmt"

	"github.com/fadedpez/tucoleague/internal/config"
	"github.com/fadedpez/tucoleague/internal/logging"
	"github.com/fadedpez/tucoleague/pkg/db"
	"github.com/fadedpez/tucoleague/pkg/repositories/league"
	"github.com/fadedpez/tucoleague/pkg/repositories/wallet"
	"gorm.io/gorm"
)

// Stores are the league and wallet repositories for one back-end. Both share
// a connection so a Victory Point commit can write them in one transaction.
type Stores struct {
	League  league.Repository
	Wallets wallet.Repository
	Type    string

	close func() error
}

// Close releases the shared connection
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open builds the stores selected by cfg.StorageType
func Open(cfg *config.Config, logger *logging.Logger) (*Stores, error) {
	if logger == nil {
		logger = logging.Default
	}

	switch cfg.StorageType {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage (data will be lost on restart)")
		return OpenMemory(), nil

	case config.StorageSQLite:
		logger.Info("Opening SQLite storage at %s", cfg.SQLitePath)
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite storage: %w", err)
		}
		return &Stores{
			League:  league.NewSQLiteRepository(conn),
			Wallets: wallet.NewSQLiteRepository(conn),
			Type:    config.StorageSQLite,
			close:   conn.Close,
		}, nil

	case config.StoragePostgres:
		logger.Info("Opening Postgres storage")
		gdb, err := db.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open Postgres storage: %w", err)
		}
		leagueRepo, err := league.NewGormRepository(gdb)
		if err != nil {
			return nil, errors.Join(err, closeGorm(gdb))
		}
		walletRepo, err := wallet.NewGormRepository(gdb)
		if err != nil {
			return nil, errors.Join(err, closeGorm(gdb))
		}
		return &Stores{
			League:  leagueRepo,
			Wallets: walletRepo,
			Type:    config.StoragePostgres,
			close:   leagueRepo.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
}

// OpenMemory builds in-memory stores sharing one wallet ledger
func OpenMemory() *Stores {
	wallets := wallet.NewMemoryRepository()
	return &Stores{
		League:  league.NewMemoryRepository(wallets),
		Wallets: wallets,
		Type:    config.StorageMemory,
	}
}

func closeGorm(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
