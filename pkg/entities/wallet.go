package entities

import (
	"time"
)

// Wallet is a player's secondary currency balance
type Wallet struct {
	UserID      string    // Discord user ID
	Balance     int64     // Running sum of the user's transactions
	LastUpdated time.Time // When the wallet was last updated
}

// TransactionType represents the type of wallet transaction
type TransactionType string

const (
	TransactionTypeVictoryPointAward TransactionType = "VICTORY_POINT_AWARD"
)

// Transaction is one append-only ledger entry
type Transaction struct {
	ID           string          // Unique identifier
	UserID       string          // User associated with the transaction
	SessionID    string          // Session that produced the transaction
	Amount       int64           // Signed amount
	Type         TransactionType // Type of transaction
	Description  string          // Human-readable description
	Timestamp    time.Time       // When the transaction occurred
	BalanceAfter int64           // Balance after this transaction
}
