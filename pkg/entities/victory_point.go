package entities

import "time"

// VictoryPoint is the scarce per-session reward. It is never mutated or deleted.
type VictoryPoint struct {
	ID        string
	PlayerID  string
	SessionID string
	CreatedAt time.Time
}

// WalletAward is one consolation credit computed by an offer commit
type WalletAward struct {
	PlayerID string
	Rank     int // offer ranking position of the player
	Place    int // 1-based index into the breakdown
	Amount   int64
}

// VictoryPointGrant is everything an offer commit writes in one unit
type VictoryPointGrant struct {
	SessionID     string
	SessionNumber int
	PlayerID      string
	OfferedRank   int // offered rank the commit was made against
	Awards        []WalletAward
	Transactions  []*Transaction
}
