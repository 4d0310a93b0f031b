package entities

import (
	"fmt"
	"time"
)

// WalletPointBreakdown is the schedule of wallet points paid to the players
// remaining after the Victory Point is granted, first place through sixth.
type WalletPointBreakdown struct {
	ID        string
	Active    bool
	Amounts   [PlacementCount]int64
	CreatedAt time.Time
}

// At returns the amount for 0-based place k, or 0 past the end of the schedule
func (b *WalletPointBreakdown) At(k int) int64 {
	if k < 0 || k >= len(b.Amounts) {
		return 0
	}
	return b.Amounts[k]
}

// Validate rejects negative amounts
func (b *WalletPointBreakdown) Validate() error {
	for i, amount := range b.Amounts {
		if amount < 0 {
			return fmt.Errorf("breakdown place %d has negative amount %d", i+1, amount)
		}
	}
	return nil
}
