// Package ranking turns a session's match results into per-player statistics
// and orders them under a named tiebreak policy. It performs no I/O.
package ranking

import (
	"fmt"

	"github.com/fadedpez/tucoleague/internal/types"
	"github.com/fadedpez/tucoleague/pkg/entities"
)

// Aggregate folds matches into one PlayerStat per player appearing in any
// pairing, unplayed pairings included.
func Aggregate(matches []*entities.MatchResult) (map[string]*entities.PlayerStat, error) {
	stats := make(map[string]*entities.PlayerStat)
	get := func(playerID string) *entities.PlayerStat {
		stat, ok := stats[playerID]
		if !ok {
			stat = &entities.PlayerStat{PlayerID: playerID}
			stats[playerID] = stat
		}
		return stat
	}

	for _, m := range matches {
		if m == nil {
			continue
		}
		if err := m.Validate(); err != nil {
			return nil, types.WrapError(types.ErrValidation, fmt.Sprintf("match %s in round %d is invalid", m.ID, m.Round), err)
		}

		p1 := get(m.Player1ID)
		p2 := get(m.Player2ID)

		outcome := m.Outcome()
		if outcome == entities.MatchUnplayed {
			continue
		}

		p1.GameWins += m.Player1Wins
		p1.GameLosses += m.Player2Wins
		p2.GameWins += m.Player2Wins
		p2.GameLosses += m.Player1Wins

		p1.OpponentIDs = append(p1.OpponentIDs, p2.PlayerID)
		p2.OpponentIDs = append(p2.OpponentIDs, p1.PlayerID)

		switch outcome {
		case entities.MatchDecided:
			winnerID, loserID, _, loserGames, _ := m.Winner()
			winner, loser := stats[winnerID], stats[loserID]
			winner.MatchWins++
			loser.MatchLosses++
			winner.GameLossesInWins += loserGames
			loser.GameWinsInLosses += loserGames
		case entities.MatchDraw:
			p1.MatchDraws++
			p2.MatchDraws++
		}
	}

	return stats, nil
}

// CountUnplayed returns how many pairings have no games recorded
func CountUnplayed(matches []*entities.MatchResult) int {
	count := 0
	for _, m := range matches {
		if m != nil && m.Outcome() == entities.MatchUnplayed {
			count++
		}
	}
	return count
}
