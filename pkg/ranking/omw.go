package ranking

import "github.com/fadedpez/tucoleague/pkg/entities"

// OpponentMatchWinRate is the summed match wins of playerID's opponents divided
// by the summed matches those opponents played. An opponent faced twice counts
// twice. Zero when the denominator is zero.
func OpponentMatchWinRate(stats map[string]*entities.PlayerStat, playerID string) float64 {
	stat, ok := stats[playerID]
	if !ok {
		return 0
	}

	wins, played := 0, 0
	for _, opponentID := range stat.OpponentIDs {
		opponent, ok := stats[opponentID]
		if !ok {
			continue
		}
		wins += opponent.MatchWins
		played += opponent.MatchesPlayed()
	}

	if played == 0 {
		return 0
	}
	return float64(wins) / float64(played)
}
