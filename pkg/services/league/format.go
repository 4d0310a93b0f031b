package league

import (
	"fmt"
	"strings"

	"github.com/fadedpez/tucoleague/pkg/entities"
)

// Ordinal renders n as 1st, 2nd, 3rd, 4th, 11th, 21st...
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// FormatStandings renders ranked players one per line. display maps a player
// ID to the name shown; nil shows the raw ID. Tied players are marked with "=".
func FormatStandings(players []entities.RankedPlayer, display func(playerID string) string) string {
	if len(players) == 0 {
		return "No match results recorded yet."
	}
	if display == nil {
		display = func(playerID string) string { return playerID }
	}

	var sb strings.Builder
	for _, p := range players {
		marker := " "
		if p.TiedWithPrevious {
			marker = "="
		}
		st := p.Stat
		sb.WriteString(fmt.Sprintf("%s%s %s  %d-%d-%d  games %d-%d  OMW %.1f%%\n",
			marker, Ordinal(p.Rank), display(p.PlayerID),
			st.MatchWins, st.MatchLosses, st.MatchDraws,
			st.GameWins, st.GameLosses,
			p.OpponentMatchWinRate*100))
	}
	return strings.TrimRight(sb.String(), "\n")
}
