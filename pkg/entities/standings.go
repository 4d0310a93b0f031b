package entities

// PlayerStat is the per-session aggregate for one player. It is derived from
// match results on every query and never persisted.
type PlayerStat struct {
	PlayerID         string
	MatchWins        int
	MatchLosses      int
	MatchDraws       int
	GameWins         int
	GameLosses       int
	GameWinsInLosses int // games won inside matches the player lost
	GameLossesInWins int // games lost inside matches the player won
	OpponentIDs      []string
}

// MatchesPlayed counts matches with a result
func (s *PlayerStat) MatchesPlayed() int {
	return s.MatchWins + s.MatchLosses + s.MatchDraws
}

// RankedPlayer is one row of an ordered ranking
type RankedPlayer struct {
	Rank                 int // 1-based and contiguous
	PlayerID             string
	Stat                 PlayerStat
	OpponentMatchWinRate float64
	TiedWithPrevious     bool // every policy key equals the row above
}
