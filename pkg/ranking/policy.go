package ranking

import (
	"sort"

	"github.com/fadedpez/tucoleague/pkg/entities"
)

// compareFunc returns a negative number when a ranks above b, positive when
// below and zero when the key cannot separate them.
type compareFunc func(a, b *entities.RankedPlayer) int

// Policy is a named, ordered list of tiebreak keys
type Policy struct {
	name string
	keys []compareFunc
}

// Name identifies the policy in logs and output
func (p Policy) Name() string {
	return p.name
}

// StandingsPolicy orders finalized standings: match wins, then games won in
// losses, then fewest games lost in wins.
var StandingsPolicy = Policy{
	name: "standings",
	keys: []compareFunc{
		descInt(func(p *entities.RankedPlayer) int { return p.Stat.MatchWins }),
		descInt(func(p *entities.RankedPlayer) int { return p.Stat.GameWinsInLosses }),
		ascInt(func(p *entities.RankedPlayer) int { return p.Stat.GameLossesInWins }),
	},
}

// OfferRankingPolicy orders the Victory Point offer: match wins, then opponent
// match win rate, then total game wins.
var OfferRankingPolicy = Policy{
	name: "offer",
	keys: []compareFunc{
		descInt(func(p *entities.RankedPlayer) int { return p.Stat.MatchWins }),
		func(a, b *entities.RankedPlayer) int {
			switch {
			case a.OpponentMatchWinRate > b.OpponentMatchWinRate:
				return -1
			case a.OpponentMatchWinRate < b.OpponentMatchWinRate:
				return 1
			}
			return 0
		},
		descInt(func(p *entities.RankedPlayer) int { return p.Stat.GameWins }),
	},
}

func descInt(key func(*entities.RankedPlayer) int) compareFunc {
	return func(a, b *entities.RankedPlayer) int {
		return key(b) - key(a)
	}
}

func ascInt(key func(*entities.RankedPlayer) int) compareFunc {
	return func(a, b *entities.RankedPlayer) int {
		return key(a) - key(b)
	}
}

func (p Policy) compare(a, b *entities.RankedPlayer) int {
	for _, key := range p.keys {
		if c := key(a, b); c != 0 {
			return c
		}
	}
	return 0
}

// Rank orders stats under policy and assigns contiguous 1-based ranks.
// Players are first ordered by ID and then stably sorted, so identical input
// always gives identical output and residual ties stay in ID order with
// TiedWithPrevious set.
func Rank(stats map[string]*entities.PlayerStat, policy Policy) []entities.RankedPlayer {
	ranked := make([]entities.RankedPlayer, 0, len(stats))
	for playerID, stat := range stats {
		snapshot := *stat
		snapshot.OpponentIDs = append([]string(nil), stat.OpponentIDs...)
		ranked = append(ranked, entities.RankedPlayer{
			PlayerID:             playerID,
			Stat:                 snapshot,
			OpponentMatchWinRate: OpponentMatchWinRate(stats, playerID),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].PlayerID < ranked[j].PlayerID
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return policy.compare(&ranked[i], &ranked[j]) < 0
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
		if i > 0 && policy.compare(&ranked[i-1], &ranked[i]) == 0 {
			ranked[i].TiedWithPrevious = true
		}
	}
	return ranked
}

// RankMatches aggregates matches and ranks them under policy
func RankMatches(matches []*entities.MatchResult, policy Policy) ([]entities.RankedPlayer, error) {
	stats, err := Aggregate(matches)
	if err != nil {
		return nil, err
	}
	return Rank(stats, policy), nil
}
