package entities

import (
	"errors"
	"fmt"
	"time"
)

// GamesToWinMatch is the number of game wins that decides a best-of-three match
const GamesToWinMatch = 2

// ErrInvalidMatch is returned by MatchResult.Validate for impossible records
var ErrInvalidMatch = errors.New("invalid match result")

// MatchOutcome classifies a recorded pairing
type MatchOutcome int

const (
	MatchUnplayed   MatchOutcome = iota // 0-0
	MatchIncomplete                     // 1-0 or 0-1, games count but no match result
	MatchDraw                           // 1-1
	MatchDecided                        // one side reached GamesToWinMatch
)

func (o MatchOutcome) String() string {
	switch o {
	case MatchUnplayed:
		return "unplayed"
	case MatchIncomplete:
		return "incomplete"
	case MatchDraw:
		return "draw"
	case MatchDecided:
		return "decided"
	}
	return "unknown"
}

// MatchResult is one pairing of two players within a session round
type MatchResult struct {
	ID          string
	SessionID   string
	Round       int
	Player1ID   string
	Player2ID   string
	Player1Wins int
	Player2Wins int
	CreatedAt   time.Time
}

// Validate rejects win counts outside [0, GamesToWinMatch], a 2-2 record,
// missing player IDs and self pairings.
func (m *MatchResult) Validate() error {
	if m.Player1ID == "" || m.Player2ID == "" {
		return fmt.Errorf("%w: match %s is missing a player", ErrInvalidMatch, m.ID)
	}
	if m.Player1ID == m.Player2ID {
		return fmt.Errorf("%w: match %s pairs %s with themself", ErrInvalidMatch, m.ID, m.Player1ID)
	}
	for _, wins := range []int{m.Player1Wins, m.Player2Wins} {
		if wins < 0 || wins > GamesToWinMatch {
			return fmt.Errorf("%w: match %s has win count %d outside 0..%d", ErrInvalidMatch, m.ID, wins, GamesToWinMatch)
		}
	}
	if m.Player1Wins == GamesToWinMatch && m.Player2Wins == GamesToWinMatch {
		return fmt.Errorf("%w: match %s cannot be won by both players", ErrInvalidMatch, m.ID)
	}
	return nil
}

// Outcome classifies the match. The record is assumed to be valid.
func (m *MatchResult) Outcome() MatchOutcome {
	switch {
	case m.Player1Wins == 0 && m.Player2Wins == 0:
		return MatchUnplayed
	case m.Player1Wins == GamesToWinMatch || m.Player2Wins == GamesToWinMatch:
		return MatchDecided
	case m.Player1Wins == m.Player2Wins:
		return MatchDraw
	}
	return MatchIncomplete
}

// IsPlayed reports whether at least one game was recorded
func (m *MatchResult) IsPlayed() bool {
	return m.Outcome() != MatchUnplayed
}

// Winner returns the winner and loser of a decided match along with the
// games each won. ok is false for any other outcome.
func (m *MatchResult) Winner() (winner, loser string, winnerGames, loserGames int, ok bool) {
	if m.Outcome() != MatchDecided {
		return "", "", 0, 0, false
	}
	if m.Player1Wins == GamesToWinMatch {
		return m.Player1ID, m.Player2ID, m.Player1Wins, m.Player2Wins, true
	}
	return m.Player2ID, m.Player1ID, m.Player2Wins, m.Player1Wins, true
}
