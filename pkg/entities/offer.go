package entities

import "time"

// OfferStateKind tags an OfferState
type OfferStateKind string

const (
	OfferStateOffered  OfferStateKind = "OFFERED"
	OfferStateAccepted OfferStateKind = "ACCEPTED"
)

// OfferState is the persisted position of a session's Victory Point offer.
// Offered carries the rank currently being offered; Accepted carries the
// player who received the Victory Point and is absorbing.
type OfferState struct {
	Kind      OfferStateKind
	Rank      int
	PlayerID  string
	UpdatedAt time.Time
}

// InitialOfferState is the state of a session nobody has passed on yet
func InitialOfferState() OfferState {
	return OfferState{Kind: OfferStateOffered, Rank: 1}
}

// Offered returns the state offering rank
func Offered(rank int) OfferState {
	return OfferState{Kind: OfferStateOffered, Rank: rank}
}

// Accepted returns the absorbing state for playerID
func Accepted(playerID string) OfferState {
	return OfferState{Kind: OfferStateAccepted, PlayerID: playerID}
}

// IsAccepted reports whether the offer has been taken
func (s OfferState) IsAccepted() bool {
	return s.Kind == OfferStateAccepted
}
