package league

import (
	"context"
	"errors"

	"github.com/fadedpez/tucoleague/pkg/entities"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoActiveSession   = errors.New("no active session")
	ErrNoActiveBreakdown = errors.New("no active wallet point breakdown")
	ErrAlreadyFinalized  = errors.New("standings already finalized")
	ErrAlreadyAssigned   = errors.New("victory point already assigned")
	ErrOfferMoved        = errors.New("offer is no longer at the expected rank")
	ErrSessionInactive   = errors.New("session is not active")
)

// Repository persists sessions, their match results and the Victory Point offer.
// Every method that changes finalize or offer state is a compare-and-set: it
// either applies completely or reports the conflict without writing.
type Repository interface {
	// CreateSession stores a new inactive session
	CreateSession(ctx context.Context, session *entities.Session) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, sessionID string) (*entities.Session, error)

	// GetActiveSession retrieves the single active session
	GetActiveSession(ctx context.Context) (*entities.Session, error)

	// ActivateSession marks sessionID active and every other session inactive
	ActivateSession(ctx context.Context, sessionID string) error

	// RecordMatchResult inserts or replaces a match result. Returns
	// ErrAlreadyFinalized once any placement of the session is set.
	RecordMatchResult(ctx context.Context, match *entities.MatchResult) error

	// ListMatchResults returns every pairing in a session ordered by round
	ListMatchResults(ctx context.Context, sessionID string) ([]*entities.MatchResult, error)

	// SetPlacements writes all six placements if none are set yet, and
	// resets the offer to its first rank. Returns ErrAlreadyFinalized otherwise.
	SetPlacements(ctx context.Context, sessionID string, placements [entities.PlacementCount]string) error

	// SaveBreakdown stores a breakdown. An active breakdown deactivates the rest.
	SaveBreakdown(ctx context.Context, breakdown *entities.WalletPointBreakdown) error

	// GetActiveBreakdown returns the active breakdown or ErrNoActiveBreakdown
	GetActiveBreakdown(ctx context.Context) (*entities.WalletPointBreakdown, error)

	// GetOfferState returns the session's offer position, Offered(1) when none is stored
	GetOfferState(ctx context.Context, sessionID string) (entities.OfferState, error)

	// AdvanceOffer moves the offer from fromRank to toRank. Returns
	// ErrAlreadyAssigned after a commit and ErrOfferMoved if the offer is not at fromRank.
	AdvanceOffer(ctx context.Context, sessionID string, fromRank, toRank int) error

	// CommitVictoryPoint applies a grant as one unit: sets both assigned flags,
	// inserts the Victory Point, applies every wallet transaction and records
	// the accepted offer state. Returns ErrAlreadyAssigned, ErrSessionInactive
	// or ErrOfferMoved without writing anything when the guard fails.
	CommitVictoryPoint(ctx context.Context, grant *entities.VictoryPointGrant) (*entities.VictoryPoint, error)

	// ListVictoryPoints returns the Victory Points granted in a session
	ListVictoryPoints(ctx context.Context, sessionID string) ([]*entities.VictoryPoint, error)

	Close() error
}

// offerAt reports whether state is still offering rank
func offerAt(state entities.OfferState, rank int) bool {
	return state.Kind == entities.OfferStateOffered && state.Rank == rank
}
