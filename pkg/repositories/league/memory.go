package league

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fadedpez/tucoleague/pkg/entities"
	"github.com/fadedpez/tucoleague/pkg/repositories/wallet"
	"github.com/google/uuid"
)

// MemoryRepository implements Repository using in-memory storage. Wallet
// credits from a commit go to the paired wallet repository under the same lock.
type MemoryRepository struct {
	mu            sync.Mutex
	sessions      map[string]*entities.Session
	matches       map[string][]*entities.MatchResult
	breakdowns    []*entities.WalletPointBreakdown
	offers        map[string]entities.OfferState
	victoryPoints map[string][]*entities.VictoryPoint
	wallets       *wallet.MemoryRepository
}

// NewMemoryRepository creates a new in-memory league repository
func NewMemoryRepository(wallets *wallet.MemoryRepository) *MemoryRepository {
	return &MemoryRepository{
		sessions:      make(map[string]*entities.Session),
		matches:       make(map[string][]*entities.MatchResult),
		offers:        make(map[string]entities.OfferState),
		victoryPoints: make(map[string][]*entities.VictoryPoint),
		wallets:       wallets,
	}
}

func copySession(s *entities.Session) *entities.Session {
	c := *s
	for i, p := range s.Placements {
		if p != nil {
			id := *p
			c.Placements[i] = &id
		}
	}
	if s.FinalizedAt != nil {
		t := *s.FinalizedAt
		c.FinalizedAt = &t
	}
	return &c
}

// CreateSession stores a new session
func (r *MemoryRepository) CreateSession(ctx context.Context, session *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.Active {
		for _, s := range r.sessions {
			s.Active = false
		}
	}
	r.sessions[session.ID] = copySession(session)
	return nil
}

// GetSession retrieves a session by ID
func (r *MemoryRepository) GetSession(ctx context.Context, sessionID string) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(s), nil
}

// GetActiveSession retrieves the active session
func (r *MemoryRepository) GetActiveSession(ctx context.Context) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.Active {
			return copySession(s), nil
		}
	}
	return nil, ErrNoActiveSession
}

// ActivateSession makes sessionID the only active session
func (r *MemoryRepository) ActivateSession(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	for id, s := range r.sessions {
		s.Active = id == sessionID
	}
	return nil
}

// RecordMatchResult inserts or replaces a match result by ID
func (r *MemoryRepository) RecordMatchResult(ctx context.Context, match *entities.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[match.SessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if s.HasAnyPlacement() {
		return ErrAlreadyFinalized
	}
	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now()
	}

	m := *match
	list := r.matches[match.SessionID]
	for i, existing := range list {
		if existing.ID == match.ID {
			list[i] = &m
			return nil
		}
	}
	r.matches[match.SessionID] = append(list, &m)
	return nil
}

// ListMatchResults returns a session's pairings ordered by round
func (r *MemoryRepository) ListMatchResults(ctx context.Context, sessionID string) ([]*entities.MatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}

	result := make([]*entities.MatchResult, 0, len(r.matches[sessionID]))
	for _, m := range r.matches[sessionID] {
		c := *m
		result = append(result, &c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Round < result[j].Round
	})
	return result, nil
}

// SetPlacements writes the six placements if none are set
func (r *MemoryRepository) SetPlacements(ctx context.Context, sessionID string, placements [entities.PlacementCount]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if s.HasAnyPlacement() {
		return ErrAlreadyFinalized
	}

	for i := range placements {
		id := placements[i]
		s.Placements[i] = &id
	}
	now := time.Now()
	s.FinalizedAt = &now
	r.offers[sessionID] = entities.InitialOfferState()
	return nil
}

// SaveBreakdown stores a breakdown, deactivating the rest when it is active
func (r *MemoryRepository) SaveBreakdown(ctx context.Context, breakdown *entities.WalletPointBreakdown) error {
	if err := breakdown.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if breakdown.ID == "" {
		breakdown.ID = uuid.New().String()
	}
	if breakdown.CreatedAt.IsZero() {
		breakdown.CreatedAt = time.Now()
	}
	if breakdown.Active {
		for _, b := range r.breakdowns {
			b.Active = false
		}
	}
	b := *breakdown
	r.breakdowns = append(r.breakdowns, &b)
	return nil
}

// GetActiveBreakdown returns the active breakdown
func (r *MemoryRepository) GetActiveBreakdown(ctx context.Context) (*entities.WalletPointBreakdown, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.breakdowns) - 1; i >= 0; i-- {
		if r.breakdowns[i].Active {
			b := *r.breakdowns[i]
			return &b, nil
		}
	}
	return nil, ErrNoActiveBreakdown
}

func (r *MemoryRepository) offerState(sessionID string) entities.OfferState {
	if state, ok := r.offers[sessionID]; ok {
		return state
	}
	return entities.InitialOfferState()
}

// GetOfferState returns the session's offer position
func (r *MemoryRepository) GetOfferState(ctx context.Context, sessionID string) (entities.OfferState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return entities.OfferState{}, ErrSessionNotFound
	}
	return r.offerState(sessionID), nil
}

// AdvanceOffer moves the offer from fromRank to toRank
func (r *MemoryRepository) AdvanceOffer(ctx context.Context, sessionID string, fromRank, toRank int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if s.VictoryPointsAssigned {
		return ErrAlreadyAssigned
	}
	if !offerAt(r.offerState(sessionID), fromRank) {
		return ErrOfferMoved
	}

	state := entities.Offered(toRank)
	state.UpdatedAt = time.Now()
	r.offers[sessionID] = state
	return nil
}

// CommitVictoryPoint applies a grant as one unit
func (r *MemoryRepository) CommitVictoryPoint(ctx context.Context, grant *entities.VictoryPointGrant) (*entities.VictoryPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[grant.SessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.VictoryPointsAssigned {
		return nil, ErrAlreadyAssigned
	}
	if !s.Active {
		return nil, ErrSessionInactive
	}
	if !offerAt(r.offerState(grant.SessionID), grant.OfferedRank) {
		return nil, ErrOfferMoved
	}

	if err := r.wallets.ApplyCredits(grant.Transactions); err != nil {
		return nil, err
	}

	now := time.Now()
	vp := &entities.VictoryPoint{
		ID:        uuid.New().String(),
		PlayerID:  grant.PlayerID,
		SessionID: grant.SessionID,
		CreatedAt: now,
	}
	r.victoryPoints[grant.SessionID] = append(r.victoryPoints[grant.SessionID], vp)

	s.VictoryPointsAssigned = true
	s.WalletPointsAssigned = true

	state := entities.Accepted(grant.PlayerID)
	state.UpdatedAt = now
	r.offers[grant.SessionID] = state

	vpCopy := *vp
	return &vpCopy, nil
}

// ListVictoryPoints returns the Victory Points granted in a session
func (r *MemoryRepository) ListVictoryPoints(ctx context.Context, sessionID string) ([]*entities.VictoryPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*entities.VictoryPoint, 0, len(r.victoryPoints[sessionID]))
	for _, vp := range r.victoryPoints[sessionID] {
		c := *vp
		result = append(result, &c)
	}
	return result, nil
}

// Close is a no-op for the memory repository
func (r *MemoryRepository) Close() error {
	return nil
}
