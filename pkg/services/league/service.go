package league

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/tucoleague/internal/logging"
	"github.com/fadedpez/tucoleague/internal/metrics"
	"github.com/fadedpez/tucoleague/internal/types"
	"github.com/fadedpez/tucoleague/pkg/entities"
	"github.com/fadedpez/tucoleague/pkg/notify"
	"github.com/fadedpez/tucoleague/pkg/ranking"
	leagueRepo "github.com/fadedpez/tucoleague/pkg/repositories/league"
)

// Operation names reported to metrics
const (
	opStandings   = "get_standings"
	opFinalize    = "finalize_standings"
	opOfferStatus = "offer_status"
	opAccept      = "accept_victory_point"
	opPass        = "pass_victory_point"
	opRemind      = "remind_pending_offer"
)

// Service runs standings, finalize and the Victory Point offer for sessions
type Service struct {
	repo     leagueRepo.Repository
	notifier notify.Notifier
	logger   *logging.Logger
	metrics  *metrics.LeagueMetrics
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the collectors the service reports to
func WithMetrics(m *metrics.LeagueMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a league service. A nil notifier discards events.
func NewService(repo leagueRepo.Repository, notifier notify.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logging.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Standings is a session's ranking under the standings policy
type Standings struct {
	Session          *entities.Session
	Players          []entities.RankedPlayer
	UnplayedPairings int
}

// FinalizeResult describes a completed finalize
type FinalizeResult struct {
	Session    *entities.Session
	Placements []entities.RankedPlayer
}

// OfferStatus is the current state of a session's Victory Point offer
type OfferStatus struct {
	SessionID       string
	SessionNumber   int
	CanOffer        bool
	AlreadyAssigned bool
	Reason          string
	RankedPlayers   []entities.RankedPlayer
	State           entities.OfferState
	CurrentPlayerID string // player at the offered rank, empty once accepted
}

// AcceptResult describes a committed Victory Point
type AcceptResult struct {
	SessionID     string
	SessionNumber int
	GrantedTo     string
	Rank          int
	VictoryPoint  *entities.VictoryPoint
	WalletAwards  []entities.WalletAward
}

// PassResult describes the offer after a pass. AutoAssigned is set when the
// last ranked player was passed to and received the Victory Point.
type PassResult struct {
	NextRank     int
	NextPlayerID string
	AutoAssigned bool
	Accept       *AcceptResult
}

// GetStandings ranks a session's players. An empty sessionID means the active session.
func (s *Service) GetStandings(ctx context.Context, sessionID string) (standings *Standings, err error) {
	defer func() { s.observe(opStandings, err) }()

	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	matches, err := s.repo.ListMatchResults(ctx, session.ID)
	if err != nil {
		return nil, mapRepoError(err, "failed to load match results")
	}

	players, err := ranking.RankMatches(matches, ranking.StandingsPolicy)
	if err != nil {
		return nil, err
	}

	return &Standings{
		Session:          session,
		Players:          players,
		UnplayedPairings: ranking.CountUnplayed(matches),
	}, nil
}

// FinalizeStandings freezes the top six standings of the active session into its placements
func (s *Service) FinalizeStandings(ctx context.Context, actor entities.Actor, sessionID string) (result *FinalizeResult, err error) {
	defer func() { s.observe(opFinalize, err) }()

	if err := requireAdmin(actor, "finalize standings"); err != nil {
		return nil, err
	}

	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active {
		return nil, types.NewLeagueErrorf(types.ErrStateConflict, "session #%d is not the active session", session.Number)
	}
	if session.HasAnyPlacement() {
		return nil, types.NewLeagueErrorf(types.ErrStateConflict, "session #%d standings are already finalized", session.Number)
	}

	matches, err := s.repo.ListMatchResults(ctx, session.ID)
	if err != nil {
		return nil, mapRepoError(err, "failed to load match results")
	}
	if unplayed := ranking.CountUnplayed(matches); unplayed > 0 {
		return nil, types.NewLeagueErrorf(types.ErrValidation, "%d pairing(s) have not been played", unplayed)
	}

	players, err := ranking.RankMatches(matches, ranking.StandingsPolicy)
	if err != nil {
		return nil, err
	}
	if len(players) < entities.PlacementCount {
		return nil, types.NewLeagueErrorf(types.ErrValidation,
			"at least %d players are required to finalize, found %d", entities.PlacementCount, len(players))
	}

	var placements [entities.PlacementCount]string
	for i := range placements {
		placements[i] = players[i].PlayerID
	}
	if err := s.repo.SetPlacements(ctx, session.ID, placements); err != nil {
		return nil, mapRepoError(err, "failed to write placements")
	}

	finalized, err := s.repo.GetSession(ctx, session.ID)
	if err != nil {
		return nil, mapRepoError(err, "failed to reload session")
	}
	s.logger.Info("[LEAGUE] Session #%d standings finalized by %s", finalized.Number, actor.ID)

	s.notify(ctx, notify.Event{
		Type:          notify.EventStandingsFinalized,
		SessionID:     finalized.ID,
		SessionNumber: finalized.Number,
	})

	return &FinalizeResult{
		Session:    finalized,
		Placements: players[:entities.PlacementCount],
	}, nil
}

// GetVictoryPointOfferStatus reports whether a session can offer its Victory Point and to whom
func (s *Service) GetVictoryPointOfferStatus(ctx context.Context, sessionID string) (status *OfferStatus, err error) {
	defer func() { s.observe(opOfferStatus, err) }()

	oc, err := s.loadOffer(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	status = &OfferStatus{
		SessionID:       oc.session.ID,
		SessionNumber:   oc.session.Number,
		CanOffer:        oc.blocked == nil,
		AlreadyAssigned: oc.session.VictoryPointsAssigned,
		RankedPlayers:   oc.ranked,
		State:           oc.state,
	}
	if oc.blocked != nil {
		status.Reason = oc.blocked.Message
	}
	if player, ok := oc.playerAt(oc.state.Rank); ok && !oc.state.IsAccepted() {
		status.CurrentPlayerID = player.PlayerID
	}
	return status, nil
}

// RemindPendingOffer nudges the player holding the active session's open
// offer. It reports whether a reminder went out; a missing active session or a
// session that cannot offer is not an error.
func (s *Service) RemindPendingOffer(ctx context.Context) (sent bool, err error) {
	defer func() { s.observe(opRemind, err) }()

	oc, err := s.loadOffer(ctx, "")
	if err != nil {
		if types.CodeOf(err) == types.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if oc.blocked != nil {
		return false, nil
	}

	player, ok := oc.playerAt(oc.state.Rank)
	if !ok {
		return false, nil
	}
	s.notify(ctx, notify.Event{
		Type:          notify.EventOfferPending,
		SessionID:     oc.session.ID,
		SessionNumber: oc.session.Number,
		PlayerID:      player.PlayerID,
	})
	return true, nil
}

// AcceptVictoryPoint grants the Victory Point to the player currently being
// offered it and pays the wallet awards to the rest of the ranking. Only admins
// record an acceptance.
func (s *Service) AcceptVictoryPoint(ctx context.Context, actor entities.Actor, sessionID, playerID string) (result *AcceptResult, err error) {
	defer func() { s.observe(opAccept, err) }()

	if err := requireAdmin(actor, "accept the Victory Point"); err != nil {
		return nil, err
	}
	if playerID == "" {
		return nil, types.NewLeagueError(types.ErrValidation, "player ID is required")
	}

	oc, err := s.loadOffer(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if oc.blocked != nil {
		return nil, oc.blocked
	}

	rank := oc.indexOf(playerID) + 1
	if rank == 0 {
		return nil, types.NewLeagueErrorf(types.ErrStateConflict, "player %s is not in the current offer ranking", playerID)
	}
	if rank != oc.state.Rank {
		return nil, types.NewLeagueErrorf(types.ErrStateConflict,
			"the offer is at rank %d, player %s is ranked %d", oc.state.Rank, playerID, rank)
	}

	return s.commit(ctx, oc, rank)
}

// PassVictoryPoint moves the offer from currentRank to the next player. Passing
// at the last rank assigns the Victory Point to the last ranked player.
func (s *Service) PassVictoryPoint(ctx context.Context, actor entities.Actor, sessionID string, currentRank int) (result *PassResult, err error) {
	defer func() { s.observe(opPass, err) }()

	if err := requireAdmin(actor, "pass the Victory Point"); err != nil {
		return nil, err
	}

	oc, err := s.loadOffer(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, ok := oc.playerAt(currentRank); !ok {
		return nil, types.NewLeagueErrorf(types.ErrValidation,
			"rank %d is outside the offer ranking of %d players", currentRank, len(oc.ranked))
	}
	if oc.blocked != nil {
		return nil, oc.blocked
	}
	if oc.state.Rank != currentRank {
		return nil, types.NewLeagueErrorf(types.ErrStateConflict,
			"the offer is at rank %d, not %d", oc.state.Rank, currentRank)
	}

	if currentRank < len(oc.ranked) {
		next := oc.ranked[currentRank]
		if err := s.repo.AdvanceOffer(ctx, oc.session.ID, currentRank, next.Rank); err != nil {
			return nil, mapRepoError(err, "failed to advance offer")
		}
		s.logger.Info("[LEAGUE] Session #%d Victory Point passed from rank %d to %s",
			oc.session.Number, currentRank, next.PlayerID)
		return &PassResult{
			NextRank:     next.Rank,
			NextPlayerID: next.PlayerID,
		}, nil
	}

	accept, err := s.commit(ctx, oc, currentRank)
	if err != nil {
		return nil, err
	}
	return &PassResult{
		NextRank:     currentRank,
		NextPlayerID: accept.GrantedTo,
		AutoAssigned: true,
		Accept:       accept,
	}, nil
}

// offerContext is everything loaded to decide an offer operation
type offerContext struct {
	session   *entities.Session
	breakdown *entities.WalletPointBreakdown
	ranked    []entities.RankedPlayer
	state     entities.OfferState
	blocked   *types.LeagueError // set when the session cannot offer
}

func (oc *offerContext) playerAt(rank int) (entities.RankedPlayer, bool) {
	if rank < 1 || rank > len(oc.ranked) {
		return entities.RankedPlayer{}, false
	}
	return oc.ranked[rank-1], true
}

func (oc *offerContext) indexOf(playerID string) int {
	for i, p := range oc.ranked {
		if p.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// loadOffer reads the session, recomputes its offer ranking and checks the
// preconditions for offering. Failed preconditions are reported in blocked
// so the status view can still show the ranking.
func (s *Service) loadOffer(ctx context.Context, sessionID string) (*offerContext, error) {
	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	matches, err := s.repo.ListMatchResults(ctx, session.ID)
	if err != nil {
		return nil, mapRepoError(err, "failed to load match results")
	}
	ranked, err := ranking.RankMatches(matches, ranking.OfferRankingPolicy)
	if err != nil {
		return nil, err
	}

	state, err := s.repo.GetOfferState(ctx, session.ID)
	if err != nil {
		return nil, mapRepoError(err, "failed to load offer state")
	}

	oc := &offerContext{
		session: session,
		ranked:  ranked,
		state:   state,
	}

	breakdown, err := s.repo.GetActiveBreakdown(ctx)
	switch {
	case err == nil:
		oc.breakdown = breakdown
	case !errors.Is(err, leagueRepo.ErrNoActiveBreakdown):
		return nil, mapRepoError(err, "failed to load wallet point breakdown")
	}

	switch {
	case session.VictoryPointsAssigned:
		oc.blocked = types.NewLeagueErrorf(types.ErrStateConflict, "session #%d Victory Point is already assigned", session.Number)
	case !session.Active:
		oc.blocked = types.NewLeagueErrorf(types.ErrStateConflict, "session #%d is not the active session", session.Number)
	case !session.IsFinalized():
		oc.blocked = types.NewLeagueErrorf(types.ErrStateConflict, "session #%d standings are not finalized", session.Number)
	case oc.breakdown == nil:
		oc.blocked = types.NewLeagueError(types.ErrValidation, "no wallet point breakdown is configured")
	case len(ranked) == 0:
		oc.blocked = types.NewLeagueErrorf(types.ErrValidation, "session #%d has no eligible players", session.Number)
	}
	return oc, nil
}

// commit grants the Victory Point to the player at rank and pays the awards
func (s *Service) commit(ctx context.Context, oc *offerContext, rank int) (*AcceptResult, error) {
	winner, ok := oc.playerAt(rank)
	if !ok {
		return nil, types.NewLeagueErrorf(types.ErrStateConflict, "rank %d is no longer in the offer ranking", rank)
	}

	awards := BuildAwards(oc.ranked, winner.PlayerID, oc.breakdown)
	grant := &entities.VictoryPointGrant{
		SessionID:     oc.session.ID,
		SessionNumber: oc.session.Number,
		PlayerID:      winner.PlayerID,
		OfferedRank:   rank,
		Awards:        awards,
		Transactions:  awardTransactions(oc.session, awards),
	}

	vp, err := s.repo.CommitVictoryPoint(ctx, grant)
	if err != nil {
		return nil, mapRepoError(err, "failed to commit Victory Point")
	}

	var total int64
	for _, a := range awards {
		total += a.Amount
	}
	s.metrics.AddWalletPoints(total)
	s.logger.Info("[LEAGUE] Session #%d Victory Point granted to %s at rank %d, %d wallet points over %d awards",
		oc.session.Number, winner.PlayerID, rank, total, len(awards))

	for _, eventType := range []notify.EventType{notify.EventLeaderboardUpdated, notify.EventWalletsUpdated} {
		s.notify(ctx, notify.Event{
			Type:          eventType,
			SessionID:     oc.session.ID,
			SessionNumber: oc.session.Number,
			PlayerID:      winner.PlayerID,
		})
	}

	return &AcceptResult{
		SessionID:     oc.session.ID,
		SessionNumber: oc.session.Number,
		GrantedTo:     winner.PlayerID,
		Rank:          rank,
		VictoryPoint:  vp,
		WalletAwards:  awards,
	}, nil
}

// BuildAwards computes the wallet awards for a Victory Point granted to
// winnerID. The winner and then the lowest ranked remaining player are
// removed; the rest are paid breakdown[k] by position k where it is positive.
func BuildAwards(ranked []entities.RankedPlayer, winnerID string, breakdown *entities.WalletPointBreakdown) []entities.WalletAward {
	remaining := make([]entities.RankedPlayer, 0, len(ranked))
	for _, p := range ranked {
		if p.PlayerID != winnerID {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) > 0 {
		remaining = remaining[:len(remaining)-1]
	}

	awards := make([]entities.WalletAward, 0, len(remaining))
	if breakdown == nil {
		return awards
	}
	for k, p := range remaining {
		amount := breakdown.At(k)
		if amount <= 0 {
			continue
		}
		awards = append(awards, entities.WalletAward{
			PlayerID: p.PlayerID,
			Rank:     p.Rank,
			Place:    k + 1,
			Amount:   amount,
		})
	}
	return awards
}

func awardTransactions(session *entities.Session, awards []entities.WalletAward) []*entities.Transaction {
	txs := make([]*entities.Transaction, 0, len(awards))
	for _, a := range awards {
		txs = append(txs, &entities.Transaction{
			UserID:      a.PlayerID,
			SessionID:   session.ID,
			Amount:      a.Amount,
			Type:        entities.TransactionTypeVictoryPointAward,
			Description: fmt.Sprintf("Session #%d Victory Point offer: %s place award", session.Number, Ordinal(a.Place)),
		})
	}
	return txs
}

// resolveSession loads sessionID, or the active session when it is empty
func (s *Service) resolveSession(ctx context.Context, sessionID string) (*entities.Session, error) {
	if sessionID == "" {
		session, err := s.repo.GetActiveSession(ctx)
		if err != nil {
			return nil, mapRepoError(err, "failed to load active session")
		}
		return session, nil
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, mapRepoError(err, "failed to load session")
	}
	return session, nil
}

// notify dispatches an event, logging and counting a failure without returning it
func (s *Service) notify(ctx context.Context, event notify.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.LogError(types.WrapError(types.ErrExternalDependency,
			fmt.Sprintf("failed to dispatch %s notification for session #%d", event.Type, event.SessionNumber), err))
		s.metrics.NotificationFailed(string(event.Type))
	}
}

func (s *Service) observe(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = string(types.CodeOf(err))
	}
	s.metrics.ObserveOperation(operation, outcome)
}

// mapRepoError converts repository sentinels into league error codes
func mapRepoError(err error, message string) error {
	var leagueErr *types.LeagueError
	switch {
	case types.As(err, &leagueErr):
		return leagueErr
	case errors.Is(err, leagueRepo.ErrSessionNotFound):
		return types.WrapError(types.ErrNotFound, "session not found", err)
	case errors.Is(err, leagueRepo.ErrNoActiveSession):
		return types.WrapError(types.ErrNotFound, "there is no active session", err)
	case errors.Is(err, leagueRepo.ErrNoActiveBreakdown):
		return types.WrapError(types.ErrValidation, "no wallet point breakdown is configured", err)
	case errors.Is(err, leagueRepo.ErrAlreadyFinalized):
		return types.WrapError(types.ErrStateConflict, "standings are already finalized", err)
	case errors.Is(err, leagueRepo.ErrAlreadyAssigned):
		return types.WrapError(types.ErrStateConflict, "the Victory Point is already assigned", err)
	case errors.Is(err, leagueRepo.ErrSessionInactive):
		return types.WrapError(types.ErrStateConflict, "the session is no longer active", err)
	case errors.Is(err, leagueRepo.ErrOfferMoved):
		return types.WrapError(types.ErrStateConflict, "the offer has moved on", err)
	default:
		return types.WrapError(types.ErrInternal, message, err)
	}
}
