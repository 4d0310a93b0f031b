package league

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fadedpez/tucoleague/internal/logging"
	"github.com/fadedpez/tucoleague/internal/metrics"
	"github.com/fadedpez/tucoleague/internal/types"
	"github.com/fadedpez/tucoleague/pkg/entities"
	"github.com/fadedpez/tucoleague/pkg/notify"
	notifymock "github.com/fadedpez/tucoleague/pkg/notify/mock"
	leagueRepo "github.com/fadedpez/tucoleague/pkg/repositories/league"
	walletRepo "github.com/fadedpez/tucoleague/pkg/repositories/wallet"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var (
	admin  = entities.Actor{ID: "admin", Admin: true}
	player = func(id string) entities.Actor { return entities.Actor{ID: id} }
)

// eventType matches a notify.Event by its type
type eventType notify.EventType

func (e eventType) Matches(x any) bool {
	event, ok := x.(notify.Event)
	return ok && event.Type == notify.EventType(e)
}

func (e eventType) String() string {
	return fmt.Sprintf("event of type %s", string(e))
}

type ServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	notifier *notifymock.MockNotifier
	wallets  *walletRepo.MemoryRepository
	repo     *leagueRepo.MemoryRepository
	logs     *bytes.Buffer
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.notifier = notifymock.NewMockNotifier(s.ctrl)
	s.wallets = walletRepo.NewMemoryRepository()
	s.repo = leagueRepo.NewMemoryRepository(s.wallets)
	s.logs = &bytes.Buffer{}
	s.service = NewService(s.repo, s.notifier, WithLogger(logging.NewLoggerWithWriter(logging.DEBUG, s.logs)))

	s.seedSession("s1", 7, threeRounds())
	s.Require().NoError(s.repo.SaveBreakdown(s.ctx, &entities.WalletPointBreakdown{
		Active:  true,
		Amounts: [entities.PlacementCount]int64{10, 8, 6, 4, 2, 1},
	}))
}

func (s *ServiceTestSuite) seedSession(id string, number int, matches []*entities.MatchResult) {
	s.Require().NoError(s.repo.CreateSession(s.ctx, &entities.Session{ID: id, Number: number}))
	s.Require().NoError(s.repo.ActivateSession(s.ctx, id))
	for _, m := range matches {
		m.SessionID = id
		s.Require().NoError(s.repo.RecordMatchResult(s.ctx, m))
	}
}

func result(round int, p1, p2 string, w1, w2 int) *entities.MatchResult {
	return &entities.MatchResult{Round: round, Player1ID: p1, Player2ID: p2, Player1Wins: w1, Player2Wins: w2}
}

// threeRounds ranks p1 p5 p3 p2 p4 p6 under the offer policy and
// p1 p5 p3 p4 p2 p6 under the standings policy.
func threeRounds() []*entities.MatchResult {
	return []*entities.MatchResult{
		result(1, "p1", "p2", 2, 0),
		result(1, "p3", "p4", 2, 1),
		result(1, "p5", "p6", 2, 0),
		result(2, "p1", "p3", 2, 0),
		result(2, "p5", "p2", 2, 1),
		result(2, "p4", "p6", 2, 0),
		result(3, "p1", "p5", 2, 1),
		result(3, "p3", "p6", 2, 0),
		result(3, "p2", "p4", 2, 1),
	}
}

func ids(players []entities.RankedPlayer) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.PlayerID
	}
	return out
}

func (s *ServiceTestSuite) expectEvents(events ...notify.EventType) {
	for _, e := range events {
		s.notifier.EXPECT().Notify(gomock.Any(), eventType(e)).Return(nil)
	}
}

func (s *ServiceTestSuite) finalize() {
	s.expectEvents(notify.EventStandingsFinalized)
	_, err := s.service.FinalizeStandings(s.ctx, admin, "s1")
	s.Require().NoError(err)
}

func (s *ServiceTestSuite) balance(userID string) int64 {
	w, err := s.wallets.GetWallet(s.ctx, userID)
	if errors.Is(err, walletRepo.ErrWalletNotFound) {
		return 0
	}
	s.Require().NoError(err)
	return w.Balance
}

func (s *ServiceTestSuite) assertCode(err error, code types.ErrorCode) {
	s.Require().Error(err)
	s.Truef(types.IsLeagueError(err, code), "expected %s, got %v", code, err)
}

func (s *ServiceTestSuite) TestGetStandingsDefaultsToActiveSession() {
	standings, err := s.service.GetStandings(s.ctx, "")
	s.Require().NoError(err)

	s.Equal("s1", standings.Session.ID)
	s.Equal([]string{"p1", "p5", "p3", "p4", "p2", "p6"}, ids(standings.Players))
	s.Equal(0, standings.UnplayedPairings)
	s.Equal(3, standings.Players[0].Stat.MatchWins)
}

func (s *ServiceTestSuite) TestGetStandingsErrors() {
	_, err := s.service.GetStandings(s.ctx, "missing")
	s.assertCode(err, types.ErrNotFound)

	empty := NewService(leagueRepo.NewMemoryRepository(walletRepo.NewMemoryRepository()), nil)
	_, err = empty.GetStandings(s.ctx, "")
	s.assertCode(err, types.ErrNotFound)
}

func (s *ServiceTestSuite) TestFinalizeWritesTopSix() {
	s.expectEvents(notify.EventStandingsFinalized)

	result, err := s.service.FinalizeStandings(s.ctx, admin, "s1")
	s.Require().NoError(err)

	s.Equal([]string{"p1", "p5", "p3", "p4", "p2", "p6"}, result.Session.PlacementIDs())
	s.Equal([]string{"p1", "p5", "p3", "p4", "p2", "p6"}, ids(result.Placements))
	s.True(result.Session.IsFinalized())
	s.NotNil(result.Session.FinalizedAt)
}

func (s *ServiceTestSuite) TestFinalizeTwiceIsStateConflict() {
	s.finalize()

	_, err := s.service.FinalizeStandings(s.ctx, admin, "s1")
	s.assertCode(err, types.ErrStateConflict)
}

func (s *ServiceTestSuite) TestFinalizeRequiresAdmin() {
	_, err := s.service.FinalizeStandings(s.ctx, player("p1"), "s1")
	s.assertCode(err, types.ErrAuthorization)

	session, err := s.repo.GetSession(s.ctx, "s1")
	s.Require().NoError(err)
	s.False(session.HasAnyPlacement())
}

func (s *ServiceTestSuite) TestFinalizeRequiresSixPlayers() {
	s.seedSession("s2", 8, []*entities.MatchResult{
		result(1, "a", "b", 2, 0),
		result(1, "c", "d", 2, 1),
	})

	_, err := s.service.FinalizeStandings(s.ctx, admin, "s2")
	s.assertCode(err, types.ErrValidation)
}

func (s *ServiceTestSuite) TestFinalizeRejectsUnplayedPairing() {
	matches := threeRounds()
	matches = append(matches, result(4, "p1", "p4", 0, 0))
	s.seedSession("s2", 8, matches)

	_, err := s.service.FinalizeStandings(s.ctx, admin, "s2")
	s.assertCode(err, types.ErrValidation)
}

func (s *ServiceTestSuite) TestFinalizeRequiresActiveSession() {
	s.seedSession("s2", 8, threeRounds())

	_, err := s.service.FinalizeStandings(s.ctx, admin, "s1")
	s.assertCode(err, types.ErrStateConflict)
}

func (s *ServiceTestSuite) TestFinalizeSurvivesNotifierFailure() {
	s.notifier.EXPECT().Notify(gomock.Any(), eventType(notify.EventStandingsFinalized)).
		Return(errors.New("discord unavailable"))

	result, err := s.service.FinalizeStandings(s.ctx, admin, "s1")
	s.Require().NoError(err)
	s.True(result.Session.IsFinalized())
	s.Contains(s.logs.String(), "WARN")
	s.Contains(s.logs.String(), "discord unavailable")
}

func (s *ServiceTestSuite) TestOfferStatusBeforeFinalize() {
	status, err := s.service.GetVictoryPointOfferStatus(s.ctx, "s1")
	s.Require().NoError(err)

	s.False(status.CanOffer)
	s.False(status.AlreadyAssigned)
	s.Contains(status.Reason, "not finalized")
	s.Equal([]string{"p1", "p5", "p3", "p2", "p4", "p6"}, ids(status.RankedPlayers))
}

func (s *ServiceTestSuite) TestOfferStatusAfterFinalize() {
	s.finalize()

	status, err := s.service.GetVictoryPointOfferStatus(s.ctx, "s1")
	s.Require().NoError(err)

	s.True(status.CanOffer)
	s.Empty(status.Reason)
	s.Equal(entities.Offered(1).Kind, status.State.Kind)
	s.Equal(1, status.State.Rank)
	s.Equal("p1", status.CurrentPlayerID)
}

func (s *ServiceTestSuite) TestOfferWithoutBreakdown() {
	repo := leagueRepo.NewMemoryRepository(walletRepo.NewMemoryRepository())
	s.repo = repo
	s.service = NewService(repo, s.notifier)
	s.seedSession("s1", 7, threeRounds())
	s.finalize()

	status, err := s.service.GetVictoryPointOfferStatus(s.ctx, "s1")
	s.Require().NoError(err)
	s.False(status.CanOffer)
	s.Contains(status.Reason, "breakdown")

	_, err = s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p1")
	s.assertCode(err, types.ErrValidation)
}

func (s *ServiceTestSuite) TestAcceptFirstRank() {
	s.finalize()
	s.expectEvents(notify.EventLeaderboardUpdated, notify.EventWalletsUpdated)

	result, err := s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p1")
	s.Require().NoError(err)

	s.Equal("p1", result.GrantedTo)
	s.Equal(1, result.Rank)
	s.Require().NotNil(result.VictoryPoint)
	s.Equal("p1", result.VictoryPoint.PlayerID)
	s.Equal([]entities.WalletAward{
		{PlayerID: "p5", Rank: 2, Place: 1, Amount: 10},
		{PlayerID: "p3", Rank: 3, Place: 2, Amount: 8},
		{PlayerID: "p2", Rank: 4, Place: 3, Amount: 6},
		{PlayerID: "p4", Rank: 5, Place: 4, Amount: 4},
	}, result.WalletAwards)

	s.Equal(int64(10), s.balance("p5"))
	s.Equal(int64(4), s.balance("p4"))
	s.Equal(int64(0), s.balance("p1"))
	s.Equal(int64(0), s.balance("p6"))

	txs, err := s.wallets.GetSessionTransactions(s.ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(txs, 4)
	s.Equal("Session #7 Victory Point offer: 1st place award", txs[0].Description)
	s.Equal(entities.TransactionTypeVictoryPointAward, txs[0].Type)

	session, err := s.repo.GetSession(s.ctx, "s1")
	s.Require().NoError(err)
	s.True(session.VictoryPointsAssigned)
	s.True(session.WalletPointsAssigned)

	state, err := s.repo.GetOfferState(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal(entities.Accepted("p1").Kind, state.Kind)
	s.Equal("p1", state.PlayerID)
}

func (s *ServiceTestSuite) TestAcceptTwiceIsStateConflict() {
	s.finalize()
	s.expectEvents(notify.EventLeaderboardUpdated, notify.EventWalletsUpdated)

	_, err := s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p1")
	s.Require().NoError(err)

	_, err = s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p1")
	s.assertCode(err, types.ErrStateConflict)

	vps, err := s.repo.ListVictoryPoints(s.ctx, "s1")
	s.Require().NoError(err)
	s.Len(vps, 1)

	txs, err := s.wallets.GetSessionTransactions(s.ctx, "s1")
	s.Require().NoError(err)
	s.Len(txs, 4)

	status, err := s.service.GetVictoryPointOfferStatus(s.ctx, "s1")
	s.Require().NoError(err)
	s.False(status.CanOffer)
	s.True(status.AlreadyAssigned)
	s.Empty(status.CurrentPlayerID)
}

func (s *ServiceTestSuite) TestPassCascadeThenAccept() {
	s.finalize()
	s.expectEvents(notify.EventLeaderboardUpdated, notify.EventWalletsUpdated)

	expectedNext := []string{"p5", "p3", "p2", "p4"}
	for rank := 1; rank <= 4; rank++ {
		pass, err := s.service.PassVictoryPoint(s.ctx, admin, "s1", rank)
		s.Require().NoError(err)
		s.False(pass.AutoAssigned)
		s.Equal(rank+1, pass.NextRank)
		s.Equal(expectedNext[rank-1], pass.NextPlayerID)
	}

	result, err := s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p4")
	s.Require().NoError(err)

	s.Equal("p4", result.GrantedTo)
	s.Equal(5, result.Rank)
	s.Equal([]entities.WalletAward{
		{PlayerID: "p1", Rank: 1, Place: 1, Amount: 10},
		{PlayerID: "p5", Rank: 2, Place: 2, Amount: 8},
		{PlayerID: "p3", Rank: 3, Place: 3, Amount: 6},
		{PlayerID: "p2", Rank: 4, Place: 4, Amount: 4},
	}, result.WalletAwards)
	s.Equal(int64(0), s.balance("p6"))
}

func (s *ServiceTestSuite) TestPassAtLastRankAutoAssigns() {
	s.finalize()
	s.expectEvents(notify.EventLeaderboardUpdated, notify.EventWalletsUpdated)

	for rank := 1; rank <= 5; rank++ {
		_, err := s.service.PassVictoryPoint(s.ctx, admin, "s1", rank)
		s.Require().NoError(err)
	}

	pass, err := s.service.PassVictoryPoint(s.ctx, admin, "s1", 6)
	s.Require().NoError(err)

	s.True(pass.AutoAssigned)
	s.Require().NotNil(pass.Accept)
	s.Equal("p6", pass.Accept.GrantedTo)
	s.Equal("p6", pass.NextPlayerID)
	for _, award := range pass.Accept.WalletAwards {
		s.NotEqual("p6", award.PlayerID)
	}
	s.Equal(int64(0), s.balance("p6"))

	vps, err := s.repo.ListVictoryPoints(s.ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(vps, 1)
	s.Equal("p6", vps[0].PlayerID)
}

func (s *ServiceTestSuite) TestLastRankedNeverCredited() {
	for _, winner := range []string{"p1", "p5", "p3", "p2", "p4", "p6"} {
		s.Run(winner, func() {
			s.SetupTest()
			s.finalize()
			s.expectEvents(notify.EventLeaderboardUpdated, notify.EventWalletsUpdated)

			rank := 1
			for _, p := range []string{"p1", "p5", "p3", "p2", "p4", "p6"} {
				if p == winner {
					break
				}
				_, err := s.service.PassVictoryPoint(s.ctx, admin, "s1", rank)
				s.Require().NoError(err)
				rank++
			}

			_, err := s.service.AcceptVictoryPoint(s.ctx, admin, "s1", winner)
			s.Require().NoError(err)

			txs, err := s.wallets.GetSessionTransactions(s.ctx, "s1")
			s.Require().NoError(err)
			for _, tx := range txs {
				s.NotEqual("p6", tx.UserID)
				s.NotEqual(winner, tx.UserID)
			}
		})
	}
}

func (s *ServiceTestSuite) TestAcceptRejectsPlayerNotOffered() {
	s.finalize()

	_, err := s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p3")
	s.assertCode(err, types.ErrStateConflict)

	_, err = s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "stranger")
	s.assertCode(err, types.ErrStateConflict)

	_, err = s.service.AcceptVictoryPoint(s.ctx, player("p3"), "s1", "p1")
	s.assertCode(err, types.ErrAuthorization)

	vps, err := s.repo.ListVictoryPoints(s.ctx, "s1")
	s.Require().NoError(err)
	s.Empty(vps)
}

func (s *ServiceTestSuite) TestPassValidation() {
	s.finalize()

	_, err := s.service.PassVictoryPoint(s.ctx, admin, "s1", 0)
	s.assertCode(err, types.ErrValidation)

	_, err = s.service.PassVictoryPoint(s.ctx, admin, "s1", 7)
	s.assertCode(err, types.ErrValidation)

	_, err = s.service.PassVictoryPoint(s.ctx, admin, "s1", 2)
	s.assertCode(err, types.ErrStateConflict)

	_, err = s.service.PassVictoryPoint(s.ctx, player("p5"), "s1", 1)
	s.assertCode(err, types.ErrAuthorization)

	pass, err := s.service.PassVictoryPoint(s.ctx, admin, "s1", 1)
	s.Require().NoError(err)
	s.Equal(2, pass.NextRank)
}

func (s *ServiceTestSuite) TestOfferedPlayerCannotActForThemselves() {
	s.finalize()

	_, err := s.service.AcceptVictoryPoint(s.ctx, player("p1"), "s1", "p1")
	s.assertCode(err, types.ErrAuthorization)

	_, err = s.service.PassVictoryPoint(s.ctx, player("p1"), "s1", 1)
	s.assertCode(err, types.ErrAuthorization)

	session, err := s.repo.GetSession(s.ctx, "s1")
	s.Require().NoError(err)
	s.False(session.VictoryPointsAssigned)
	s.Equal(int64(0), s.balance("p5"))

	state, err := s.repo.GetOfferState(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal(1, state.Rank)
}

func (s *ServiceTestSuite) TestAcceptAfterSessionDeactivated() {
	s.finalize()
	s.seedSession("s2", 8, nil)

	_, err := s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p1")
	s.assertCode(err, types.ErrStateConflict)

	session, err := s.repo.GetSession(s.ctx, "s1")
	s.Require().NoError(err)
	s.False(session.VictoryPointsAssigned)
	s.Equal(int64(0), s.balance("p5"))
}

func (s *ServiceTestSuite) TestFailedOperationsCountedByCode() {
	s.finalize()
	registry := prometheus.NewRegistry()
	service := NewService(s.repo, s.notifier, WithMetrics(metrics.NewLeagueMetrics(registry)))

	_, err := service.AcceptVictoryPoint(s.ctx, player("p1"), "s1", "p1")
	s.assertCode(err, types.ErrAuthorization)
	_, err = service.PassVictoryPoint(s.ctx, admin, "s1", 4)
	s.assertCode(err, types.ErrStateConflict)

	expected := `
# HELP league_operations_total League service operations by name and outcome code.
# TYPE league_operations_total counter
league_operations_total{operation="accept_victory_point",outcome="AUTHORIZATION"} 1
league_operations_total{operation="pass_victory_point",outcome="STATE_CONFLICT"} 1
`
	s.NoError(promtestutil.GatherAndCompare(registry, strings.NewReader(expected), "league_operations_total"))
}

func (s *ServiceTestSuite) TestPassBeforeFinalizeIsStateConflict() {
	_, err := s.service.PassVictoryPoint(s.ctx, admin, "s1", 1)
	s.assertCode(err, types.ErrStateConflict)
}

func (s *ServiceTestSuite) TestConcurrentAcceptsGrantOnce() {
	s.finalize()
	s.expectEvents(notify.EventLeaderboardUpdated, notify.EventWalletsUpdated)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p1")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		s.True(types.IsLeagueError(err, types.ErrStateConflict), "unexpected error %v", err)
	}
	s.Equal(1, successes)

	vps, err := s.repo.ListVictoryPoints(s.ctx, "s1")
	s.Require().NoError(err)
	s.Len(vps, 1)

	txs, err := s.wallets.GetSessionTransactions(s.ctx, "s1")
	s.Require().NoError(err)
	s.Len(txs, 4)
	s.Equal(int64(10), s.balance("p5"))
}

func (s *ServiceTestSuite) TestAcceptSurvivesNotifierFailure() {
	s.finalize()
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("index unavailable")).Times(2)

	result, err := s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p1")
	s.Require().NoError(err)
	s.Equal("p1", result.GrantedTo)
	s.Contains(s.logs.String(), "EXTERNAL_DEPENDENCY")
}

func TestBuildAwardsSkipsZeroAmounts(t *testing.T) {
	ranked := []entities.RankedPlayer{
		{Rank: 1, PlayerID: "a"},
		{Rank: 2, PlayerID: "b"},
		{Rank: 3, PlayerID: "c"},
		{Rank: 4, PlayerID: "d"},
	}
	breakdown := &entities.WalletPointBreakdown{Amounts: [entities.PlacementCount]int64{5, 0, 3}}

	awards := BuildAwards(ranked, "a", breakdown)

	// b takes place 1, c place 2 (zero, skipped), d is last and excluded
	require.Len(t, awards, 1)
	assert.Equal(t, entities.WalletAward{PlayerID: "b", Rank: 2, Place: 1, Amount: 5}, awards[0])
}

func TestBuildAwardsWinnerIsLastRanked(t *testing.T) {
	ranked := []entities.RankedPlayer{
		{Rank: 1, PlayerID: "a"},
		{Rank: 2, PlayerID: "b"},
		{Rank: 3, PlayerID: "c"},
	}
	breakdown := &entities.WalletPointBreakdown{Amounts: [entities.PlacementCount]int64{5, 4, 3}}

	awards := BuildAwards(ranked, "c", breakdown)

	require.Len(t, awards, 1)
	assert.Equal(t, "a", awards[0].PlayerID)
	assert.Empty(t, BuildAwards(ranked[:1], "a", breakdown))
	assert.Empty(t, BuildAwards(ranked, "a", nil))
}

func (s *ServiceTestSuite) TestRemindPendingOfferNamesCurrentPlayer() {
	s.finalize()
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, event notify.Event) error {
		s.Equal(notify.EventOfferPending, event.Type)
		s.Equal("p5", event.PlayerID)
		s.Equal(7, event.SessionNumber)
		return nil
	})

	_, err := s.service.PassVictoryPoint(s.ctx, admin, "s1", 1)
	s.Require().NoError(err)

	sent, err := s.service.RemindPendingOffer(s.ctx)
	s.Require().NoError(err)
	s.True(sent)
}

func (s *ServiceTestSuite) TestRemindPendingOfferSkipsClosedOffers() {
	// not finalized yet
	sent, err := s.service.RemindPendingOffer(s.ctx)
	s.Require().NoError(err)
	s.False(sent)

	s.finalize()
	s.expectEvents(notify.EventLeaderboardUpdated, notify.EventWalletsUpdated)
	_, err = s.service.AcceptVictoryPoint(s.ctx, admin, "s1", "p1")
	s.Require().NoError(err)

	sent, err = s.service.RemindPendingOffer(s.ctx)
	s.Require().NoError(err)
	s.False(sent)
}

func (s *ServiceTestSuite) TestRemindPendingOfferWithoutActiveSession() {
	s.service = NewService(leagueRepo.NewMemoryRepository(walletRepo.NewMemoryRepository()), s.notifier)

	sent, err := s.service.RemindPendingOffer(s.ctx)
	s.Require().NoError(err)
	s.False(sent)
}
