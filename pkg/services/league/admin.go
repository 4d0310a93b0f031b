package league

import (
	"context"

	"github.com/fadedpez/tucoleague/internal/types"
	"github.com/fadedpez/tucoleague/pkg/entities"
)

func requireAdmin(actor entities.Actor, action string) error {
	if !actor.Admin {
		return types.NewLeagueErrorf(types.ErrAuthorization, "only league admins can %s", action)
	}
	return nil
}

// CreateSession stores a new session, making it the active one when activate is set
func (s *Service) CreateSession(ctx context.Context, actor entities.Actor, number int, activate bool) (*entities.Session, error) {
	if err := requireAdmin(actor, "create sessions"); err != nil {
		return nil, err
	}
	if number < 1 {
		return nil, types.NewLeagueErrorf(types.ErrValidation, "session number must be positive, got %d", number)
	}

	session := &entities.Session{Number: number, Active: activate}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, mapRepoError(err, "failed to create session")
	}
	s.logger.Info("[LEAGUE] Session #%d created (%s), active=%t", number, session.ID, activate)
	return session, nil
}

// ActivateSession makes sessionID the only active session
func (s *Service) ActivateSession(ctx context.Context, actor entities.Actor, sessionID string) error {
	if err := requireAdmin(actor, "activate sessions"); err != nil {
		return err
	}
	if err := s.repo.ActivateSession(ctx, sessionID); err != nil {
		return mapRepoError(err, "failed to activate session")
	}
	s.logger.Info("[LEAGUE] Session %s activated", sessionID)
	return nil
}

// RecordMatchResult validates and stores a pairing. Results of a finalized
// session can no longer change; the repository enforces that in the same write.
func (s *Service) RecordMatchResult(ctx context.Context, actor entities.Actor, match *entities.MatchResult) error {
	if err := requireAdmin(actor, "record match results"); err != nil {
		return err
	}
	if err := match.Validate(); err != nil {
		return types.WrapError(types.ErrValidation, "invalid match result", err)
	}

	if err := s.repo.RecordMatchResult(ctx, match); err != nil {
		return mapRepoError(err, "failed to record match result")
	}
	s.logger.Debug("[LEAGUE] Session %s round %d: %s %d-%d %s",
		match.SessionID, match.Round, match.Player1ID, match.Player1Wins, match.Player2Wins, match.Player2ID)
	return nil
}

// SetBreakdown stores amounts as the active wallet point breakdown
func (s *Service) SetBreakdown(ctx context.Context, actor entities.Actor, amounts [entities.PlacementCount]int64) (*entities.WalletPointBreakdown, error) {
	if err := requireAdmin(actor, "change the wallet point breakdown"); err != nil {
		return nil, err
	}

	breakdown := &entities.WalletPointBreakdown{Active: true, Amounts: amounts}
	if err := breakdown.Validate(); err != nil {
		return nil, types.WrapError(types.ErrValidation, "invalid breakdown", err)
	}
	if err := s.repo.SaveBreakdown(ctx, breakdown); err != nil {
		return nil, mapRepoError(err, "failed to save breakdown")
	}
	return breakdown, nil
}

// GetBreakdown returns the active wallet point breakdown
func (s *Service) GetBreakdown(ctx context.Context) (*entities.WalletPointBreakdown, error) {
	breakdown, err := s.repo.GetActiveBreakdown(ctx)
	if err != nil {
		return nil, mapRepoError(err, "failed to load breakdown")
	}
	return breakdown, nil
}
