package league

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/tucoleague/pkg/entities"
	"github.com/fadedpez/tucoleague/pkg/repositories/wallet"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionModel is the sessions table for the gorm back-end
type SessionModel struct {
	ID                    string  `gorm:"primaryKey;type:text"`
	Number                int     `gorm:"not null"`
	Active                bool    `gorm:"not null;default:false;index:idx_sessions_single_active,unique,where:active = true"`
	Placement1            *string `gorm:"column:placement_1"`
	Placement2            *string `gorm:"column:placement_2"`
	Placement3            *string `gorm:"column:placement_3"`
	Placement4            *string `gorm:"column:placement_4"`
	Placement5            *string `gorm:"column:placement_5"`
	Placement6            *string `gorm:"column:placement_6"`
	VictoryPointsAssigned bool    `gorm:"not null;default:false"`
	WalletPointsAssigned  bool    `gorm:"not null;default:false"`
	FinalizedAt           *time.Time
	CreatedAt             time.Time
}

func (SessionModel) TableName() string { return "sessions" }

func (m *SessionModel) placements() [entities.PlacementCount]*string {
	return [entities.PlacementCount]*string{m.Placement1, m.Placement2, m.Placement3, m.Placement4, m.Placement5, m.Placement6}
}

func (m *SessionModel) toEntity() *entities.Session {
	return &entities.Session{
		ID:                    m.ID,
		Number:                m.Number,
		Active:                m.Active,
		Placements:            m.placements(),
		VictoryPointsAssigned: m.VictoryPointsAssigned,
		WalletPointsAssigned:  m.WalletPointsAssigned,
		FinalizedAt:           m.FinalizedAt,
		CreatedAt:             m.CreatedAt,
	}
}

// MatchResultModel is the match_results table for the gorm back-end
type MatchResultModel struct {
	ID          string `gorm:"primaryKey;type:text"`
	SessionID   string `gorm:"index;not null"`
	Round       int    `gorm:"not null"`
	Player1ID   string `gorm:"column:player1_id;not null"`
	Player2ID   string `gorm:"column:player2_id;not null"`
	Player1Wins int    `gorm:"column:player1_wins;not null;default:0;check:player1_wins BETWEEN 0 AND 2"`
	Player2Wins int    `gorm:"column:player2_wins;not null;default:0;check:player2_wins BETWEEN 0 AND 2"`
	CreatedAt   time.Time
}

func (MatchResultModel) TableName() string { return "match_results" }

// VictoryPointModel is the victory_points table for the gorm back-end
type VictoryPointModel struct {
	ID        string `gorm:"primaryKey;type:text"`
	PlayerID  string `gorm:"index;not null"`
	SessionID string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

func (VictoryPointModel) TableName() string { return "victory_points" }

// BreakdownModel is the wallet_point_breakdowns table for the gorm back-end
type BreakdownModel struct {
	ID        string `gorm:"primaryKey;type:text"`
	Active    bool   `gorm:"not null;default:false"`
	Place1    int64  `gorm:"column:place_1;not null;default:0"`
	Place2    int64  `gorm:"column:place_2;not null;default:0"`
	Place3    int64  `gorm:"column:place_3;not null;default:0"`
	Place4    int64  `gorm:"column:place_4;not null;default:0"`
	Place5    int64  `gorm:"column:place_5;not null;default:0"`
	Place6    int64  `gorm:"column:place_6;not null;default:0"`
	CreatedAt time.Time
}

func (BreakdownModel) TableName() string { return "wallet_point_breakdowns" }

// OfferStateModel is the offer_states table for the gorm back-end
type OfferStateModel struct {
	SessionID   string `gorm:"primaryKey;type:text"`
	Kind        string `gorm:"type:varchar(16);not null"`
	OfferedRank int    `gorm:"not null;default:0"`
	PlayerID    string
	UpdatedAt   time.Time
}

func (OfferStateModel) TableName() string { return "offer_states" }

// GormRepository implements Repository on Postgres through gorm. Conflicting
// writers serialize on a row lock of the session.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository migrates the league tables and returns the repository
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(
		&SessionModel{},
		&MatchResultModel{},
		&VictoryPointModel{},
		&BreakdownModel{},
		&OfferStateModel{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate league tables: %w", err)
	}
	return &GormRepository{db: db}, nil
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func lockSession(tx *gorm.DB, sessionID string) (*SessionModel, error) {
	var s SessionModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", sessionID).
		First(&s).Error; err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}
	return &s, nil
}

// CreateSession stores a new session
func (r *GormRepository) CreateSession(ctx context.Context, session *entities.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if session.Active {
			if err := tx.Model(&SessionModel{}).Where("active = ?", true).Update("active", false).Error; err != nil {
				return fmt.Errorf("error deactivating sessions: %w", err)
			}
		}
		m := SessionModel{ID: session.ID, Number: session.Number, Active: session.Active, CreatedAt: session.CreatedAt}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("error creating session: %w", err)
		}
		return nil
	})
}

// GetSession retrieves a session by ID
func (r *GormRepository) GetSession(ctx context.Context, sessionID string) (*entities.Session, error) {
	var m SessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&m).Error; err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}
	return m.toEntity(), nil
}

// GetActiveSession retrieves the active session
func (r *GormRepository) GetActiveSession(ctx context.Context) (*entities.Session, error) {
	var m SessionModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).First(&m).Error; err != nil {
		return nil, notFound(err, ErrNoActiveSession)
	}
	return m.toEntity(), nil
}

// ActivateSession makes sessionID the only active session
func (r *GormRepository) ActivateSession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSession(tx, sessionID); err != nil {
			return err
		}
		if err := tx.Model(&SessionModel{}).Where("active = ? AND id <> ?", true, sessionID).Update("active", false).Error; err != nil {
			return fmt.Errorf("error deactivating sessions: %w", err)
		}
		return tx.Model(&SessionModel{}).Where("id = ?", sessionID).Update("active", true).Error
	})
}

// RecordMatchResult inserts or replaces a match result by ID while holding
// the session row lock, so it serializes with SetPlacements.
func (r *GormRepository) RecordMatchResult(ctx context.Context, match *entities.MatchResult) error {
	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now()
	}

	m := MatchResultModel{
		ID:          match.ID,
		SessionID:   match.SessionID,
		Round:       match.Round,
		Player1ID:   match.Player1ID,
		Player2ID:   match.Player2ID,
		Player1Wins: match.Player1Wins,
		Player2Wins: match.Player2Wins,
		CreatedAt:   match.CreatedAt,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSession(tx, match.SessionID)
		if err != nil {
			return err
		}
		if s.toEntity().HasAnyPlacement() {
			return ErrAlreadyFinalized
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"round", "player1_id", "player2_id", "player1_wins", "player2_wins"}),
		}).Create(&m).Error
		if err != nil {
			return fmt.Errorf("error recording match result: %w", err)
		}
		return nil
	})
}

// ListMatchResults returns a session's pairings ordered by round
func (r *GormRepository) ListMatchResults(ctx context.Context, sessionID string) ([]*entities.MatchResult, error) {
	if _, err := r.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	var models []MatchResultModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("round ASC, created_at ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("error querying match results: %w", err)
	}

	matches := make([]*entities.MatchResult, 0, len(models))
	for _, m := range models {
		matches = append(matches, &entities.MatchResult{
			ID:          m.ID,
			SessionID:   m.SessionID,
			Round:       m.Round,
			Player1ID:   m.Player1ID,
			Player2ID:   m.Player2ID,
			Player1Wins: m.Player1Wins,
			Player2Wins: m.Player2Wins,
			CreatedAt:   m.CreatedAt,
		})
	}
	return matches, nil
}

// SetPlacements writes the six placements if none are set
func (r *GormRepository) SetPlacements(ctx context.Context, sessionID string, placements [entities.PlacementCount]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		if s.toEntity().HasAnyPlacement() {
			return ErrAlreadyFinalized
		}

		now := time.Now()
		updates := map[string]interface{}{"finalized_at": now}
		for i, playerID := range placements {
			updates[fmt.Sprintf("placement_%d", i+1)] = playerID
		}
		if err := tx.Model(&SessionModel{}).Where("id = ?", sessionID).Updates(updates).Error; err != nil {
			return fmt.Errorf("error writing placements: %w", err)
		}
		return saveOfferStateGorm(tx, sessionID, entities.InitialOfferState(), now)
	})
}

// SaveBreakdown stores a breakdown, deactivating the rest when it is active
func (r *GormRepository) SaveBreakdown(ctx context.Context, breakdown *entities.WalletPointBreakdown) error {
	if err := breakdown.Validate(); err != nil {
		return err
	}
	if breakdown.ID == "" {
		breakdown.ID = uuid.New().String()
	}
	if breakdown.CreatedAt.IsZero() {
		breakdown.CreatedAt = time.Now()
	}

	a := breakdown.Amounts
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if breakdown.Active {
			if err := tx.Model(&BreakdownModel{}).Where("active = ?", true).Update("active", false).Error; err != nil {
				return fmt.Errorf("error deactivating breakdowns: %w", err)
			}
		}
		return tx.Create(&BreakdownModel{
			ID: breakdown.ID, Active: breakdown.Active,
			Place1: a[0], Place2: a[1], Place3: a[2], Place4: a[3], Place5: a[4], Place6: a[5],
			CreatedAt: breakdown.CreatedAt,
		}).Error
	})
}

// GetActiveBreakdown returns the active breakdown
func (r *GormRepository) GetActiveBreakdown(ctx context.Context) (*entities.WalletPointBreakdown, error) {
	var m BreakdownModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("created_at DESC").First(&m).Error; err != nil {
		return nil, notFound(err, ErrNoActiveBreakdown)
	}
	return &entities.WalletPointBreakdown{
		ID:        m.ID,
		Active:    m.Active,
		Amounts:   [entities.PlacementCount]int64{m.Place1, m.Place2, m.Place3, m.Place4, m.Place5, m.Place6},
		CreatedAt: m.CreatedAt,
	}, nil
}

func loadOfferStateGorm(tx *gorm.DB, sessionID string) (entities.OfferState, error) {
	var m OfferStateModel
	if err := tx.Where("session_id = ?", sessionID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.InitialOfferState(), nil
		}
		return entities.OfferState{}, fmt.Errorf("error loading offer state: %w", err)
	}
	return entities.OfferState{
		Kind:      entities.OfferStateKind(m.Kind),
		Rank:      m.OfferedRank,
		PlayerID:  m.PlayerID,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func saveOfferStateGorm(tx *gorm.DB, sessionID string, state entities.OfferState, at time.Time) error {
	m := OfferStateModel{
		SessionID:   sessionID,
		Kind:        string(state.Kind),
		OfferedRank: state.Rank,
		PlayerID:    state.PlayerID,
		UpdatedAt:   at,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "offered_rank", "player_id", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("error saving offer state: %w", err)
	}
	return nil
}

// GetOfferState returns the session's offer position
func (r *GormRepository) GetOfferState(ctx context.Context, sessionID string) (entities.OfferState, error) {
	if _, err := r.GetSession(ctx, sessionID); err != nil {
		return entities.OfferState{}, err
	}
	return loadOfferStateGorm(r.db.WithContext(ctx), sessionID)
}

// AdvanceOffer moves the offer from fromRank to toRank
func (r *GormRepository) AdvanceOffer(ctx context.Context, sessionID string, fromRank, toRank int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		if s.VictoryPointsAssigned {
			return ErrAlreadyAssigned
		}

		state, err := loadOfferStateGorm(tx, sessionID)
		if err != nil {
			return err
		}
		if !offerAt(state, fromRank) {
			return ErrOfferMoved
		}
		return saveOfferStateGorm(tx, sessionID, entities.Offered(toRank), time.Now())
	})
}

// CommitVictoryPoint applies a grant in one transaction holding the session row lock
func (r *GormRepository) CommitVictoryPoint(ctx context.Context, grant *entities.VictoryPointGrant) (*entities.VictoryPoint, error) {
	var vp *entities.VictoryPoint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSession(tx, grant.SessionID)
		if err != nil {
			return err
		}
		if s.VictoryPointsAssigned {
			return ErrAlreadyAssigned
		}
		if !s.Active {
			return ErrSessionInactive
		}

		state, err := loadOfferStateGorm(tx, grant.SessionID)
		if err != nil {
			return err
		}
		if !offerAt(state, grant.OfferedRank) {
			return ErrOfferMoved
		}

		now := time.Now()
		m := VictoryPointModel{
			ID:        uuid.New().String(),
			PlayerID:  grant.PlayerID,
			SessionID: grant.SessionID,
			CreatedAt: now,
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("error inserting victory point: %w", err)
		}

		for _, t := range grant.Transactions {
			if err := wallet.CreditGorm(tx, t); err != nil {
				return err
			}
		}

		if err := tx.Model(&SessionModel{}).Where("id = ?", grant.SessionID).Updates(map[string]interface{}{
			"victory_points_assigned": true,
			"wallet_points_assigned":  true,
		}).Error; err != nil {
			return fmt.Errorf("error setting assigned flags: %w", err)
		}

		if err := saveOfferStateGorm(tx, grant.SessionID, entities.Accepted(grant.PlayerID), now); err != nil {
			return err
		}

		vp = &entities.VictoryPoint{ID: m.ID, PlayerID: m.PlayerID, SessionID: m.SessionID, CreatedAt: m.CreatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vp, nil
}

// ListVictoryPoints returns the Victory Points granted in a session
func (r *GormRepository) ListVictoryPoints(ctx context.Context, sessionID string) ([]*entities.VictoryPoint, error) {
	var models []VictoryPointModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("error querying victory points: %w", err)
	}

	points := make([]*entities.VictoryPoint, 0, len(models))
	for _, m := range models {
		points = append(points, &entities.VictoryPoint{ID: m.ID, PlayerID: m.PlayerID, SessionID: m.SessionID, CreatedAt: m.CreatedAt})
	}
	return points, nil
}

// Close closes the underlying connection pool
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
