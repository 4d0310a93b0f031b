package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fadedpez/tucoleague/pkg/db"
	"github.com/fadedpez/tucoleague/pkg/entities"
	"github.com/fadedpez/tucoleague/pkg/repositories/wallet"
	"github.com/google/uuid"
)

// SQLiteRepository implements Repository on a migrated SQLite database. It
// shares the connection with the wallet repository so a commit can write both.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an open database opened by db.OpenSQLite
func NewSQLiteRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: conn}
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const selectSessionSQL = `
	SELECT id, number, active,
		placement_1, placement_2, placement_3, placement_4, placement_5, placement_6,
		victory_points_assigned, wallet_points_assigned, finalized_at, created_at
	FROM sessions
`

func scanSession(row *sql.Row) (*entities.Session, error) {
	var s entities.Session
	var placements [entities.PlacementCount]sql.NullString
	var finalizedAt sql.NullString
	var createdAt string

	err := row.Scan(&s.ID, &s.Number, &s.Active,
		&placements[0], &placements[1], &placements[2], &placements[3], &placements[4], &placements[5],
		&s.VictoryPointsAssigned, &s.WalletPointsAssigned, &finalizedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("error scanning session: %w", err)
	}

	for i, p := range placements {
		if p.Valid {
			id := p.String
			s.Placements[i] = &id
		}
	}
	if s.FinalizedAt, err = db.ParseNullTimestamp(finalizedAt); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = db.ParseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func sessionExists(ctx context.Context, q rowQueryer, sessionID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("error checking session: %w", err)
	}
	return nil
}

// CreateSession stores a new session
func (r *SQLiteRepository) CreateSession(ctx context.Context, session *entities.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if session.Active {
		if _, err := tx.ExecContext(ctx, `UPDATE sessions SET active = 0 WHERE active = 1`); err != nil {
			return fmt.Errorf("error deactivating sessions: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, number, active, created_at) VALUES (?, ?, ?, ?)
	`, session.ID, session.Number, session.Active, db.FormatTimestamp(session.CreatedAt))
	if err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}

	return tx.Commit()
}

// GetSession retrieves a session by ID
func (r *SQLiteRepository) GetSession(ctx context.Context, sessionID string) (*entities.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx, selectSessionSQL+` WHERE id = ?`, sessionID))
}

// GetActiveSession retrieves the active session
func (r *SQLiteRepository) GetActiveSession(ctx context.Context) (*entities.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, selectSessionSQL+` WHERE active = 1`))
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrNoActiveSession
	}
	return s, err
}

// ActivateSession makes sessionID the only active session
func (r *SQLiteRepository) ActivateSession(ctx context.Context, sessionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := sessionExists(ctx, tx, sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET active = 0 WHERE active = 1 AND id <> ?`, sessionID); err != nil {
		return fmt.Errorf("error deactivating sessions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET active = 1 WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("error activating session: %w", err)
	}
	return tx.Commit()
}

// RecordMatchResult inserts or replaces a match result by ID. The finalize
// check and the write share a transaction so no result lands after placements.
func (r *SQLiteRepository) RecordMatchResult(ctx context.Context, match *entities.MatchResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var finalized bool
	err = tx.QueryRowContext(ctx, `
		SELECT placement_1 IS NOT NULL OR placement_2 IS NOT NULL OR placement_3 IS NOT NULL
			OR placement_4 IS NOT NULL OR placement_5 IS NOT NULL OR placement_6 IS NOT NULL
		FROM sessions WHERE id = ?
	`, match.SessionID).Scan(&finalized)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("error reading session: %w", err)
	}
	if finalized {
		return ErrAlreadyFinalized
	}

	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO match_results (id, session_id, round, player1_id, player2_id, player1_wins, player2_wins, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			round = excluded.round,
			player1_id = excluded.player1_id,
			player2_id = excluded.player2_id,
			player1_wins = excluded.player1_wins,
			player2_wins = excluded.player2_wins
	`, match.ID, match.SessionID, match.Round, match.Player1ID, match.Player2ID,
		match.Player1Wins, match.Player2Wins, db.FormatTimestamp(match.CreatedAt))
	if err != nil {
		return fmt.Errorf("error recording match result: %w", err)
	}
	return tx.Commit()
}

// ListMatchResults returns a session's pairings ordered by round
func (r *SQLiteRepository) ListMatchResults(ctx context.Context, sessionID string) ([]*entities.MatchResult, error) {
	if err := sessionExists(ctx, r.db, sessionID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, round, player1_id, player2_id, player1_wins, player2_wins, created_at
		FROM match_results
		WHERE session_id = ?
		ORDER BY round ASC, rowid ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying match results: %w", err)
	}
	defer rows.Close()

	matches := make([]*entities.MatchResult, 0)
	for rows.Next() {
		var m entities.MatchResult
		var createdAt string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Round, &m.Player1ID, &m.Player2ID,
			&m.Player1Wins, &m.Player2Wins, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning match result: %w", err)
		}
		if m.CreatedAt, err = db.ParseTimestamp(createdAt); err != nil {
			return nil, err
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match results: %w", err)
	}
	return matches, nil
}

// SetPlacements writes the six placements if none are set
func (r *SQLiteRepository) SetPlacements(ctx context.Context, sessionID string, placements [entities.PlacementCount]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE sessions SET
			placement_1 = ?, placement_2 = ?, placement_3 = ?,
			placement_4 = ?, placement_5 = ?, placement_6 = ?,
			finalized_at = ?
		WHERE id = ?
			AND placement_1 IS NULL AND placement_2 IS NULL AND placement_3 IS NULL
			AND placement_4 IS NULL AND placement_5 IS NULL AND placement_6 IS NULL
	`, placements[0], placements[1], placements[2], placements[3], placements[4], placements[5],
		db.FormatTimestamp(now), sessionID)
	if err != nil {
		return fmt.Errorf("error writing placements: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if affected == 0 {
		if err := sessionExists(ctx, tx, sessionID); err != nil {
			return err
		}
		return ErrAlreadyFinalized
	}

	if err := saveOfferState(ctx, tx, sessionID, entities.InitialOfferState(), now); err != nil {
		return err
	}

	log.Printf("[LEAGUE_REPO] Finalized placements for session %s", sessionID)
	return tx.Commit()
}

// SaveBreakdown stores a breakdown, deactivating the rest when it is active
func (r *SQLiteRepository) SaveBreakdown(ctx context.Context, breakdown *entities.WalletPointBreakdown) error {
	if err := breakdown.Validate(); err != nil {
		return err
	}
	if breakdown.ID == "" {
		breakdown.ID = uuid.New().String()
	}
	if breakdown.CreatedAt.IsZero() {
		breakdown.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if breakdown.Active {
		if _, err := tx.ExecContext(ctx, `UPDATE wallet_point_breakdowns SET active = 0 WHERE active = 1`); err != nil {
			return fmt.Errorf("error deactivating breakdowns: %w", err)
		}
	}

	a := breakdown.Amounts
	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_point_breakdowns (id, active, place_1, place_2, place_3, place_4, place_5, place_6, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, breakdown.ID, breakdown.Active, a[0], a[1], a[2], a[3], a[4], a[5], db.FormatTimestamp(breakdown.CreatedAt))
	if err != nil {
		return fmt.Errorf("error saving breakdown: %w", err)
	}
	return tx.Commit()
}

// GetActiveBreakdown returns the active breakdown
func (r *SQLiteRepository) GetActiveBreakdown(ctx context.Context) (*entities.WalletPointBreakdown, error) {
	var b entities.WalletPointBreakdown
	var createdAt string
	a := &b.Amounts

	err := r.db.QueryRowContext(ctx, `
		SELECT id, active, place_1, place_2, place_3, place_4, place_5, place_6, created_at
		FROM wallet_point_breakdowns
		WHERE active = 1
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&b.ID, &b.Active, &a[0], &a[1], &a[2], &a[3], &a[4], &a[5], &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveBreakdown
		}
		return nil, fmt.Errorf("error getting active breakdown: %w", err)
	}
	if b.CreatedAt, err = db.ParseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func loadOfferState(ctx context.Context, q rowQueryer, sessionID string) (entities.OfferState, error) {
	var state entities.OfferState
	var kind string
	var playerID sql.NullString
	var updatedAt string

	err := q.QueryRowContext(ctx, `
		SELECT kind, offered_rank, player_id, updated_at FROM offer_states WHERE session_id = ?
	`, sessionID).Scan(&kind, &state.Rank, &playerID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.InitialOfferState(), nil
	}
	if err != nil {
		return state, fmt.Errorf("error loading offer state: %w", err)
	}

	state.Kind = entities.OfferStateKind(kind)
	state.PlayerID = playerID.String
	if state.UpdatedAt, err = db.ParseTimestamp(updatedAt); err != nil {
		return state, err
	}
	return state, nil
}

func saveOfferState(ctx context.Context, tx *sql.Tx, sessionID string, state entities.OfferState, at time.Time) error {
	var playerID interface{}
	if state.PlayerID != "" {
		playerID = state.PlayerID
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO offer_states (session_id, kind, offered_rank, player_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			kind = excluded.kind,
			offered_rank = excluded.offered_rank,
			player_id = excluded.player_id,
			updated_at = excluded.updated_at
	`, sessionID, string(state.Kind), state.Rank, playerID, db.FormatTimestamp(at))
	if err != nil {
		return fmt.Errorf("error saving offer state: %w", err)
	}
	return nil
}

// GetOfferState returns the session's offer position
func (r *SQLiteRepository) GetOfferState(ctx context.Context, sessionID string) (entities.OfferState, error) {
	if err := sessionExists(ctx, r.db, sessionID); err != nil {
		return entities.OfferState{}, err
	}
	return loadOfferState(ctx, r.db, sessionID)
}

// AdvanceOffer moves the offer from fromRank to toRank
func (r *SQLiteRepository) AdvanceOffer(ctx context.Context, sessionID string, fromRank, toRank int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var assigned bool
	err = tx.QueryRowContext(ctx, `SELECT victory_points_assigned FROM sessions WHERE id = ?`, sessionID).Scan(&assigned)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("error reading session: %w", err)
	}
	if assigned {
		return ErrAlreadyAssigned
	}

	state, err := loadOfferState(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if !offerAt(state, fromRank) {
		return ErrOfferMoved
	}

	if err := saveOfferState(ctx, tx, sessionID, entities.Offered(toRank), time.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

// CommitVictoryPoint applies a grant in one database transaction. The
// assigned flag is flipped first with a conditional update so a second
// committer sees zero rows affected.
func (r *SQLiteRepository) CommitVictoryPoint(ctx context.Context, grant *entities.VictoryPointGrant) (*entities.VictoryPoint, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE sessions SET victory_points_assigned = 1, wallet_points_assigned = 1
		WHERE id = ? AND victory_points_assigned = 0 AND active = 1
	`, grant.SessionID)
	if err != nil {
		return nil, fmt.Errorf("error claiming victory point: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error getting rows affected: %w", err)
	}
	if affected == 0 {
		var assigned bool
		err := tx.QueryRowContext(ctx, `SELECT victory_points_assigned FROM sessions WHERE id = ?`, grant.SessionID).Scan(&assigned)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrSessionNotFound
		case err != nil:
			return nil, fmt.Errorf("error reading session: %w", err)
		case assigned:
			return nil, ErrAlreadyAssigned
		}
		return nil, ErrSessionInactive
	}

	state, err := loadOfferState(ctx, tx, grant.SessionID)
	if err != nil {
		return nil, err
	}
	if !offerAt(state, grant.OfferedRank) {
		return nil, ErrOfferMoved
	}

	now := time.Now()
	vp := &entities.VictoryPoint{
		ID:        uuid.New().String(),
		PlayerID:  grant.PlayerID,
		SessionID: grant.SessionID,
		CreatedAt: now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO victory_points (id, player_id, session_id, created_at) VALUES (?, ?, ?, ?)
	`, vp.ID, vp.PlayerID, vp.SessionID, db.FormatTimestamp(now))
	if err != nil {
		return nil, fmt.Errorf("error inserting victory point: %w", err)
	}

	for _, t := range grant.Transactions {
		if err := wallet.CreditTx(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	if err := saveOfferState(ctx, tx, grant.SessionID, entities.Accepted(grant.PlayerID), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing victory point: %w", err)
	}

	log.Printf("[LEAGUE_REPO] Victory point for session %s granted to %s with %d wallet awards",
		grant.SessionID, grant.PlayerID, len(grant.Transactions))
	return vp, nil
}

// ListVictoryPoints returns the Victory Points granted in a session
func (r *SQLiteRepository) ListVictoryPoints(ctx context.Context, sessionID string) ([]*entities.VictoryPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, player_id, session_id, created_at FROM victory_points WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying victory points: %w", err)
	}
	defer rows.Close()

	points := make([]*entities.VictoryPoint, 0)
	for rows.Next() {
		var vp entities.VictoryPoint
		var createdAt string
		if err := rows.Scan(&vp.ID, &vp.PlayerID, &vp.SessionID, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning victory point: %w", err)
		}
		if vp.CreatedAt, err = db.ParseTimestamp(createdAt); err != nil {
			return nil, err
		}
		points = append(points, &vp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating victory points: %w", err)
	}
	return points, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
