// internal/store/matches.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"dealflow-workers/internal/models"
)

type MatchStore struct {
	db *sql.DB
}

func NewMatchStore(db *sql.DB) *MatchStore {
	return &MatchStore{db: db}
}

const matchColumns = `id, founder_id, investor_id, match_score, status, ai_reason,
	       invested_amount, invested_at, created_at, updated_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var investedAt sql.NullTime
	err := row.Scan(
		&m.ID, &m.FounderID, &m.InvestorID, &m.MatchScore, &m.Status, &m.AIReason,
		&m.InvestedAmount, &investedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if investedAt.Valid {
		t := investedAt.Time
		m.InvestedAt = &t
	}
	return &m, nil
}

func (s *MatchStore) Get(ctx context.Context, founderID, investorID string) (*models.Match, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches WHERE founder_id = $1 AND investor_id = $2`, founderID, investorID)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: match %s/%s", ErrNotFound, founderID, investorID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch match: %w", err)
	}
	return m, nil
}

// Upsert writes one scored pair. A single conflict-resolving statement
// keyed on (founder_id, investor_id) is what keeps concurrent batch
// runs from ever producing duplicate rows: the loser of the race turns
// into an update. Score and reason are refreshed; an existing status is
// never touched.
func (s *MatchStore) Upsert(ctx context.Context, founderID, investorID string, score int, reason string, initialStatus models.MatchStatus) (*models.Match, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO matches (id, founder_id, investor_id, match_score, status, ai_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (founder_id, investor_id) DO UPDATE
		SET match_score = EXCLUDED.match_score,
		    ai_reason   = EXCLUDED.ai_reason,
		    updated_at  = EXCLUDED.updated_at
		RETURNING `+matchColumns,
		uuid.New().String(), founderID, investorID, score, initialStatus, reason, now)

	m, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("upsert match: %w", err)
	}
	return m, nil
}

// StatusByFounder returns the stored status for each of the given
// founders against one investor. Pairs without a row are simply absent
// from the map; callers default them to new.
func (s *MatchStore) StatusByFounder(ctx context.Context, investorID string, founderIDs []string) (map[string]models.MatchStatus, error) {
	if len(founderIDs) == 0 {
		return map[string]models.MatchStatus{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT founder_id, status FROM matches
		WHERE investor_id = $1 AND founder_id = ANY($2)`,
		investorID, pq.Array(founderIDs))
	if err != nil {
		return nil, fmt.Errorf("query match statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]models.MatchStatus, len(founderIDs))
	for rows.Next() {
		var founderID string
		var status models.MatchStatus
		if err := rows.Scan(&founderID, &status); err != nil {
			return nil, fmt.Errorf("scan match status: %w", err)
		}
		statuses[founderID] = status
	}
	return statuses, rows.Err()
}

// GetForUpdateTx locks the pair's row for the remainder of the
// transaction. ErrNotFound when no row exists yet.
func (s *MatchStore) GetForUpdateTx(ctx context.Context, tx *sql.Tx, founderID, investorID string) (*models.Match, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches WHERE founder_id = $1 AND investor_id = $2
		FOR UPDATE`, founderID, investorID)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: match %s/%s", ErrNotFound, founderID, investorID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock match: %w", err)
	}
	return m, nil
}

// InsertManualTx creates the row for a direct user action that arrived
// before any batch scoring. The next batch run backfills the score.
func (s *MatchStore) InsertManualTx(ctx context.Context, tx *sql.Tx, founderID, investorID string, status models.MatchStatus) (*models.Match, error) {
	now := time.Now().UTC()
	row := tx.QueryRowContext(ctx, `
		INSERT INTO matches (id, founder_id, investor_id, match_score, status, ai_reason, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6, $6)
		ON CONFLICT (founder_id, investor_id) DO NOTHING
		RETURNING `+matchColumns,
		uuid.New().String(), founderID, investorID, status, models.ManualReason, now)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		// Lost a race with a concurrent creator; reread under the lock.
		return s.GetForUpdateTx(ctx, tx, founderID, investorID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert manual match: %w", err)
	}
	return m, nil
}

// UpdateStatusTx writes the new status, and the investment fields when
// present, inside the caller's transaction.
func (s *MatchStore) UpdateStatusTx(ctx context.Context, tx *sql.Tx, founderID, investorID string, status models.MatchStatus, investedAmount *decimal.Decimal, investedAt *time.Time) (*models.Match, error) {
	var row *sql.Row
	if investedAmount != nil {
		row = tx.QueryRowContext(ctx, `
			UPDATE matches
			SET status = $3, invested_amount = $4, invested_at = $5, updated_at = $6
			WHERE founder_id = $1 AND investor_id = $2
			RETURNING `+matchColumns,
			founderID, investorID, status, *investedAmount, investedAt, time.Now().UTC())
	} else {
		row = tx.QueryRowContext(ctx, `
			UPDATE matches
			SET status = $3, updated_at = $4
			WHERE founder_id = $1 AND investor_id = $2
			RETURNING `+matchColumns,
			founderID, investorID, status, time.Now().UTC())
	}

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: match %s/%s", ErrNotFound, founderID, investorID)
	}
	if err != nil {
		return nil, fmt.Errorf("update match status: %w", err)
	}
	return m, nil
}
