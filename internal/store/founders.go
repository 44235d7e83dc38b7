// internal/store/founders.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dealflow-workers/internal/models"
)

type FounderStore struct {
	db *sql.DB
}

func NewFounderStore(db *sql.DB) *FounderStore {
	return &FounderStore{db: db}
}

const founderColumns = `id, company_name, stage, sector, business_model, min_check_size,
	       location, country, actively_raising, is_verified, founding_year, profile_completion`

func scanFounder(row interface{ Scan(...interface{}) error }) (*models.FounderProfile, error) {
	var f models.FounderProfile
	err := row.Scan(
		&f.ID, &f.CompanyName, &f.Stage, &f.Sector, &f.BusinessModel, &f.MinCheckSize,
		&f.Location, &f.Country, &f.ActivelyRaising, &f.IsVerified, &f.FoundingYear, &f.CompletionPct,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FounderStore) Get(ctx context.Context, id string) (*models.FounderProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+founderColumns+`
		FROM founder_profiles WHERE id = $1`, id)

	f, err := scanFounder(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: founder %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch founder: %w", err)
	}
	return f, nil
}

// ActiveCandidates returns every actively raising founder matching the
// normalized filters, ordered by id so feed ranking ties stay
// reproducible.
func (s *FounderStore) ActiveCandidates(ctx context.Context, filters models.FeedFilters) ([]models.FounderProfile, error) {
	query := `
		SELECT ` + founderColumns + `
		FROM founder_profiles
		WHERE actively_raising = TRUE`
	var args []interface{}

	if filters.Stage != "" {
		args = append(args, filters.Stage)
		query += fmt.Sprintf(" AND stage = $%d", len(args))
	}
	if filters.Sector != "" {
		args = append(args, "%"+strings.ToLower(filters.Sector)+"%")
		query += fmt.Sprintf(" AND LOWER(sector) LIKE $%d", len(args))
	}
	if filters.Geography != "" {
		args = append(args, "%"+strings.ToLower(filters.Geography)+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (LOWER(location) LIKE $%d OR LOWER(country) LIKE $%d)", n, n)
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var founders []models.FounderProfile
	for rows.Next() {
		f, err := scanFounder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		founders = append(founders, *f)
	}
	return founders, rows.Err()
}

// LatestDeckScore returns the most recent deck analysis score for a
// founder. The second return is false when no deck exists; callers
// treat that as score zero rather than an error.
func (s *FounderStore) LatestDeckScore(ctx context.Context, founderID string) (int, bool, error) {
	var score int
	err := s.db.QueryRowContext(ctx, `
		SELECT deck_score FROM pitch_decks
		WHERE founder_id = $1
		ORDER BY created_at DESC LIMIT 1`, founderID).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("fetch deck score: %w", err)
	}
	return score, true, nil
}

// LatestTraction returns up to n reported periods, newest first.
func (s *FounderStore) LatestTraction(ctx context.Context, founderID string, n int) ([]models.TractionMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, founder_id, month_label, revenue, expenses, active_users
		FROM traction_metrics
		WHERE founder_id = $1
		ORDER BY created_at DESC LIMIT $2`, founderID, n)
	if err != nil {
		return nil, fmt.Errorf("query traction: %w", err)
	}
	defer rows.Close()

	var metrics []models.TractionMetric
	for rows.Next() {
		var m models.TractionMetric
		if err := rows.Scan(&m.ID, &m.FounderID, &m.MonthLabel, &m.Revenue, &m.Expenses, &m.ActiveUsers); err != nil {
			return nil, fmt.Errorf("scan traction: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
