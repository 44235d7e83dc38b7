// internal/store/investors.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"dealflow-workers/internal/models"
)

type InvestorStore struct {
	db *sql.DB
}

func NewInvestorStore(db *sql.DB) *InvestorStore {
	return &InvestorStore{db: db}
}

const investorColumns = `id, fund_name, investment_stage, sector_focus, geography_focus,
	       typical_check_min, typical_check_max, verification_status, activity_status`

func scanInvestor(row interface{ Scan(...interface{}) error }) (*models.InvestorProfile, error) {
	var inv models.InvestorProfile
	err := row.Scan(
		&inv.ID, &inv.FundName, &inv.InvestmentStage, &inv.SectorFocus, &inv.GeographyFocus,
		&inv.TypicalCheckMin, &inv.TypicalCheckMax, &inv.VerificationStatus, &inv.ActivityStatus,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvestorStore) Get(ctx context.Context, id string) (*models.InvestorProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+investorColumns+`
		FROM investor_profiles WHERE id = $1`, id)

	inv, err := scanInvestor(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: investor %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch investor: %w", err)
	}
	return inv, nil
}

// Active returns every investor currently open to deal flow, ordered by
// id for reproducible batch runs.
func (s *InvestorStore) Active(ctx context.Context) ([]models.InvestorProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+investorColumns+`
		FROM investor_profiles
		WHERE activity_status = 'active'
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query active investors: %w", err)
	}
	defer rows.Close()

	var investors []models.InvestorProfile
	for rows.Next() {
		inv, err := scanInvestor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan investor: %w", err)
		}
		investors = append(investors, *inv)
	}
	return investors, rows.Err()
}
