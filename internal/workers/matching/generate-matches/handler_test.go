// internal/workers/matching/generate-matches/handler_test.go
package generatematches

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{
		MinScore: 40,
		Timeout:  10 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

var founderCols = []string{
	"id", "company_name", "stage", "sector", "business_model", "min_check_size",
	"location", "country", "actively_raising", "is_verified", "founding_year", "profile_completion",
}

var investorCols = []string{
	"id", "fund_name", "investment_stage", "sector_focus", "geography_focus",
	"typical_check_min", "typical_check_max", "verification_status", "activity_status",
}

var matchCols = []string{
	"id", "founder_id", "investor_id", "match_score", "status", "ai_reason",
	"invested_amount", "invested_at", "created_at", "updated_at",
}

func TestHandler_Execute_PersistsOnlyAboveFloor(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM founder_profiles WHERE id").
		WithArgs("founder-1").
		WillReturnRows(sqlmock.NewRows(founderCols).
			AddRow("founder-1", "Nebula AI", "seed", "Artificial Intelligence", "SaaS", "150000", "San Francisco", "USA", true, true, 2023, 85))

	mock.ExpectQuery("SELECT deck_score FROM pitch_decks").
		WithArgs("founder-1").
		WillReturnRows(sqlmock.NewRows([]string{"deck_score"}).AddRow(85))

	// investor-1 scores 100; investor-2 scores 14 (active + strong
	// pitch) and never reaches the store.
	mock.ExpectQuery("SELECT (.+) FROM investor_profiles WHERE activity_status = 'active'").
		WillReturnRows(sqlmock.NewRows(investorCols).
			AddRow("investor-1", "Apex Ventures", "seed, series-a", "Artificial Intelligence, SaaS", "USA", "100000", "2000000", "verified", "active").
			AddRow("investor-2", "Harbor Capital", "growth", "Logistics", "Brazil", "1000000", "5000000", "pending", "active"))

	reason := "Stage alignment, Sector alignment, Check size compatibility, Geographic focus, Verified investor, Strong pitch readiness"
	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO matches").
		WithArgs(sqlmock.AnyArg(), "founder-1", "investor-1", 100, "new", reason, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(matchCols).
			AddRow("match-1", "founder-1", "investor-1", 100, "new", reason, nil, nil, now, now))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{FounderID: "founder-1"})

	require.NoError(t, err)
	assert.Equal(t, "founder-1", output.FounderID)
	assert.Equal(t, 2, output.InvestorsEvaluated)
	assert.Equal(t, 1, output.MatchesGenerated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoDeckScoresWithoutPitchFactor(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM founder_profiles WHERE id").
		WithArgs("founder-1").
		WillReturnRows(sqlmock.NewRows(founderCols).
			AddRow("founder-1", "Nebula AI", "seed", "Artificial Intelligence", "SaaS", "150000", "San Francisco", "USA", true, true, 2023, 85))

	mock.ExpectQuery("SELECT deck_score FROM pitch_decks").
		WithArgs("founder-1").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery("SELECT (.+) FROM investor_profiles WHERE activity_status = 'active'").
		WillReturnRows(sqlmock.NewRows(investorCols).
			AddRow("investor-1", "Apex Ventures", "seed, series-a", "Artificial Intelligence, SaaS", "USA", "100000", "2000000", "verified", "active"))

	reason := "Stage alignment, Sector alignment, Check size compatibility, Geographic focus, Verified investor"
	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO matches").
		WithArgs(sqlmock.AnyArg(), "founder-1", "investor-1", 90, "new", reason, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(matchCols).
			AddRow("match-1", "founder-1", "investor-1", 90, "new", reason, nil, nil, now, now))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{FounderID: "founder-1"})

	require.NoError(t, err)
	assert.Equal(t, 1, output.MatchesGenerated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_FounderNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM founder_profiles WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{FounderID: "missing"})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
