// internal/workers/matching/assemble-deal-feed/handler_test.go
package assembledealfeed

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/models"
	"dealflow-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{
		MinScore:        30,
		Limit:           50,
		TractionPeriods: 2,
		DeckScoreTTL:    5 * time.Minute,
		Timeout:         10 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

var founderCols = []string{
	"id", "company_name", "stage", "sector", "business_model", "min_check_size",
	"location", "country", "actively_raising", "is_verified", "founding_year", "profile_completion",
}

var investorCols = []string{
	"id", "fund_name", "investment_stage", "sector_focus", "geography_focus",
	"typical_check_min", "typical_check_max", "verification_status", "activity_status",
}

// fitFounder scores 100 against the test investor when its deck scores
// 85; weakFounder scores 10 (verified + active only).
func fitFounder(id, company string) []driver.Value {
	return []driver.Value{id, company, "seed", "Artificial Intelligence", "SaaS", "150000", "San Francisco", "USA", true, true, 2023, 85}
}

func weakFounder(id, company string) []driver.Value {
	return []driver.Value{id, company, "series-b", "Fintech", "B2C", "50000", "Mumbai", "India", true, false, 2021, 60}
}

func expectInvestor(mock sqlmock.Sqlmock, id string) {
	mock.ExpectQuery("SELECT (.+) FROM investor_profiles WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(investorCols).
			AddRow(id, "Apex Ventures", "seed, series-a", "Artificial Intelligence, SaaS", "USA", "100000", "2000000", "verified", "active"))
}

func tractionCols() []string {
	return []string{"id", "founder_id", "month_label", "revenue", "expenses", "active_users"}
}

func TestHandler_Execute_SavedFirstThenScoreDesc(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupMiniredis(t)

	expectInvestor(mock, "investor-1")

	mock.ExpectQuery("SELECT (.+) FROM founder_profiles WHERE actively_raising = TRUE ORDER BY id ASC").
		WillReturnRows(sqlmock.NewRows(founderCols).
			AddRow(fitFounder("founder-a", "Nebula AI")...).
			AddRow(weakFounder("founder-b", "Ledger Labs")...).
			AddRow(fitFounder("founder-c", "Orbit ML")...).
			AddRow(weakFounder("founder-d", "Paywise")...))

	mock.ExpectQuery("SELECT founder_id, status FROM matches").
		WithArgs("investor-1", pq.Array([]string{"founder-a", "founder-b", "founder-c", "founder-d"})).
		WillReturnRows(sqlmock.NewRows([]string{"founder_id", "status"}).
			AddRow("founder-b", "saved").
			AddRow("founder-c", "declined"))

	// founder-a: deck score then traction.
	mock.ExpectQuery("SELECT deck_score FROM pitch_decks").
		WithArgs("founder-a").
		WillReturnRows(sqlmock.NewRows([]string{"deck_score"}).AddRow(85))
	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-a", 2).
		WillReturnRows(sqlmock.NewRows(tractionCols()).
			AddRow("t-2", "founder-a", "2026-08", "5000", "8000", 400).
			AddRow("t-1", "founder-a", "2026-07", "4000", "7000", 300))

	// founder-b: no deck, no traction yet. Saved, so it stays in.
	mock.ExpectQuery("SELECT deck_score FROM pitch_decks").
		WithArgs("founder-b").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-b", 2).
		WillReturnRows(sqlmock.NewRows(tractionCols()))

	// founder-c is declined: no further queries. founder-d scores 10 as
	// status new: deck lookup only, dropped before traction.
	mock.ExpectQuery("SELECT deck_score FROM pitch_decks").
		WithArgs("founder-d").
		WillReturnError(sql.ErrNoRows)

	handler := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{InvestorID: "investor-1"})

	require.NoError(t, err)
	require.Len(t, output.DealFeed, 2)
	assert.Equal(t, 2, output.TotalCount)

	// Saved resurfaces first despite its low score.
	saved := output.DealFeed[0]
	assert.Equal(t, "founder-b", saved.FounderID)
	assert.Equal(t, models.StatusSaved, saved.Status)
	assert.Equal(t, 10, saved.MatchScore)
	assert.True(t, saved.MRR.IsZero())
	assert.Equal(t, 0, saved.Growth)

	top := output.DealFeed[1]
	assert.Equal(t, "founder-a", top.FounderID)
	assert.Equal(t, models.StatusNew, top.Status)
	assert.Equal(t, 100, top.MatchScore)
	assert.Equal(t, "5000", top.MRR.String())
	assert.Equal(t, 25, top.Growth)
	assert.Equal(t, 85, top.PitchScore)

	assert.NoError(t, mock.ExpectationsWereMet())

	// Deck scores land in the cache for the next assembly.
	cached, err := mr.Get("deck:score:founder-a")
	require.NoError(t, err)
	assert.Equal(t, "85", cached)
}

func TestHandler_Execute_DeckScoreCacheHit(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupMiniredis(t)

	require.NoError(t, mr.Set("deck:score:founder-a", "85"))

	expectInvestor(mock, "investor-1")
	mock.ExpectQuery("SELECT (.+) FROM founder_profiles WHERE actively_raising = TRUE ORDER BY id ASC").
		WillReturnRows(sqlmock.NewRows(founderCols).AddRow(fitFounder("founder-a", "Nebula AI")...))
	mock.ExpectQuery("SELECT founder_id, status FROM matches").
		WithArgs("investor-1", pq.Array([]string{"founder-a"})).
		WillReturnRows(sqlmock.NewRows([]string{"founder_id", "status"}))

	// No pitch_decks expectation: the cached score is used directly.
	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-a", 2).
		WillReturnRows(sqlmock.NewRows(tractionCols()))

	handler := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{InvestorID: "investor-1"})

	require.NoError(t, err)
	require.Len(t, output.DealFeed, 1)
	assert.Equal(t, 100, output.DealFeed[0].MatchScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DeckScoreCacheUnavailable(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("deck:score:founder-a").SetErr(errors.New("connection refused"))
	redisMock.ExpectSet("deck:score:founder-a", "85", 5*time.Minute).SetVal("OK")

	expectInvestor(mock, "investor-1")
	mock.ExpectQuery("SELECT (.+) FROM founder_profiles WHERE actively_raising = TRUE ORDER BY id ASC").
		WillReturnRows(sqlmock.NewRows(founderCols).AddRow(fitFounder("founder-a", "Nebula AI")...))
	mock.ExpectQuery("SELECT founder_id, status FROM matches").
		WithArgs("investor-1", pq.Array([]string{"founder-a"})).
		WillReturnRows(sqlmock.NewRows([]string{"founder_id", "status"}))
	mock.ExpectQuery("SELECT deck_score FROM pitch_decks").
		WithArgs("founder-a").
		WillReturnRows(sqlmock.NewRows([]string{"deck_score"}).AddRow(85))
	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-a", 2).
		WillReturnRows(sqlmock.NewRows(tractionCols()))

	handler := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{InvestorID: "investor-1"})

	require.NoError(t, err)
	require.Len(t, output.DealFeed, 1)
	assert.Equal(t, 100, output.DealFeed[0].MatchScore)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_LimitApplied(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupMiniredis(t)

	require.NoError(t, mr.Set("deck:score:founder-a", "85"))
	require.NoError(t, mr.Set("deck:score:founder-b", "85"))

	expectInvestor(mock, "investor-1")
	mock.ExpectQuery("SELECT (.+) FROM founder_profiles WHERE actively_raising = TRUE ORDER BY id ASC").
		WillReturnRows(sqlmock.NewRows(founderCols).
			AddRow(fitFounder("founder-a", "Nebula AI")...).
			AddRow(fitFounder("founder-b", "Orbit ML")...))
	mock.ExpectQuery("SELECT founder_id, status FROM matches").
		WithArgs("investor-1", pq.Array([]string{"founder-a", "founder-b"})).
		WillReturnRows(sqlmock.NewRows([]string{"founder_id", "status"}))
	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-a", 2).
		WillReturnRows(sqlmock.NewRows(tractionCols()))
	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-b", 2).
		WillReturnRows(sqlmock.NewRows(tractionCols()))

	handler := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		InvestorID: "investor-1",
		Filters:    models.FeedFilters{Limit: 1},
	})

	require.NoError(t, err)
	require.Len(t, output.DealFeed, 1)
	// Equal scores keep candidate-query order: founder-a survives the cut.
	assert.Equal(t, "founder-a", output.DealFeed[0].FounderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InvestorNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniredis(t)

	mock.ExpectQuery("SELECT (.+) FROM investor_profiles WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	handler := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{InvestorID: "missing"})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
