// internal/workers/analytics/compute-traction-kpis/handler_test.go
package computetractionkpis

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"dealflow-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{Periods: 6, Timeout: 5 * time.Second}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func tractionCols() []string {
	return []string{"id", "founder_id", "month_label", "revenue", "expenses", "active_users"}
}

func cashPtr(v float64) *float64 { return &v }

func TestHandler_Execute_BurningCompany(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-1", 6).
		WillReturnRows(sqlmock.NewRows(tractionCols()).
			AddRow("t-2", "founder-1", "2026-08", "5000", "15000", 400).
			AddRow("t-1", "founder-1", "2026-07", "4000", "14000", 300))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		FounderID:  "founder-1",
		CashOnHand: cashPtr(100000),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Periods)
	assert.Equal(t, "5000", output.KPIs.MRR.String())
	assert.Equal(t, 25, output.KPIs.Growth)
	assert.Equal(t, "10000", output.KPIs.Burn.String())
	assert.Equal(t, 10, output.KPIs.RunwayMonths)
	assert.False(t, output.KPIs.Profitable)
	assert.Equal(t, 400, output.KPIs.ActiveUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ProfitableCompanyHasNoRunway(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-1", 6).
		WillReturnRows(sqlmock.NewRows(tractionCols()).
			AddRow("t-1", "founder-1", "2026-08", "20000", "12000", 900))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{FounderID: "founder-1"})

	require.NoError(t, err)
	assert.True(t, output.KPIs.Profitable)
	assert.Equal(t, 0, output.KPIs.RunwayMonths)
	// Single period: growth has no prior to compare against.
	assert.Equal(t, 0, output.KPIs.Growth)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoTractionReported(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-1", 6).
		WillReturnRows(sqlmock.NewRows(tractionCols()))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{FounderID: "founder-1"})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Periods)
	assert.True(t, output.KPIs.MRR.IsZero())
	assert.Equal(t, 0, output.KPIs.Growth)
	assert.False(t, output.KPIs.Profitable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_QueryFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM traction_metrics").
		WithArgs("founder-1", 6).
		WillReturnError(errors.New("connection reset"))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{FounderID: "founder-1"})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrTractionQueryFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
