// internal/matching/traction_test.go
package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"dealflow-workers/internal/models"
)

func metric(rev, exp int64, users int) models.TractionMetric {
	return models.TractionMetric{
		Revenue:     decimal.NewFromInt(rev),
		Expenses:    decimal.NewFromInt(exp),
		ActiveUsers: users,
	}
}

func TestTractionSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		metrics    []models.TractionMetric
		wantMRR    int64
		wantGrowth int
	}{
		{
			name:       "empty history yields zero without error",
			metrics:    nil,
			wantMRR:    0,
			wantGrowth: 0,
		},
		{
			name:       "single period has no growth",
			metrics:    []models.TractionMetric{metric(12000, 9000, 40)},
			wantMRR:    12000,
			wantGrowth: 0,
		},
		{
			name:       "zero prior revenue avoids division",
			metrics:    []models.TractionMetric{metric(5000, 8000, 10), metric(0, 8000, 5)},
			wantMRR:    5000,
			wantGrowth: 0,
		},
		{
			name:       "month over month growth",
			metrics:    []models.TractionMetric{metric(15000, 9000, 60), metric(10000, 9000, 40)},
			wantMRR:    15000,
			wantGrowth: 50,
		},
		{
			name:       "shrinking revenue goes negative",
			metrics:    []models.TractionMetric{metric(8000, 9000, 30), metric(10000, 9000, 40)},
			wantMRR:    8000,
			wantGrowth: -20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mrr, growth := TractionSnapshot(tt.metrics)
			assert.True(t, decimal.NewFromInt(tt.wantMRR).Equal(mrr), "mrr = %s", mrr)
			assert.Equal(t, tt.wantGrowth, growth)
		})
	}
}

func TestComputeKPIs(t *testing.T) {
	metrics := []models.TractionMetric{
		metric(15000, 25000, 60),
		metric(10000, 22000, 40),
	}

	k := ComputeKPIs(metrics, decimal.NewFromInt(100000))

	assert.True(t, decimal.NewFromInt(15000).Equal(k.MRR))
	assert.Equal(t, 50, k.Growth)
	assert.True(t, decimal.NewFromInt(10000).Equal(k.Burn))
	assert.Equal(t, 10, k.RunwayMonths)
	assert.False(t, k.Profitable)
	assert.Equal(t, 60, k.ActiveUsers)
}

func TestComputeKPIs_Profitable(t *testing.T) {
	k := ComputeKPIs([]models.TractionMetric{metric(30000, 20000, 100)}, decimal.NewFromInt(50000))

	assert.True(t, k.Profitable)
	assert.Equal(t, 0, k.RunwayMonths)
	assert.True(t, decimal.NewFromInt(-10000).Equal(k.Burn))
}

func TestComputeKPIs_EmptyHistory(t *testing.T) {
	k := ComputeKPIs(nil, decimal.NewFromInt(50000))
	assert.True(t, k.MRR.IsZero())
	assert.Equal(t, 0, k.Growth)
	assert.False(t, k.Profitable)
}
