// internal/matching/score_test.go
package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"dealflow-workers/internal/models"
)

func money(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func aiFounder() *models.FounderProfile {
	return &models.FounderProfile{
		ID:              "founder-1",
		CompanyName:     "Nebula AI",
		Stage:           "seed",
		Sector:          "Artificial Intelligence",
		BusinessModel:   "B2B",
		MinCheckSize:    money(50000),
		Country:         "USA",
		ActivelyRaising: true,
	}
}

func apexInvestor() *models.InvestorProfile {
	return &models.InvestorProfile{
		ID:                 "investor-1",
		FundName:           "Apex Ventures",
		InvestmentStage:    "seed",
		SectorFocus:        "Artificial Intelligence, SaaS",
		GeographyFocus:     "USA",
		TypicalCheckMin:    money(100000),
		TypicalCheckMax:    money(2000000),
		VerificationStatus: models.VerificationVerified,
		ActivityStatus:     models.ActivityActive,
	}
}

func TestScore_SeedScenario(t *testing.T) {
	// Check size misses (50k below the 100k floor), everything else fires.
	score, reasons := Score(aiFounder(), apexInvestor(), 85)

	assert.Equal(t, 85, score)
	assert.Equal(t, []string{
		"Stage alignment",
		"Sector alignment",
		"Geographic focus",
		"Verified investor",
		"Strong pitch readiness",
	}, reasons)
	assert.Equal(t,
		"Stage alignment, Sector alignment, Geographic focus, Verified investor, Strong pitch readiness",
		ReasonString(reasons))
}

func TestScore_PerfectMatchCapsAtHundred(t *testing.T) {
	f := aiFounder()
	f.MinCheckSize = money(500000)

	score, reasons := Score(f, apexInvestor(), 95)
	assert.Equal(t, 100, score)
	assert.Len(t, reasons, 6)
}

func TestScore_Factors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *models.FounderProfile, inv *models.InvestorProfile)
		pitch    int
		expected int
	}{
		{
			name:     "empty founder stage skips stage factor only",
			mutate:   func(f *models.FounderProfile, _ *models.InvestorProfile) { f.Stage = "" },
			pitch:    85,
			expected: 55,
		},
		{
			name: "seed does not token-match pre-seed",
			mutate: func(f *models.FounderProfile, inv *models.InvestorProfile) {
				inv.InvestmentStage = "pre-seed"
			},
			pitch:    85,
			expected: 55,
		},
		{
			name: "stage list membership",
			mutate: func(f *models.FounderProfile, inv *models.InvestorProfile) {
				inv.InvestmentStage = "pre-seed, seed, series-a"
			},
			pitch:    85,
			expected: 85,
		},
		{
			name: "sector match is case-insensitive substring",
			mutate: func(f *models.FounderProfile, _ *models.InvestorProfile) {
				f.Sector = "artificial intelligence"
			},
			pitch:    85,
			expected: 85,
		},
		{
			name: "missing check size disqualifies only that factor",
			mutate: func(f *models.FounderProfile, _ *models.InvestorProfile) {
				f.MinCheckSize = decimal.NullDecimal{}
			},
			pitch:    85,
			expected: 85,
		},
		{
			name: "check size inside range adds fifteen",
			mutate: func(f *models.FounderProfile, _ *models.InvestorProfile) {
				f.MinCheckSize = money(100000)
			},
			pitch:    85,
			expected: 100,
		},
		{
			name: "location falls back when country empty",
			mutate: func(f *models.FounderProfile, inv *models.InvestorProfile) {
				f.Country = ""
				f.Location = "usa"
			},
			pitch:    85,
			expected: 85,
		},
		{
			name: "unverified inactive investor loses ten",
			mutate: func(_ *models.FounderProfile, inv *models.InvestorProfile) {
				inv.VerificationStatus = models.VerificationPending
				inv.ActivityStatus = models.ActivityInactive
			},
			pitch:    85,
			expected: 75,
		},
		{
			name:     "partial pitch readiness adds five without reason",
			mutate:   func(_ *models.FounderProfile, _ *models.InvestorProfile) {},
			pitch:    65,
			expected: 80,
		},
		{
			name:     "low pitch adds nothing",
			mutate:   func(_ *models.FounderProfile, _ *models.InvestorProfile) {},
			pitch:    40,
			expected: 75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := aiFounder()
			inv := apexInvestor()
			tt.mutate(f, inv)

			score, _ := Score(f, inv, tt.pitch)
			assert.Equal(t, tt.expected, score)
		})
	}
}

func TestScore_EmptyProfilesScoreZeroFactors(t *testing.T) {
	score, reasons := Score(&models.FounderProfile{}, &models.InvestorProfile{}, 0)
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)
}

func TestScore_IsPure(t *testing.T) {
	f := aiFounder()
	inv := apexInvestor()

	s1, r1 := Score(f, inv, 85)
	s2, r2 := Score(f, inv, 85)

	assert.Equal(t, s1, s2)
	assert.Equal(t, r1, r2)
	assert.GreaterOrEqual(t, s1, 0)
	assert.LessOrEqual(t, s1, 100)
}

func TestScore_ReasonOrderStable(t *testing.T) {
	// Knock out the leading factors; the surviving reasons keep table order.
	f := aiFounder()
	f.Stage = ""
	f.Sector = ""

	_, reasons := Score(f, apexInvestor(), 85)
	assert.Equal(t, []string{"Geographic focus", "Verified investor", "Strong pitch readiness"}, reasons)
}
