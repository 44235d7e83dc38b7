// internal/matching/traction.go
package matching

import (
	"github.com/shopspring/decimal"

	"dealflow-workers/internal/models"
)

// KPIs are display-only traction figures. None of them feed the match
// score.
type KPIs struct {
	MRR          decimal.Decimal `json:"mrr"`
	Growth       int             `json:"growth"` // percent vs prior period
	Burn         decimal.Decimal `json:"burn"`
	RunwayMonths int             `json:"runwayMonths"`
	Profitable   bool            `json:"profitable"`
	ActiveUsers  int             `json:"activeUsers"`
}

var hundred = decimal.NewFromInt(100)

// TractionSnapshot derives mrr and growth from the most recent traction
// periods, newest first. Fewer than two periods, or a zero prior
// revenue, yields growth 0. Missing traction data degrades, it never
// errors.
func TractionSnapshot(metrics []models.TractionMetric) (decimal.Decimal, int) {
	if len(metrics) == 0 {
		return decimal.Zero, 0
	}
	mrr := metrics[0].Revenue
	if len(metrics) < 2 || metrics[1].Revenue.IsZero() {
		return mrr, 0
	}
	prev := metrics[1].Revenue
	growth := mrr.Sub(prev).Div(prev).Mul(hundred)
	return mrr, int(growth.IntPart())
}

// ComputeKPIs derives the full traction dashboard figures from a
// founder's reported periods (newest first) and an estimate of cash on
// hand. Zero or negative burn means the company is profitable and
// runway is not meaningful.
func ComputeKPIs(metrics []models.TractionMetric, cashOnHand decimal.Decimal) KPIs {
	var k KPIs
	if len(metrics) == 0 {
		return k
	}

	latest := metrics[0]
	k.MRR, k.Growth = TractionSnapshot(metrics)
	k.ActiveUsers = latest.ActiveUsers
	k.Burn = latest.Expenses.Sub(latest.Revenue)

	if k.Burn.IsPositive() {
		if cashOnHand.IsPositive() {
			k.RunwayMonths = int(cashOnHand.Div(k.Burn).IntPart())
		}
	} else {
		k.Profitable = true
	}
	return k
}
