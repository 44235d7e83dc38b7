// internal/workers/analytics/compute-traction-kpis/models.go
package computetractionkpis

import "dealflow-workers/internal/matching"

type Input struct {
	FounderID string `json:"founderId"`
	// CashOnHand is supplied by the caller when known; without it
	// runway stays at zero.
	CashOnHand *float64 `json:"cashOnHand,omitempty"`
}

type Output struct {
	FounderID string        `json:"founderId"`
	KPIs      matching.KPIs `json:"kpis"`
	Periods   int           `json:"periods"`
}
