// internal/models/traction.go
package models

import "github.com/shopspring/decimal"

// TractionMetric is one reported period of founder traction data.
type TractionMetric struct {
	ID          string          `json:"id"`
	FounderID   string          `json:"founderId"`
	MonthLabel  string          `json:"monthLabel"`
	Revenue     decimal.Decimal `json:"revenue"`
	Expenses    decimal.Decimal `json:"expenses"`
	ActiveUsers int             `json:"activeUsers"`
}

// PitchDeck is the stored artifact of an external deck analysis. Only
// the derived score matters to the engine.
type PitchDeck struct {
	ID        string `json:"id"`
	FounderID string `json:"founderId"`
	FileURL   string `json:"fileUrl"`
	DeckScore int    `json:"deckScore"`
}
