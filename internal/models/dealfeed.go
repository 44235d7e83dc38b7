// internal/models/dealfeed.go
package models

import "github.com/shopspring/decimal"

// DealCard is one ranked entry in an investor's deal feed.
type DealCard struct {
	FounderID    string          `json:"founderId"`
	CompanyName  string          `json:"companyName"`
	MatchScore   int             `json:"matchScore"`
	MatchReasons string          `json:"matchReasons"`
	MRR          decimal.Decimal `json:"mrr"`
	Growth       int             `json:"growth"` // percent vs prior period
	PitchScore   int             `json:"pitchScore"`
	Status       MatchStatus     `json:"status"`
}

// FeedFilters are the caller-supplied feed filters after normalization.
type FeedFilters struct {
	Stage     string `json:"stage,omitempty"`     // exact match
	Sector    string `json:"sector,omitempty"`    // substring, lowercased
	Geography string `json:"geography,omitempty"` // substring over location or country
	Limit     int    `json:"limit,omitempty"`
}
