// internal/models/founder.go
package models

import "github.com/shopspring/decimal"

// FounderProfile is the engine's read-only view of a founder. Profile
// editing lives in a separate service; this record is what the scoring
// and feed paths consume.
type FounderProfile struct {
	ID              string              `json:"id"`
	CompanyName     string              `json:"companyName"`
	Stage           string              `json:"stage"` // pre-seed, seed, series-a, ...
	Sector          string              `json:"sector"`
	BusinessModel   string              `json:"businessModel"`
	MinCheckSize    decimal.NullDecimal `json:"minCheckSize"`
	Location        string              `json:"location"`
	Country         string              `json:"country"`
	ActivelyRaising bool                `json:"activelyRaising"`
	IsVerified      bool                `json:"isVerified"`
	FoundingYear    int                 `json:"foundingYear"`
	CompletionPct   int                 `json:"completionPct"`
}

// Region returns the geography string used for matching: country when
// present, otherwise the free-text location.
func (f *FounderProfile) Region() string {
	if f.Country != "" {
		return f.Country
	}
	return f.Location
}
