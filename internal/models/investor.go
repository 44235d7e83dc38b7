// internal/models/investor.go
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

type ActivityStatus string

const (
	ActivityActive   ActivityStatus = "active"
	ActivityInactive ActivityStatus = "inactive"
)

// InvestorProfile is the engine's read-only view of an investor.
type InvestorProfile struct {
	ID                 string              `json:"id"`
	FundName           string              `json:"fundName"`
	InvestmentStage    string              `json:"investmentStage"` // comma-separated stage list
	SectorFocus        string              `json:"sectorFocus"`
	GeographyFocus     string              `json:"geographyFocus"`
	TypicalCheckMin    decimal.NullDecimal `json:"typicalCheckMin"`
	TypicalCheckMax    decimal.NullDecimal `json:"typicalCheckMax"`
	VerificationStatus VerificationStatus  `json:"verificationStatus"`
	ActivityStatus     ActivityStatus      `json:"activityStatus"`
}

// Stages splits the stored stage list into normalized tokens. Token
// membership avoids the substring false positive where "seed" would
// match inside "pre-seed".
func (i *InvestorProfile) Stages() []string {
	parts := strings.Split(i.InvestmentStage, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToLower(strings.TrimSpace(p)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
