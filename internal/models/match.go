// internal/models/match.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MatchStatus string

const (
	StatusNew        MatchStatus = "new"
	StatusSaved      MatchStatus = "saved"
	StatusInterested MatchStatus = "interested"
	StatusConnected  MatchStatus = "connected"
	StatusInvested   MatchStatus = "invested"
	StatusDeclined   MatchStatus = "declined"
)

// ManualReason marks a match row created by a direct user action before
// any batch scoring has run for the pair.
const ManualReason = "Manual Interaction"

// Match is the relationship record between one founder and one investor.
// At most one row exists per (founder, investor) pair.
type Match struct {
	ID             string              `json:"id"`
	FounderID      string              `json:"founderId"`
	InvestorID     string              `json:"investorId"`
	MatchScore     int                 `json:"matchScore"`
	Status         MatchStatus         `json:"status"`
	AIReason       string              `json:"aiReason"`
	InvestedAmount decimal.NullDecimal `json:"investedAmount,omitempty"`
	InvestedAt     *time.Time          `json:"investedAt,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}
