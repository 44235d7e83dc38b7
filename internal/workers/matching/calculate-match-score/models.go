// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "dealflow-workers/internal/models"

type Input struct {
	FounderID       string                  `json:"founderId"`
	InvestorID      string                  `json:"investorId"`
	FounderProfile  *models.FounderProfile  `json:"founderProfile,omitempty"`
	InvestorProfile *models.InvestorProfile `json:"investorProfile,omitempty"`
	PitchScore      *int                    `json:"pitchScore,omitempty"`
}

type Output struct {
	MatchScore   int      `json:"matchScore"`
	MatchReasons []string `json:"matchReasons"`
	MatchReason  string   `json:"matchReason"`
	PitchScore   int      `json:"pitchScore"`
}
