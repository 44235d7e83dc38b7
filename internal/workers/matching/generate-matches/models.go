// internal/workers/matching/generate-matches/models.go
package generatematches

type Input struct {
	FounderID string `json:"founderId"`
}

type Output struct {
	FounderID          string `json:"founderId"`
	InvestorsEvaluated int    `json:"investorsEvaluated"`
	MatchesGenerated   int    `json:"matchesGenerated"`
}
