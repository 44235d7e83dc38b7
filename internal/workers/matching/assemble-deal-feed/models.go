// internal/workers/matching/assemble-deal-feed/models.go
package assembledealfeed

import "dealflow-workers/internal/models"

type Input struct {
	InvestorID string             `json:"investorId"`
	Filters    models.FeedFilters `json:"filters,omitempty"`
}

type Output struct {
	DealFeed   []models.DealCard `json:"dealFeed"`
	TotalCount int               `json:"totalCount"`
}
