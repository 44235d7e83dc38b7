// internal/workers/matching/parse-feed-filters/models.go
package parsefeedfilters

import "dealflow-workers/internal/models"

type Input struct {
	RawFilters map[string]interface{} `json:"rawFilters"`
}

type Output struct {
	Filters models.FeedFilters `json:"filters"`
}
