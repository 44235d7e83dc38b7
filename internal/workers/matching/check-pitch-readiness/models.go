// internal/workers/matching/check-pitch-readiness/models.go
package checkpitchreadiness

type Input struct {
	FounderID string `json:"founderId"`
}

type Output struct {
	FounderID      string   `json:"founderId"`
	ReadinessScore int      `json:"readinessScore"`
	Label          string   `json:"label"`
	HasDeck        bool     `json:"hasDeck"`
	Suggestions    []string `json:"suggestions"`
}
