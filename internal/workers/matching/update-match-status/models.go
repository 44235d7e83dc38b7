// internal/workers/matching/update-match-status/models.go
package updatematchstatus

import "dealflow-workers/internal/models"

type Input struct {
	FounderID  string `json:"founderId"`
	InvestorID string `json:"investorId"`
	Action     string `json:"action"`
	// InvestedAmount is required by the invested action and ignored by
	// every other one.
	InvestedAmount *float64 `json:"investedAmount,omitempty"`
}

type Output struct {
	FounderID      string             `json:"founderId"`
	InvestorID     string             `json:"investorId"`
	PreviousStatus models.MatchStatus `json:"previousStatus"`
	Status         models.MatchStatus `json:"status"`
	ConversationID string             `json:"conversationId,omitempty"`
}

// inputSchema is the job-variable contract published for this activity.
// Validation happens before any transition logic so a malformed action
// or a negative amount never reaches the state machine.
var inputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"founderId", "investorId", "action"},
	"properties": map[string]interface{}{
		"founderId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"investorId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"action": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"saved", "interested", "connected", "invested", "declined"},
		},
		"investedAmount": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
		},
	},
}
