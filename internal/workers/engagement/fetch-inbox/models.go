// internal/workers/engagement/fetch-inbox/models.go
package fetchinbox

import "dealflow-workers/internal/models"

const (
	RoleFounder  = "founder"
	RoleInvestor = "investor"
)

type Input struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	// MarkReadConversationID marks one conversation read before the
	// inbox is listed, so the returned unread counts reflect the view
	// the caller is about to render.
	MarkReadConversationID string `json:"markReadConversationId,omitempty"`
}

type Output struct {
	Entries     []models.InboxEntry `json:"entries"`
	TotalUnread int                 `json:"totalUnread"`
}
