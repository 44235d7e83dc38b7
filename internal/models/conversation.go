// internal/models/conversation.go
package models

import "time"

// Conversation is the single messaging thread for one founder/investor
// pair. Created when a match enters an engaged status, removed again if
// the match is declined from that status.
type Conversation struct {
	ID         string    `json:"id"`
	FounderID  string    `json:"founderId"`
	InvestorID string    `json:"investorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Body           string    `json:"body"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

// InboxEntry is one conversation as shown in a user's inbox list.
type InboxEntry struct {
	ConversationID string     `json:"conversationId"`
	PartnerName    string     `json:"partnerName"`
	LastMessage    string     `json:"lastMessage,omitempty"`
	LastActivity   *time.Time `json:"lastActivity,omitempty"`
	UnreadCount    int        `json:"unreadCount"`
}
