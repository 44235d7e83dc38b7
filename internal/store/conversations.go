// internal/store/conversations.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealflow-workers/internal/models"
)

type ConversationStore struct {
	db *sql.DB
}

func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// GetOrCreateTx returns the pair's conversation id, creating the row if
// none exists. ON CONFLICT DO NOTHING plus a reread makes this safe
// when both parties transition into interested at the same moment.
func (s *ConversationStore) GetOrCreateTx(ctx context.Context, tx *sql.Tx, founderID, investorID string) (string, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (id, founder_id, investor_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (founder_id, investor_id) DO NOTHING`,
		uuid.New().String(), founderID, investorID, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}

	var id string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM conversations
		WHERE founder_id = $1 AND investor_id = $2`, founderID, investorID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("fetch conversation: %w", err)
	}
	return id, nil
}

// DeleteTx removes the pair's conversation and all of its messages.
// Destructive and non-recoverable; callers warn the user before
// declining an engaged match.
func (s *ConversationStore) DeleteTx(ctx context.Context, tx *sql.Tx, founderID, investorID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM messages WHERE conversation_id IN (
			SELECT id FROM conversations WHERE founder_id = $1 AND investor_id = $2
		)`, founderID, investorID)
	if err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM conversations WHERE founder_id = $1 AND investor_id = $2`,
		founderID, investorID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

const inboxQuery = `
	SELECT c.id,
	       %s,
	       COALESCE((SELECT body FROM messages WHERE conversation_id = c.id ORDER BY created_at DESC LIMIT 1), ''),
	       (SELECT created_at FROM messages WHERE conversation_id = c.id ORDER BY created_at DESC LIMIT 1),
	       (SELECT COUNT(*) FROM messages WHERE conversation_id = c.id AND is_read = FALSE AND sender_id <> $1)
	FROM conversations c
	%s
	WHERE %s = $1
	ORDER BY 4 DESC NULLS LAST`

// ListForFounder returns a founder's inbox, newest activity first.
func (s *ConversationStore) ListForFounder(ctx context.Context, founderID string) ([]models.InboxEntry, error) {
	query := fmt.Sprintf(inboxQuery,
		"ip.fund_name",
		"JOIN investor_profiles ip ON c.investor_id = ip.id",
		"c.founder_id")
	return s.listInbox(ctx, query, founderID)
}

// ListForInvestor returns an investor's inbox, newest activity first.
func (s *ConversationStore) ListForInvestor(ctx context.Context, investorID string) ([]models.InboxEntry, error) {
	query := fmt.Sprintf(inboxQuery,
		"fp.company_name",
		"JOIN founder_profiles fp ON c.founder_id = fp.id",
		"c.investor_id")
	return s.listInbox(ctx, query, investorID)
}

func (s *ConversationStore) listInbox(ctx context.Context, query, viewerID string) ([]models.InboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query inbox: %w", err)
	}
	defer rows.Close()

	var entries []models.InboxEntry
	for rows.Next() {
		var e models.InboxEntry
		var lastAt sql.NullTime
		if err := rows.Scan(&e.ConversationID, &e.PartnerName, &e.LastMessage, &lastAt, &e.UnreadCount); err != nil {
			return nil, fmt.Errorf("scan inbox entry: %w", err)
		}
		if lastAt.Valid {
			t := lastAt.Time
			e.LastActivity = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UnreadCount counts messages in one conversation that the viewer has
// not read yet.
func (s *ConversationStore) UnreadCount(ctx context.Context, conversationID, viewerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE conversation_id = $1 AND is_read = FALSE AND sender_id <> $2`,
		conversationID, viewerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkRead flags everything the other party sent as read.
func (s *ConversationStore) MarkRead(ctx context.Context, conversationID, viewerID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2`, conversationID, viewerID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// AppendMessage adds one message to a conversation.
func (s *ConversationStore) AppendMessage(ctx context.Context, conversationID, senderID, body string) (*models.Message, error) {
	m := models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)`,
		m.ID, m.ConversationID, m.SenderID, m.Body, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return &m, nil
}
