// internal/workers/engagement/fetch-inbox/handler_test.go
package fetchinbox

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"dealflow-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func inboxCols() []string {
	return []string{"id", "partner_name", "last_message", "last_at", "unread"}
}

func TestHandler_Execute_FounderInbox(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	lastAt := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM conversations c JOIN investor_profiles").
		WithArgs("founder-1").
		WillReturnRows(sqlmock.NewRows(inboxCols()).
			AddRow("conv-2", "Apex Ventures", "Looking forward to the call", lastAt, 2).
			AddRow("conv-1", "Harbor Capital", "", nil, 0))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		UserID: "founder-1",
		Role:   RoleFounder,
	})

	require.NoError(t, err)
	require.Len(t, output.Entries, 2)
	assert.Equal(t, 2, output.TotalUnread)
	assert.Equal(t, "Apex Ventures", output.Entries[0].PartnerName)
	assert.Equal(t, 2, output.Entries[0].UnreadCount)
	assert.Nil(t, output.Entries[1].LastActivity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InvestorInboxMarksRead(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec("UPDATE messages SET is_read = TRUE").
		WithArgs("conv-1", "investor-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT (.+) FROM conversations c JOIN founder_profiles").
		WithArgs("investor-1").
		WillReturnRows(sqlmock.NewRows(inboxCols()).
			AddRow("conv-1", "Nebula AI", "Thanks!", time.Now().UTC(), 0))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		UserID:                 "investor-1",
		Role:                   RoleInvestor,
		MarkReadConversationID: "conv-1",
	})

	require.NoError(t, err)
	require.Len(t, output.Entries, 1)
	assert.Equal(t, 0, output.TotalUnread)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_EmptyInbox(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM conversations c JOIN investor_profiles").
		WithArgs("founder-1").
		WillReturnRows(sqlmock.NewRows(inboxCols()))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		UserID: "founder-1",
		Role:   RoleFounder,
	})

	require.NoError(t, err)
	assert.Empty(t, output.Entries)
	assert.Equal(t, 0, output.TotalUnread)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UnknownRole(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		UserID: "user-1",
		Role:   "admin",
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrUnknownRole)
}
