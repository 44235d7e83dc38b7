// internal/matching/transitions_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealflow-workers/internal/models"
)

func TestTransition_Edges(t *testing.T) {
	tests := []struct {
		name    string
		current models.MatchStatus
		action  models.MatchStatus
		want    Outcome
		wantErr bool
	}{
		{
			name:    "new to saved",
			current: models.StatusNew,
			action:  models.StatusSaved,
			want:    Outcome{From: models.StatusNew, To: models.StatusSaved},
		},
		{
			name:    "new to interested opens conversation",
			current: models.StatusNew,
			action:  models.StatusInterested,
			want:    Outcome{From: models.StatusNew, To: models.StatusInterested, CreateConversation: true},
		},
		{
			name:    "new to declined has no conversation to remove",
			current: models.StatusNew,
			action:  models.StatusDeclined,
			want:    Outcome{From: models.StatusNew, To: models.StatusDeclined},
		},
		{
			name:    "saved to interested opens conversation",
			current: models.StatusSaved,
			action:  models.StatusInterested,
			want:    Outcome{From: models.StatusSaved, To: models.StatusInterested, CreateConversation: true},
		},
		{
			name:    "interested to connected keeps conversation idempotently",
			current: models.StatusInterested,
			action:  models.StatusConnected,
			want:    Outcome{From: models.StatusInterested, To: models.StatusConnected, CreateConversation: true},
		},
		{
			name:    "interested to declined removes conversation",
			current: models.StatusInterested,
			action:  models.StatusDeclined,
			want:    Outcome{From: models.StatusInterested, To: models.StatusDeclined, DeleteConversation: true},
		},
		{
			name:    "connected to invested records investment",
			current: models.StatusConnected,
			action:  models.StatusInvested,
			want:    Outcome{From: models.StatusConnected, To: models.StatusInvested, RecordInvestment: true},
		},
		{
			name:    "connected to declined removes conversation",
			current: models.StatusConnected,
			action:  models.StatusDeclined,
			want:    Outcome{From: models.StatusConnected, To: models.StatusDeclined, DeleteConversation: true},
		},
		{
			name:    "re-declining is an accepted no-op",
			current: models.StatusDeclined,
			action:  models.StatusDeclined,
			want:    Outcome{From: models.StatusDeclined, To: models.StatusDeclined, NoOp: true},
		},
		{
			name:    "new straight to invested is rejected",
			current: models.StatusNew,
			action:  models.StatusInvested,
			wantErr: true,
		},
		{
			name:    "saved straight to connected is rejected",
			current: models.StatusSaved,
			action:  models.StatusConnected,
			wantErr: true,
		},
		{
			name:    "declined cannot be revived",
			current: models.StatusDeclined,
			action:  models.StatusInterested,
			wantErr: true,
		},
		{
			name:    "invested is terminal",
			current: models.StatusInvested,
			action:  models.StatusDeclined,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.action)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCreatingAction(t *testing.T) {
	assert.True(t, IsCreatingAction(models.StatusSaved))
	assert.True(t, IsCreatingAction(models.StatusInterested))
	assert.False(t, IsCreatingAction(models.StatusConnected))
	assert.False(t, IsCreatingAction(models.StatusInvested))
	assert.False(t, IsCreatingAction(models.StatusDeclined))
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(models.StatusSaved))
	assert.False(t, ValidAction(models.StatusNew)) // never a caller action
	assert.False(t, ValidAction(models.MatchStatus("archived")))
}
