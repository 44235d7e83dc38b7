// internal/matching/transitions.go
package matching

import (
	"errors"
	"fmt"

	"dealflow-workers/internal/models"
)

var ErrInvalidTransition = errors.New("INVALID_STATUS_ACTION")

// Outcome declares what a status transition does, independent of any
// store. The caller applies the status write and the listed side
// effects atomically.
type Outcome struct {
	From models.MatchStatus
	To   models.MatchStatus

	// CreateConversation means the pair enters an engaged status;
	// conversation creation is get-or-create, so repeating it is a no-op.
	CreateConversation bool
	// DeleteConversation means the match is declined out of an engaged
	// status; the pair's conversation and its messages are discarded.
	DeleteConversation bool
	// RecordInvestment means the transition must capture the invested
	// amount and timestamp.
	RecordInvestment bool
	// NoOp marks an accepted edge with no effect (re-declining).
	NoOp bool
}

type edge struct {
	create bool
	delete bool
	invest bool
	noop   bool
}

// The transition table. Declined is a dead end reachable from every
// state; invested is terminal.
var transitions = map[models.MatchStatus]map[models.MatchStatus]edge{
	models.StatusNew: {
		models.StatusSaved:      {},
		models.StatusInterested: {create: true},
		models.StatusDeclined:   {},
	},
	models.StatusSaved: {
		models.StatusInterested: {create: true},
		models.StatusDeclined:   {},
	},
	models.StatusInterested: {
		models.StatusConnected: {create: true},
		models.StatusDeclined:  {delete: true},
	},
	models.StatusConnected: {
		models.StatusInvested: {invest: true},
		models.StatusDeclined: {delete: true},
	},
	models.StatusDeclined: {
		models.StatusDeclined: {noop: true},
	},
}

// Transition resolves one (current, action) pair against the table.
// Edges not in the table are rejected rather than silently accepted.
func Transition(current, action models.MatchStatus) (Outcome, error) {
	actions, ok := transitions[current]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: no transitions from status %q", ErrInvalidTransition, current)
	}
	e, ok := actions[action]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, current, action)
	}
	return Outcome{
		From:               current,
		To:                 action,
		CreateConversation: e.create,
		DeleteConversation: e.delete,
		RecordInvestment:   e.invest,
		NoOp:               e.noop,
	}, nil
}

// IsCreatingAction reports whether a direct user action may lazily
// create the match row when none exists yet. Saving and expressing
// interest start a relationship; connecting, investing and declining
// require one.
func IsCreatingAction(action models.MatchStatus) bool {
	return action == models.StatusSaved || action == models.StatusInterested
}

// ValidAction reports whether the string names a known status action.
func ValidAction(action models.MatchStatus) bool {
	switch action {
	case models.StatusSaved, models.StatusInterested, models.StatusConnected,
		models.StatusInvested, models.StatusDeclined:
		return true
	}
	return false
}
