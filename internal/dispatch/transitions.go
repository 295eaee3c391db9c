package dispatch

import "github.com/example/ride-dispatch/internal/models"

// Action is an operation applied to a ride request.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionCancel   Action = "cancel"
	ActionDecline  Action = "decline"
	ActionComplete Action = "complete"
	ActionExpire   Action = "expire"
	ActionGoStale  Action = "go-stale"
)

// transitions is the request state machine: (current status, action) -> next
// status. Anything absent is a rejected transition. Keeping the table
// explicit means "can a pending request be completed?" is answered here, not
// by checks scattered across call sites.
var transitions = map[models.RequestStatus]map[Action]models.RequestStatus{
	models.StatusPending: {
		ActionAccept:  models.StatusAssigned,
		ActionCancel:  models.StatusCancelled,
		ActionDecline: models.StatusDeclined,
		ActionExpire:  models.StatusExpired,
	},
	models.StatusAssigned: {
		ActionComplete: models.StatusCompleted,
		ActionGoStale:  models.StatusStale,
	},
}

// nextStatus resolves a transition, reporting whether it is allowed.
func nextStatus(current models.RequestStatus, action Action) (models.RequestStatus, bool) {
	next, ok := transitions[current][action]
	return next, ok
}
