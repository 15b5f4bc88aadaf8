package events

import (
	"github.com/MinjunBark/ForRev/internal/models"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Allows is the object-level authorization rule: reads are open to anyone,
// writes and deletes only to the event's owner. Evaluated per request, no
// state involved.
func Allows(actor *models.User, action Action, event *models.Event) bool {
	if action == ActionRead {
		return true
	}
	if actor == nil {
		return false
	}
	return event.IsOwnedBy(actor.ID)
}
