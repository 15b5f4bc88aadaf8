package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is the core record of the API. CreatedBy is nullable to tolerate
// legacy rows created before ownership was enforced; new events always get
// the authenticated requester as owner.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:event"`

	ID          int64      `bun:"id,pk,autoincrement" json:"event_id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description,notnull,default:''" json:"description"`
	Location    string     `bun:"location,notnull,default:''" json:"location"`
	StartTime   *time.Time `bun:"start_time,nullzero" json:"start_time"`
	EndTime     *time.Time `bun:"end_time,nullzero" json:"end_time"`
	CreatedBy   *int64     `bun:"created_by,nullzero" json:"-"`

	// Owner username, populated by a join in the db layer. Read-only on the
	// wire, mirrors created_by.
	CreatedByUsername string `bun:"created_by_username,scanonly" json:"created_by"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// IsOwnedBy reports whether the given user owns the event. Events without an
// owner belong to nobody.
func (e *Event) IsOwnedBy(userID int64) bool {
	return e.CreatedBy != nil && *e.CreatedBy == userID
}
