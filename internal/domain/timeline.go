package domain

import "time"

// TimelineAction tags what happened to a ticket.
type TimelineAction string

const (
	TimelineActionCreated         TimelineAction = "created"
	TimelineActionStatusChanged   TimelineAction = "status_changed"
	TimelineActionPriorityChanged TimelineAction = "priority_changed"
	TimelineActionAssigned        TimelineAction = "assigned"
	TimelineActionCommentAdded    TimelineAction = "comment_added"
	TimelineActionDeleted         TimelineAction = "deleted"
)

// TimelineEvent is an append-only audit trail entry. Entries are never
// updated or deleted individually; they go away only when their ticket is
// deleted.
type TimelineEvent struct {
	ID        string
	TicketID  string
	UserID    *string
	Action    TimelineAction
	OldValue  *string
	NewValue  *string
	CreatedAt time.Time
}
