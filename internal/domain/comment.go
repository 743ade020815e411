package domain

import "time"

// Comment is an immutable entry in a ticket's discussion thread. ParentID,
// when set, references another comment on the same ticket.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	ParentID  *string
	CreatedAt time.Time
}
