package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets. Stored values
// always use the underscored form.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// ParseTicketStatus normalizes and validates a status value. Clients may
// send either "in-progress" or "in_progress"; the hyphenated spelling is
// folded to the stored form here and nowhere else.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	normalized := TicketStatus(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_"))
	switch normalized {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return normalized, true
	default:
		return "", false
	}
}

// Terminal reports whether the ticket no longer counts against its SLA.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// ParseTicketPriority validates a priority value, defaulting to medium
// when empty.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	switch TicketPriority(strings.TrimSpace(raw)) {
	case "":
		return TicketPriorityMedium, true
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return TicketPriority(strings.TrimSpace(raw)), true
	default:
		return "", false
	}
}

// TicketCategory groups tickets for triage.
type TicketCategory string

const (
	TicketCategoryGeneral   TicketCategory = "general"
	TicketCategoryTechnical TicketCategory = "technical"
	TicketCategoryBilling   TicketCategory = "billing"
	TicketCategoryAccount   TicketCategory = "account"
	TicketCategoryOther     TicketCategory = "other"
)

// ParseTicketCategory validates a category value, defaulting to general
// when empty.
func ParseTicketCategory(raw string) (TicketCategory, bool) {
	switch TicketCategory(strings.TrimSpace(raw)) {
	case "":
		return TicketCategoryGeneral, true
	case TicketCategoryGeneral, TicketCategoryTechnical, TicketCategoryBilling, TicketCategoryAccount, TicketCategoryOther:
		return TicketCategory(strings.TrimSpace(raw)), true
	default:
		return "", false
	}
}

// Ticket is the aggregate for support requests. Version implements
// optimistic locking: it starts at 1 and increments by exactly one on
// every successful mutating update.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    TicketCategory
	Status      TicketStatus
	Priority    TicketPriority
	SLADeadline time.Time
	AssignedTo  *string
	CreatedBy   string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCreator reports whether the user filed the ticket.
func (t *Ticket) IsCreator(userID string) bool {
	return t.CreatedBy == userID
}

// IsAssignee reports whether the ticket is assigned to the user.
func (t *Ticket) IsAssignee(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}
