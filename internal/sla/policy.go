// Package sla computes service-level-agreement deadlines and derives their
// display state. Everything here is pure: deadlines are fixed at write
// time from the ticket's creation timestamp and re-evaluated lazily at
// read time, so no background sweep exists.
package sla

import (
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Hour offsets applied to the ticket creation time per priority.
var deadlineOffsets = map[domain.TicketPriority]time.Duration{
	domain.TicketPriorityCritical: 4 * time.Hour,
	domain.TicketPriorityHigh:     24 * time.Hour,
	domain.TicketPriorityMedium:   48 * time.Hour,
	domain.TicketPriorityLow:      72 * time.Hour,
}

// atRiskWindow is how close to the deadline a ticket may get before it is
// flagged at_risk.
const atRiskWindow = 4 * time.Hour

// Status labels derived from a deadline.
type Status string

const (
	StatusMet      Status = "met"
	StatusBreached Status = "breached"
	StatusAtRisk   Status = "at_risk"
	StatusOnTrack  Status = "on_track"
)

// Deadline returns the SLA deadline for a ticket created at createdAt with
// the given priority. Unknown priorities fall back to the medium offset.
// After a priority change the deadline is recomputed from the original
// creation time, never from the time of the change.
func Deadline(priority domain.TicketPriority, createdAt time.Time) time.Time {
	offset, ok := deadlineOffsets[priority]
	if !ok {
		offset = deadlineOffsets[domain.TicketPriorityMedium]
	}
	return createdAt.Add(offset)
}

// StatusAt derives the SLA state at the given instant. Resolved and closed
// tickets always report met, even past their deadline.
func StatusAt(deadline time.Time, ticketStatus domain.TicketStatus, now time.Time) Status {
	if ticketStatus.Terminal() {
		return StatusMet
	}
	if now.After(deadline) {
		return StatusBreached
	}
	if deadline.Sub(now) <= atRiskWindow {
		return StatusAtRisk
	}
	return StatusOnTrack
}

// TimeRemainingAt renders a human-readable countdown for display. It is
// not authoritative; StatusAt is.
func TimeRemainingAt(deadline, now time.Time) string {
	if now.After(deadline) {
		return fmt.Sprintf("Overdue by %d hours", int(now.Sub(deadline).Hours()))
	}
	left := deadline.Sub(now)
	switch {
	case left >= 24*time.Hour:
		return fmt.Sprintf("%d days remaining", int(left.Hours())/24)
	case left >= time.Hour:
		return fmt.Sprintf("%d hours remaining", int(left.Hours()))
	default:
		return fmt.Sprintf("%d minutes remaining", int(left.Minutes()))
	}
}
