package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest payload. Absent fields stay untouched; an empty
// assigned_to string unassigns.
type UpdateTicketRequest struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AssignedTo *string `json:"assigned_to"`
	Version    *int64  `json:"version"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

// TicketResponse is the enriched ticket view.
type TicketResponse struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Category      domain.TicketCategory `json:"category"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	SLADeadline   time.Time             `json:"sla_deadline"`
	SLAStatus     sla.Status            `json:"sla_status"`
	TimeRemaining string                `json:"time_remaining"`
	AssignedTo    *string               `json:"assigned_to"`
	CreatedBy     string                `json:"created_by"`
	Version       int64                 `json:"version"`
	CommentCount  int                   `json:"comment_count"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with comments and timeline.
type TicketDetailResponse struct {
	TicketResponse
	Comments []CommentResponse       `json:"comments"`
	Timeline []TimelineEventResponse `json:"timeline"`
}

// TicketPageResponse wraps a listing page.
type TicketPageResponse struct {
	Items      []TicketResponse `json:"items"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
	Total      int64            `json:"total"`
	NextOffset *int             `json:"next_offset"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	ParentID  *string   `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineEventResponse represents an audit entry.
type TimelineEventResponse struct {
	ID        string                `json:"id"`
	TicketID  string                `json:"ticket_id"`
	UserID    *string               `json:"user_id"`
	Action    domain.TimelineAction `json:"action"`
	OldValue  *string               `json:"old_value"`
	NewValue  *string               `json:"new_value"`
	CreatedAt time.Time             `json:"created_at"`
}

// TicketStatsResponse aggregates counts for the stats endpoint.
type TicketStatsResponse struct {
	Total      int64                           `json:"total"`
	ByStatus   map[domain.TicketStatus]int64   `json:"by_status"`
	ByPriority map[domain.TicketPriority]int64 `json:"by_priority"`
}

// FromEnrichedTicket maps the service view to the response shape.
func FromEnrichedTicket(t service.EnrichedTicket) TicketResponse {
	return TicketResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Category:      t.Category,
		Status:        t.Status,
		Priority:      t.Priority,
		SLADeadline:   t.SLADeadline,
		SLAStatus:     t.SLAStatus,
		TimeRemaining: t.TimeRemaining,
		AssignedTo:    t.AssignedTo,
		CreatedBy:     t.CreatedBy,
		Version:       t.Version,
		CommentCount:  t.CommentCount,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// FromTicketDetail maps the full detail view.
func FromTicketDetail(d service.TicketDetail) TicketDetailResponse {
	return TicketDetailResponse{
		TicketResponse: FromEnrichedTicket(d.EnrichedTicket),
		Comments:       FromComments(d.Comments),
		Timeline:       FromTimeline(d.Timeline),
	}
}

// FromTicketPage maps a listing page.
func FromTicketPage(p service.TicketPage) TicketPageResponse {
	items := make([]TicketResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, FromEnrichedTicket(item))
	}
	return TicketPageResponse{
		Items:      items,
		Limit:      p.Limit,
		Offset:     p.Offset,
		Total:      p.Total,
		NextOffset: p.NextOffset,
	}
}

// FromComment maps a single comment.
func FromComment(c domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TicketID:  c.TicketID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
	}
}

// FromComments maps a comment list, never nil.
func FromComments(comments []domain.Comment) []CommentResponse {
	result := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		result = append(result, FromComment(c))
	}
	return result
}

// FromTimeline maps a timeline list, never nil.
func FromTimeline(items []domain.TimelineEvent) []TimelineEventResponse {
	result := make([]TimelineEventResponse, 0, len(items))
	for _, e := range items {
		result = append(result, TimelineEventResponse{
			ID:        e.ID,
			TicketID:  e.TicketID,
			UserID:    e.UserID,
			Action:    e.Action,
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
			CreatedAt: e.CreatedAt,
		})
	}
	return result
}

// FromTicketStats maps aggregate counters.
func FromTicketStats(s repository.TicketStats) TicketStatsResponse {
	return TicketStatsResponse{
		Total:      s.Total,
		ByStatus:   s.ByStatus,
		ByPriority: s.ByPriority,
	}
}
