package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// CommentService appends threaded comments under tickets and serves the
// read-only comment and timeline projections.
type CommentService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	timeline   repository.TimelineRepository
	dispatcher events.Dispatcher
	publish    func(ctx context.Context, event events.Event)
}

// NewCommentService constructs the service. It shares the ticket
// service's dispatcher so comment events flow to the same subscribers.
func NewCommentService(tickets *TicketService, comments repository.CommentRepository) *CommentService {
	return &CommentService{
		tickets:    tickets.tickets,
		comments:   comments,
		timeline:   tickets.timeline,
		dispatcher: tickets.dispatcher,
		publish:    tickets.publish,
	}
}

// Add appends a comment. The parent, when given, must be an existing
// comment on the same ticket. Access mirrors ticket visibility.
func (s *CommentService) Add(ctx context.Context, actor *domain.User, ticketID, content string, parentID *string) (*domain.Comment, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, util.NewFieldRequired("content")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	if !domain.Can(actor, ticket, domain.CapabilityComment) {
		return nil, util.NewForbidden("access denied")
	}

	if parentID != nil {
		exists, err := s.comments.ExistsOnTicket(ctx, *parentID, ticket.ID)
		if err != nil {
			return nil, util.MapError(err)
		}
		if !exists {
			return nil, util.NewFieldError("INVALID_PARENT", "parent_id", "parent comment not found")
		}
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Content:  trimmed,
		ParentID: parentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, util.MapError(err)
	}

	if err := s.timeline.Append(ctx, &domain.TimelineEvent{
		TicketID: ticket.ID,
		UserID:   &actor.ID,
		Action:   domain.TimelineActionCommentAdded,
	}); err != nil {
		return nil, util.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID: comment.ID,
			ParentID:  comment.ParentID,
			Preview:   preview(comment.Content, 120),
		},
	})
	return comment, nil
}

// ListComments returns the thread in chronological order.
func (s *CommentService) ListComments(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	if !domain.Can(actor, ticket, domain.CapabilityView) {
		return nil, util.NewForbidden("access denied")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return comments, nil
}

// ListTimeline returns the audit trail in chronological order.
func (s *CommentService) ListTimeline(ctx context.Context, actor *domain.User, ticketID string) ([]domain.TimelineEvent, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	if !domain.Can(actor, ticket, domain.CapabilityView) {
		return nil, util.NewForbidden("access denied")
	}
	timeline, err := s.timeline.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return timeline, nil
}

// preview truncates on rune boundaries so multi-byte content never gets
// split mid-sequence in event payloads.
func preview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
