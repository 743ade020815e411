package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService orchestrates the ticket lifecycle: creation, role-scoped
// listing, optimistic-locked updates and admin deletion, with SLA
// derivation and timeline logging along the way.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	timeline   repository.TimelineRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	TimelineRepo repository.TimelineRepository
	Dispatcher   events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		timeline:   deps.TimelineRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// EnrichedTicket is a ticket plus its derived SLA presentation.
type EnrichedTicket struct {
	domain.Ticket
	SLAStatus     sla.Status
	TimeRemaining string
	CommentCount  int
}

// TicketDetail is the full single-ticket view.
type TicketDetail struct {
	EnrichedTicket
	Comments []domain.Comment
	Timeline []domain.TimelineEvent
}

// TicketCreateInput describes the ticket creation payload. Category and
// Priority are raw client strings validated here.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

// TicketListInput describes listing filters as received from the client.
type TicketListInput struct {
	Status     string
	Priority   string
	AssignedTo string
	Search     string
	SLAStatus  string
	Limit      int
	Offset     int
}

// TicketPage is a page of enriched tickets plus pagination metadata.
type TicketPage struct {
	Items      []EnrichedTicket
	Limit      int
	Offset     int
	Total      int64
	NextOffset *int
}

// TicketUpdateInput carries the optional mutable fields. A nil pointer
// means the field was absent; for AssignedTo an empty string unassigns.
type TicketUpdateInput struct {
	Status     *string
	Priority   *string
	AssignedTo *string
	Version    *int64
}

// Create files a new ticket for the actor. The SLA deadline derives from
// the priority and creation time; the ticket starts open at version 1.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*EnrichedTicket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, util.NewFieldRequired("title")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, util.NewFieldRequired("description")
	}
	category, ok := domain.ParseTicketCategory(input.Category)
	if !ok {
		return nil, util.NewFieldError("VALIDATION_ERROR", "category", "invalid category")
	}
	priority, ok := domain.ParseTicketPriority(input.Priority)
	if !ok {
		return nil, util.NewFieldError("VALIDATION_ERROR", "priority", "invalid priority")
	}

	now := s.now()
	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Category:    category,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		SLADeadline: sla.Deadline(priority, now),
		CreatedBy:   actor.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	if err := s.logTimeline(ctx, ticket.ID, &actor.ID, domain.TimelineActionCreated, nil, nil); err != nil {
		return nil, util.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			Title:       ticket.Title,
			Category:    ticket.Category,
			Priority:    ticket.Priority,
			SLADeadline: ticket.SLADeadline,
		},
	})

	enriched := s.enrich(*ticket, 0)
	return &enriched, nil
}

// List returns a page of tickets visible to the actor. A user-role caller
// only sees tickets they created or are assigned to; the sla_status
// filter is applied after the query since the value is computed.
func (s *TicketService) List(ctx context.Context, actor *domain.User, input TicketListInput) (*TicketPage, error) {
	limit, offset := util.NormalizePagination(input.Limit, input.Offset)

	filter := repository.TicketFilter{Limit: limit, Offset: offset}
	if !actor.Role.IsStaff() {
		viewerID := actor.ID
		filter.ViewerID = &viewerID
	}
	if input.Status != "" {
		status, ok := domain.ParseTicketStatus(input.Status)
		if !ok {
			return nil, util.NewFieldError("VALIDATION_ERROR", "status", "invalid status")
		}
		filter.Status = &status
	}
	if input.Priority != "" {
		priority, ok := domain.ParseTicketPriority(input.Priority)
		if !ok {
			return nil, util.NewFieldError("VALIDATION_ERROR", "priority", "invalid priority")
		}
		filter.Priority = &priority
	}
	if input.AssignedTo != "" {
		assignedTo := input.AssignedTo
		filter.AssignedTo = &assignedTo
	}
	if strings.TrimSpace(input.Search) != "" {
		search := input.Search
		filter.SearchTerm = &search
	}

	items, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}

	enriched := make([]EnrichedTicket, 0, len(items))
	for _, item := range items {
		et := s.enrich(item.Ticket, item.CommentCount)
		if input.SLAStatus != "" && string(et.SLAStatus) != input.SLAStatus {
			continue
		}
		enriched = append(enriched, et)
	}

	page := &TicketPage{
		Items:  enriched,
		Limit:  limit,
		Offset: offset,
		Total:  total,
	}
	if int64(offset+limit) < total {
		next := offset + limit
		page.NextOffset = &next
	}
	return page, nil
}

// Get fetches the full detail view, enforcing per-ticket visibility.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*TicketDetail, error) {
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
	timeline, err := s.timeline.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, util.MapError(err)
	}

	return &TicketDetail{
		EnrichedTicket: s.enrich(*ticket, len(comments)),
		Comments:       comments,
		Timeline:       timeline,
	}, nil
}

// Update applies the supplied fields under optimistic locking. The write
// is a single conditional statement predicated on the expected version;
// of two racing updates against the same starting version exactly one
// succeeds and the other observes a conflict.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*EnrichedTicket, error) {
	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketErr(err)
	}

	if input.Version != nil && *input.Version != current.Version {
		return nil, util.NewConflict("STALE_UPDATE", "ticket has been modified by another user")
	}
	if !domain.Can(actor, current, domain.CapabilityMutate) {
		return nil, util.NewForbidden("access denied")
	}

	updated := *current
	var changes []domain.TimelineEvent
	var published []events.Event

	if input.Status != nil {
		status, ok := domain.ParseTicketStatus(*input.Status)
		if !ok {
			return nil, util.NewFieldError("VALIDATION_ERROR", "status", "invalid status")
		}
		// A supplied field is always logged, even when the value did not
		// change; the audit trail records intent, not diffs.
		changes = append(changes, timelineChange(ticketID, actor.ID, domain.TimelineActionStatusChanged,
			strPtr(string(current.Status)), strPtr(string(status))))
		published = append(published, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticketID,
			ActorID:  actor.ID,
			Payload:  events.TicketStatusChangedPayload{OldStatus: current.Status, NewStatus: status},
		})
		updated.Status = status
	}

	if input.Priority != nil {
		priority, ok := domain.ParseTicketPriority(*input.Priority)
		if !ok {
			return nil, util.NewFieldError("VALIDATION_ERROR", "priority", "invalid priority")
		}
		// The deadline stays anchored to the original creation time, so a
		// priority change never restarts the SLA clock.
		updated.Priority = priority
		updated.SLADeadline = sla.Deadline(priority, current.CreatedAt)
		changes = append(changes, timelineChange(ticketID, actor.ID, domain.TimelineActionPriorityChanged,
			strPtr(string(current.Priority)), strPtr(string(priority))))
		published = append(published, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: ticketID,
			ActorID:  actor.ID,
			Payload: events.TicketPriorityChangedPayload{
				OldPriority: current.Priority,
				NewPriority: priority,
				SLADeadline: updated.SLADeadline,
			},
		})
	}

	if input.AssignedTo != nil {
		var assignee *string
		if *input.AssignedTo != "" {
			value := *input.AssignedTo
			assignee = &value
		}
		updated.AssignedTo = assignee
		changes = append(changes, timelineChange(ticketID, actor.ID, domain.TimelineActionAssigned,
			current.AssignedTo, assignee))
		published = append(published, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticketID,
			ActorID:  actor.ID,
			Payload:  events.TicketAssignedPayload{AssignedTo: assignee},
		})
	}

	if input.Status == nil && input.Priority == nil && input.AssignedTo == nil {
		return nil, util.NewDomainError("NO_UPDATES", "no valid fields to update", 400)
	}

	if err := s.tickets.UpdateWithVersion(ctx, &updated, current.Version); err != nil {
		if err == repository.ErrVersionConflict {
			return nil, util.NewConflict("STALE_UPDATE", "ticket has been modified by another user")
		}
		return nil, util.MapError(err)
	}

	for i := range changes {
		if err := s.timeline.Append(ctx, &changes[i]); err != nil {
			return nil, util.MapError(err)
		}
	}
	for _, event := range published {
		s.publish(ctx, event)
	}

	enriched := s.enrich(updated, 0)
	return &enriched, nil
}

// Delete removes a ticket and, via cascade, its comments and timeline.
// Admin only; the deletion itself is logged before the rows go away.
func (s *TicketService) Delete(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	if !domain.Can(actor, ticket, domain.CapabilityDelete) {
		return nil, util.NewForbidden("only admins may delete tickets")
	}

	note := "Ticket deleted by admin"
	if err := s.logTimeline(ctx, ticket.ID, &actor.ID, domain.TimelineActionDeleted, nil, &note); err != nil {
		return nil, util.MapError(err)
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return nil, mapTicketErr(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  events.TicketDeletedPayload{Title: ticket.Title},
	})
	return ticket, nil
}

// Stats aggregates ticket counts, scoped to the actor's visibility.
func (s *TicketService) Stats(ctx context.Context, actor *domain.User) (*repository.TicketStats, error) {
	var viewerID *string
	if !actor.Role.IsStaff() {
		id := actor.ID
		viewerID = &id
	}
	stats, err := s.tickets.Stats(ctx, viewerID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return stats, nil
}

func (s *TicketService) enrich(ticket domain.Ticket, commentCount int) EnrichedTicket {
	now := s.now()
	return EnrichedTicket{
		Ticket:        ticket,
		SLAStatus:     sla.StatusAt(ticket.SLADeadline, ticket.Status, now),
		TimeRemaining: sla.TimeRemainingAt(ticket.SLADeadline, now),
		CommentCount:  commentCount,
	}
}

func (s *TicketService) logTimeline(ctx context.Context, ticketID string, userID *string, action domain.TimelineAction, oldValue, newValue *string) error {
	return s.timeline.Append(ctx, &domain.TimelineEvent{
		TicketID: ticketID,
		UserID:   userID,
		Action:   action,
		OldValue: oldValue,
		NewValue: newValue,
	})
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func timelineChange(ticketID, actorID string, action domain.TimelineAction, oldValue, newValue *string) domain.TimelineEvent {
	return domain.TimelineEvent{
		TicketID: ticketID,
		UserID:   &actorID,
		Action:   action,
		OldValue: oldValue,
		NewValue: newValue,
	}
}

func mapTicketErr(err error) error {
	if util.ToDomainError(err).HTTPStatus == 404 {
		return util.NewResourceNotFound("TICKET_NOT_FOUND", "ticket")
	}
	return util.MapError(err)
}

func strPtr(s string) *string {
	return &s
}
