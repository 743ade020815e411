package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository mirroring the SQL
// implementation's semantics, including the conditional version check.
type fakeTicketRepo struct {
	mu       sync.Mutex
	seq      int
	tickets  map[string]*domain.Ticket
	comments *fakeCommentRepo
	clock    time.Time
}

func newFakeTicketRepo(comments *fakeCommentRepo) *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:  make(map[string]*domain.Ticket),
		comments: comments,
		clock:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (r *fakeTicketRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.Version = 1
	now := r.tick()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTicketRepo) UpdateWithVersion(_ context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok || stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	stored.Status = ticket.Status
	stored.Priority = ticket.Priority
	stored.SLADeadline = ticket.SLADeadline
	stored.AssignedTo = ticket.AssignedTo
	stored.Version++
	stored.UpdatedAt = r.tick()
	ticket.Version = stored.Version
	ticket.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) matches(ticket *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.ViewerID != nil {
		if ticket.CreatedBy != *filter.ViewerID &&
			(ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.ViewerID) {
			return false
		}
	}
	if filter.Status != nil && ticket.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && ticket.Priority != *filter.Priority {
		return false
	}
	if filter.AssignedTo != nil {
		if ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo {
			return false
		}
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" &&
			!strings.Contains(strings.ToLower(ticket.Title), term) &&
			!strings.Contains(strings.ToLower(ticket.Description), term) &&
			!r.comments.anyContentContains(ticket.ID, term) {
			return false
		}
	}
	return true
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]repository.TicketListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []repository.TicketListItem
	for _, ticket := range r.tickets {
		if r.matches(ticket, filter) {
			matched = append(matched, repository.TicketListItem{Ticket: *ticket})
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	offset := filter.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *fakeTicketRepo) CountWithFilter(_ context.Context, filter repository.TicketFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, ticket := range r.tickets {
		if r.matches(ticket, filter) {
			total++
		}
	}
	return total, nil
}

func (r *fakeTicketRepo) Stats(_ context.Context, viewerID *string) (*repository.TicketStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repository.TicketStats{
		ByStatus:   make(map[domain.TicketStatus]int64),
		ByPriority: make(map[domain.TicketPriority]int64),
	}
	filter := repository.TicketFilter{ViewerID: viewerID}
	for _, ticket := range r.tickets {
		if !r.matches(ticket, filter) {
			continue
		}
		stats.Total++
		stats.ByStatus[ticket.Status]++
		stats.ByPriority[ticket.Priority]++
	}
	return stats, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	seq      int
	comments []domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	comment.ID = fmt.Sprintf("comment-%d", r.seq)
	comment.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Minute)
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

func (r *fakeCommentRepo) anyContentContains(ticketID, term string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, comment := range r.comments {
		if comment.TicketID == ticketID && strings.Contains(strings.ToLower(comment.Content), term) {
			return true
		}
	}
	return false
}

func (r *fakeCommentRepo) ExistsOnTicket(_ context.Context, commentID, ticketID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, comment := range r.comments {
		if comment.ID == commentID && comment.TicketID == ticketID {
			return true, nil
		}
	}
	return false, nil
}

type fakeTimelineRepo struct {
	mu     sync.Mutex
	seq    int
	events []domain.TimelineEvent
}

func newFakeTimelineRepo() *fakeTimelineRepo {
	return &fakeTimelineRepo{}
}

func (r *fakeTimelineRepo) Append(_ context.Context, event *domain.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	event.ID = fmt.Sprintf("event-%d", r.seq)
	event.CreatedAt = time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Minute)
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeTimelineRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TimelineEvent
	for _, event := range r.events {
		if event.TicketID == ticketID {
			result = append(result, event)
		}
	}
	return result, nil
}

func (r *fakeTimelineRepo) byAction(action domain.TimelineAction) []domain.TimelineEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TimelineEvent
	for _, event := range r.events {
		if event.Action == action {
			result = append(result, event)
		}
	}
	return result
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.Handler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]events.EventType, 0, len(d.published))
	for _, event := range d.published {
		result = append(result, event.Type)
	}
	return result
}

type ticketFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	timeline   *fakeTimelineRepo
	dispatcher *recordingDispatcher
	now        time.Time
}

func newTicketFixture() *ticketFixture {
	comments := newFakeCommentRepo()
	f := &ticketFixture{
		tickets:    newFakeTicketRepo(comments),
		comments:   comments,
		timeline:   newFakeTimelineRepo(),
		dispatcher: &recordingDispatcher{},
		now:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewTicketService(TicketDependencies{
		TicketRepo:   f.tickets,
		CommentRepo:  f.comments,
		TimelineRepo: f.timeline,
		Dispatcher:   f.dispatcher,
	})
	f.service.now = func() time.Time { return f.now }
	return f
}
