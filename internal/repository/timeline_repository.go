package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TimelineRepository stores the append-only audit trail. Events are never
// updated or deleted here; rows disappear only via the ticket cascade.
type TimelineRepository interface {
	Append(ctx context.Context, event *domain.TimelineEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TimelineEvent, error)
}

type timelineRepository struct {
	pool *pgxpool.Pool
}

// NewTimelineRepository builds repository.
func NewTimelineRepository(pool *pgxpool.Pool) TimelineRepository {
	return &timelineRepository{pool: pool}
}

func (r *timelineRepository) Append(ctx context.Context, event *domain.TimelineEvent) error {
	const query = `
        INSERT INTO timeline_events (ticket_id, user_id, action, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		event.TicketID,
		event.UserID,
		event.Action,
		event.OldValue,
		event.NewValue,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *timelineRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TimelineEvent, error) {
	const query = `
        SELECT id, ticket_id, user_id, action, old_value, new_value, created_at
        FROM timeline_events WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimelineEvent
	for rows.Next() {
		var event domain.TimelineEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.UserID,
			&event.Action,
			&event.OldValue,
			&event.NewValue,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
