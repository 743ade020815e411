package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrVersionConflict is returned when a conditional update matched no row
// because the ticket's version moved underneath the caller.
var ErrVersionConflict = errors.New("ticket version conflict")

// TicketFilter captures list parameters. ViewerID, when set, restricts
// results to tickets the viewer created or is assigned to.
type TicketFilter struct {
	ViewerID   *string
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssignedTo *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketListItem is a ticket row joined with its comment count.
type TicketListItem struct {
	domain.Ticket
	CommentCount int
}

// TicketStats aggregates counts by status and priority.
type TicketStats struct {
	Total      int64
	ByStatus   map[domain.TicketStatus]int64
	ByPriority map[domain.TicketPriority]int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// UpdateWithVersion applies the mutated columns in a single
	// conditional write predicated on the expected version. The version
	// check and the write are one statement, so two racing updates can
	// never both succeed against the same starting version.
	UpdateWithVersion(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]TicketListItem, error)
	CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error)
	Stats(ctx context.Context, viewerID *string) (*TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, status, priority, sla_deadline, assigned_to, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
		ticket.SLADeadline,
		ticket.AssignedTo,
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, category, status, priority, sla_deadline,
               assigned_to, created_by, version, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&ticket.Priority,
		&ticket.SLADeadline,
		&ticket.AssignedTo,
		&ticket.CreatedBy,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateWithVersion(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	const query = `
        UPDATE tickets SET status=$1, priority=$2, sla_deadline=$3, assigned_to=$4,
            version=version+1, updated_at=NOW()
        WHERE id=$5 AND version=$6
        RETURNING version, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.SLADeadline,
		ticket.AssignedTo,
		ticket.ID,
		expectedVersion,
	).Scan(&ticket.Version, &ticket.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVersionConflict
	}
	return err
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]TicketListItem, error) {
	clauses, args := buildTicketClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT t.id, t.title, t.description, t.category, t.status, t.priority, t.sla_deadline,
               t.assigned_to, t.created_by, t.version, t.created_at, t.updated_at,
               (SELECT COUNT(*) FROM comments c WHERE c.ticket_id = t.id) AS comment_count
        FROM tickets t
        WHERE %s
        ORDER BY t.created_at DESC
        LIMIT %d OFFSET %d`, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TicketListItem
	for rows.Next() {
		var item TicketListItem
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.Category,
			&item.Status,
			&item.Priority,
			&item.SLADeadline,
			&item.AssignedTo,
			&item.CreatedBy,
			&item.Version,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.CommentCount,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error) {
	clauses, args := buildTicketClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets t WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ticketRepository) Stats(ctx context.Context, viewerID *string) (*TicketStats, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if viewerID != nil {
		args = append(args, *viewerID)
		clauses = append(clauses, fmt.Sprintf("(t.created_by=$%d OR t.assigned_to=$%d)", len(args), len(args)))
	}

	query := fmt.Sprintf(`
        SELECT t.status, t.priority, COUNT(*)
        FROM tickets t
        WHERE %s
        GROUP BY t.status, t.priority`, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &TicketStats{
		ByStatus:   make(map[domain.TicketStatus]int64),
		ByPriority: make(map[domain.TicketPriority]int64),
	}
	for rows.Next() {
		var status domain.TicketStatus
		var priority domain.TicketPriority
		var count int64
		if err := rows.Scan(&status, &priority, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByPriority[priority] += count
	}
	return stats, rows.Err()
}

// buildTicketClauses translates a filter into SQL predicates. Free-text
// search matches title or description case-insensitively, or any comment
// on the ticket whose content matches.
func buildTicketClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ViewerID != nil {
		args = append(args, *filter.ViewerID)
		clauses = append(clauses, fmt.Sprintf("(t.created_by=$%d OR t.assigned_to=$%d)", len(args), len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(LOWER(t.title) LIKE %s OR LOWER(t.description) LIKE %s OR EXISTS (
                SELECT 1 FROM comments c WHERE c.ticket_id = t.id AND LOWER(c.content) LIKE %s))`,
			placeholder, placeholder, placeholder))
	}

	return clauses, args
}
