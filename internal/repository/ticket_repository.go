package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Modules     []domain.Module
	Statuses    []domain.TicketStatus
	Urgencies   []domain.Urgency
	RequesterID *string
	AssigneeID  *string
	Queue       *string
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence. Create and Update persist
// the aggregate and append the supplied history entries in one transaction;
// a command's state change and its audit trail are never observable apart.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket, entries []domain.HistoryEntry) error
	Update(ctx context.Context, ticket *domain.Ticket, entries []domain.HistoryEntry) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListActive(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, module, sub_category, subject, description, urgency,
	requester, requires_approval, required_levels, current_approval_level, approval_completed,
	approvals, route, assignment, progress, requires_confirmation, user_confirmed_at,
	pause_reason, resolution, sla, status, reopen_count, closed_at, closed_by, closing_note,
	closing_reason, submitted_at, routed_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket, entries []domain.HistoryEntry) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
        INSERT INTO tickets (id, ticket_number, module, sub_category, subject, description, urgency,
            requester, requires_approval, required_levels, current_approval_level, approval_completed,
            approvals, route, assignment, progress, requires_confirmation, user_confirmed_at,
            pause_reason, resolution, sla, status, reopen_count, closed_at, closed_by, closing_note,
            closing_reason, submitted_at, routed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29)
        RETURNING created_at, updated_at`
		if err := tx.QueryRow(ctx, query,
			ticket.ID,
			ticket.TicketNumber,
			ticket.Module,
			ticket.SubCategory,
			ticket.Subject,
			ticket.Description,
			ticket.Urgency,
			ticket.Requester,
			ticket.RequiresApproval,
			ticket.RequiredLevels,
			ticket.CurrentApprovalLevel,
			ticket.ApprovalCompleted,
			ticket.Approvals,
			ticket.Route,
			ticket.Assignment,
			ticket.Progress,
			ticket.RequiresConfirmation,
			ticket.UserConfirmedAt,
			ticket.PauseReason,
			ticket.Resolution,
			ticket.SLA,
			ticket.Status,
			ticket.ReopenCount,
			ticket.ClosedAt,
			ticket.ClosedBy,
			ticket.ClosingNote,
			ticket.ClosingReason,
			ticket.SubmittedAt,
			ticket.RoutedAt,
		).Scan(&ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return err
		}
		return appendHistoryTx(ctx, tx, entries)
	})
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, entries []domain.HistoryEntry) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
        UPDATE tickets SET
            urgency=$1, requires_approval=$2, required_levels=$3, current_approval_level=$4,
            approval_completed=$5, approvals=$6, route=$7, assignment=$8, progress=$9,
            requires_confirmation=$10, user_confirmed_at=$11, pause_reason=$12, resolution=$13,
            sla=$14, status=$15, reopen_count=$16, closed_at=$17, closed_by=$18, closing_note=$19,
            closing_reason=$20, submitted_at=$21, routed_at=$22, updated_at=NOW()
        WHERE id=$23`
		cmd, err := tx.Exec(ctx, query,
			ticket.Urgency,
			ticket.RequiresApproval,
			ticket.RequiredLevels,
			ticket.CurrentApprovalLevel,
			ticket.ApprovalCompleted,
			ticket.Approvals,
			ticket.Route,
			ticket.Assignment,
			ticket.Progress,
			ticket.RequiresConfirmation,
			ticket.UserConfirmedAt,
			ticket.PauseReason,
			ticket.Resolution,
			ticket.SLA,
			ticket.Status,
			ticket.ReopenCount,
			ticket.ClosedAt,
			ticket.ClosedBy,
			ticket.ClosingNote,
			ticket.ClosingReason,
			ticket.SubmittedAt,
			ticket.RoutedAt,
			ticket.ID,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return appendHistoryTx(ctx, tx, entries)
	})
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Modules) > 0 {
		placeholders := make([]string, len(filter.Modules))
		for i, m := range filter.Modules {
			args = append(args, m)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("module IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			args = append(args, s)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Urgencies) > 0 {
		placeholders := make([]string, len(filter.Urgencies))
		for i, u := range filter.Urgencies {
			args = append(args, u)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("urgency IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester->>'id'=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignment->>'assignee_id'=$%d", len(args)))
	}
	if filter.Queue != nil {
		args = append(args, *filter.Queue)
		clauses = append(clauses, fmt.Sprintf("route->>'specialist_queue'=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE status NOT IN ('CLOSED','AUTO_CLOSED','CANCELLED','REJECTED')
        ORDER BY created_at ASC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Module,
		&ticket.SubCategory,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Urgency,
		&ticket.Requester,
		&ticket.RequiresApproval,
		&ticket.RequiredLevels,
		&ticket.CurrentApprovalLevel,
		&ticket.ApprovalCompleted,
		&ticket.Approvals,
		&ticket.Route,
		&ticket.Assignment,
		&ticket.Progress,
		&ticket.RequiresConfirmation,
		&ticket.UserConfirmedAt,
		&ticket.PauseReason,
		&ticket.Resolution,
		&ticket.SLA,
		&ticket.Status,
		&ticket.ReopenCount,
		&ticket.ClosedAt,
		&ticket.ClosedBy,
		&ticket.ClosingNote,
		&ticket.ClosingReason,
		&ticket.SubmittedAt,
		&ticket.RoutedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func appendHistoryTx(ctx context.Context, tx pgx.Tx, entries []domain.HistoryEntry) error {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, kind, action, actor_id, actor_name, detail, prev_status, new_status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	for _, entry := range entries {
		if _, err := tx.Exec(ctx, query,
			entry.ID,
			entry.TicketID,
			entry.Kind,
			entry.Action,
			entry.ActorID,
			entry.ActorName,
			entry.Detail,
			entry.PrevStatus,
			entry.NewStatus,
			entry.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}
