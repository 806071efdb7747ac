package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// ErrStatusConflict signals a conditional ticket update that lost a race:
// the row no longer carried the status the caller read.
var ErrStatusConflict = errors.New("ticket status changed concurrently")

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const ticketColumns = `id, type, description, status, created_by_id, assigned_to_id,
               application_id, materiel_id, department_id, created_at, taken_in_charge_at,
               closed_at, processing_minutes, external_ticket_number, external_transferred_at, updated_at`

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CreatedByID  *int64
	AssignedToID *int64
	Statuses     []domain.TicketStatus
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	// Update writes the mutable ticket fields conditionally on the status the
	// caller read; ErrStatusConflict is returned when the row moved on.
	Update(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error
	// UpdateWithNotification runs Update plus a notification insert as a
	// single transaction, so an assignment can never commit without its
	// notification.
	UpdateWithNotification(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus, notification *domain.Notification) error
	// CountActiveByTechnician returns, per assignee, the count of tickets in
	// OPEN or IN_PROGRESS.
	CountActiveByTechnician(ctx context.Context) (map[int64]int, error)
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
        INSERT INTO tickets (type, description, status, created_by_id, assigned_to_id, application_id, materiel_id, department_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Type,
		ticket.Description,
		ticket.Status,
		ticket.CreatedByID,
		ticket.AssignedToID,
		ticket.ApplicationID,
		ticket.MaterielID,
		ticket.DepartmentID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

const ticketUpdateQuery = `
        UPDATE tickets SET status=$1, assigned_to_id=$2, taken_in_charge_at=$3, closed_at=$4,
            processing_minutes=$5, external_ticket_number=$6, external_transferred_at=$7, updated_at=NOW()
        WHERE id=$8 AND status=$9`

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	cmd, err := r.pool.Exec(ctx, ticketUpdateQuery, ticketUpdateArgs(ticket, expected)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.conflictOrMissing(ctx, ticket.ID)
	}
	return nil
}

func (r *ticketRepository) UpdateWithNotification(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus, notification *domain.Notification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, ticketUpdateQuery, ticketUpdateArgs(ticket, expected)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.conflictOrMissing(ctx, ticket.ID)
	}

	if notification != nil {
		const insert = `
            INSERT INTO notifications (recipient_user_id, ticket_id, message)
            VALUES ($1,$2,$3)
            RETURNING id, sent_at, is_read`
		if err := tx.QueryRow(ctx, insert,
			notification.RecipientUserID,
			notification.TicketID,
			notification.Message,
		).Scan(&notification.ID, &notification.SentAt, &notification.IsRead); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func ticketUpdateArgs(ticket *domain.Ticket, expected domain.TicketStatus) []any {
	return []any{
		ticket.Status,
		ticket.AssignedToID,
		ticket.TakenInChargeAt,
		ticket.ClosedAt,
		ticket.ProcessingMinutes,
		ticket.ExternalTicketNumber,
		ticket.ExternalTransferredAt,
		ticket.ID,
		expected,
	}
}

// conflictOrMissing distinguishes a lost race from a missing row.
func (r *ticketRepository) conflictOrMissing(ctx context.Context, id int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrStatusConflict
	}
	return pgx.ErrNoRows
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(ticketScanTargets(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("created_by_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountActiveByTechnician(ctx context.Context) (map[int64]int, error) {
	const query = `
        SELECT assigned_to_id, COUNT(*)
        FROM tickets
        WHERE assigned_to_id IS NOT NULL AND status IN ('OPEN','IN_PROGRESS')
        GROUP BY assigned_to_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loads := make(map[int64]int)
	for rows.Next() {
		var technicianID int64
		var count int
		if err := rows.Scan(&technicianID, &count); err != nil {
			return nil, err
		}
		loads[technicianID] = count
	}
	return loads, rows.Err()
}

func ticketScanTargets(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.Type,
		&ticket.Description,
		&ticket.Status,
		&ticket.CreatedByID,
		&ticket.AssignedToID,
		&ticket.ApplicationID,
		&ticket.MaterielID,
		&ticket.DepartmentID,
		&ticket.CreatedAt,
		&ticket.TakenInChargeAt,
		&ticket.ClosedAt,
		&ticket.ProcessingMinutes,
		&ticket.ExternalTicketNumber,
		&ticket.ExternalTransferredAt,
		&ticket.UpdatedAt,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketScanTargets(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
