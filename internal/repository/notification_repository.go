package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// NotificationRepository manages polled notifications. Rows are created by
// assignment transitions (see TicketRepository.UpdateWithNotification);
// afterwards only the read flag mutates.
type NotificationRepository interface {
	ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, recipientID int64, ids []int64) (int64, error)
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, recipient_user_id, ticket_id, message, sent_at, is_read
        FROM notifications WHERE recipient_user_id=$1
        ORDER BY sent_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.RecipientUserID,
			&notification.TicketID,
			&notification.Message,
			&notification.SentAt,
			&notification.IsRead,
		); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID int64, ids []int64) (int64, error) {
	const query = `
        UPDATE notifications SET is_read = TRUE
        WHERE recipient_user_id=$1 AND id = ANY($2)`
	cmd, err := r.pool.Exec(ctx, query, recipientID, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	const query = `
        UPDATE notifications SET is_read = TRUE
        WHERE recipient_user_id=$1 AND is_read = FALSE`
	cmd, err := r.pool.Exec(ctx, query, recipientID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
