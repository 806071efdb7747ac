package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/it-helpdesk/internal/config"
	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/events"
	"github.com/spec-kit/it-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// NotificationService serves the store-and-poll notification surface and
// forwards domain events to the outbound stubs. Durable notification rows
// are written by the ticket transaction itself, never here.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
		cfg:           cfg,
	}
}

// List returns the caller's most recent notifications.
func (n *NotificationService) List(ctx context.Context, actor *domain.User, limit int) ([]domain.Notification, error) {
	items, err := n.notifications.ListByRecipient(ctx, actor.ID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// MarkRead flips the read flag on the caller's own notifications, either a
// selected set of ids or all unread ones. Returns the number updated.
func (n *NotificationService) MarkRead(ctx context.Context, actor *domain.User, ids []int64, all bool) (int64, error) {
	if all {
		updated, err := n.notifications.MarkAllRead(ctx, actor.ID)
		if err != nil {
			return 0, apperrors.MapError(err)
		}
		return updated, nil
	}
	if len(ids) == 0 {
		return 0, apperrors.NewValidationError("ids or all required", nil)
	}
	updated, err := n.notifications.MarkRead(ctx, actor.ID, ids)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return updated, nil
}

// RegisterHandlers subscribes the outbound stubs to domain events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.Int64("ticket_id", event.TicketID),
		zap.Int64("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
