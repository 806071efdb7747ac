package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/events"
	"github.com/spec-kit/it-helpdesk/internal/policy"
	"github.com/spec-kit/it-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// TicketService coordinates the ticket lifecycle: creation, role-gated
// status transitions, derived timestamps and the notification side effect
// of reassignment.
type TicketService struct {
	tickets     repository.TicketRepository
	users       repository.UserRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Type          domain.TicketType
	Description   string
	ApplicationID *int64
	MaterielID    *int64
	DepartmentID  *int64
}

// TechnicianUpdateInput carries a technician's PATCH: a status move, an
// external reference update, or both.
type TechnicianUpdateInput struct {
	Status               *domain.TicketStatus
	ExternalTicketNumber *string
}

// ChiefUpdateInput carries the chief's PATCH: reassignment, an
// administrative status override, or both in the same request.
type ChiefUpdateInput struct {
	Status       *domain.TicketStatus
	AssignedToID *int64
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses []domain.TicketStatus
	Limit    int
	Offset   int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket opens a new ticket for an employee. The ticket starts in
// OPEN atomically with the insert.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if !policy.Allows(actor.Role, policy.OpCreateTicket) {
		return nil, apperrors.NewForbidden("only employees may create tickets")
	}
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": input.Type})
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}

	departmentID := input.DepartmentID
	if departmentID == nil {
		departmentID = actor.DepartmentID
	}

	ticket := &domain.Ticket{
		Type:          input.Type,
		Description:   description,
		Status:        domain.TicketStatusOpen,
		CreatedByID:   actor.ID,
		ApplicationID: input.ApplicationID,
		MaterielID:    input.MaterielID,
		DepartmentID:  departmentID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Type:         ticket.Type,
			DepartmentID: ticket.DepartmentID,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket, enforcing read policy for the actor.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	return s.loadForRead(ctx, actor, ticketID)
}

// ListOwnTickets returns tickets created by the actor.
func (s *TicketService) ListOwnTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	return s.list(ctx, repository.TicketFilter{
		CreatedByID: &actor.ID,
		Statuses:    filter.Statuses,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
}

// ListAssignedTickets returns tickets assigned to the technician actor.
func (s *TicketService) ListAssignedTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	return s.list(ctx, repository.TicketFilter{
		AssignedToID: &actor.ID,
		Statuses:     filter.Statuses,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

// ListAllTickets returns tickets without ownership scoping; chief only.
func (s *TicketService) ListAllTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor.Role != domain.RoleChief {
		return nil, apperrors.NewForbidden("chief role required")
	}
	return s.list(ctx, repository.TicketFilter{
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// CloseAsEmployee performs the single transition an employee may make:
// TO_CLOSE to CLOSED on their own ticket, stamping the derived duration.
func (s *TicketService) CloseAsEmployee(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatedByID != actor.ID {
		return nil, apperrors.NewForbidden("only the ticket creator may request closure")
	}
	if ticket.Status != domain.TicketStatusToClose {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusToClose))
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	s.stampClosure(ticket, time.Now())

	if err := s.tickets.Update(ctx, ticket, oldStatus); err != nil {
		return nil, mapTicketWriteError(err)
	}
	s.publishStatusChange(ctx, actor, ticket, oldStatus)
	return ticket, nil
}

// UpdateAsTechnician applies a technician's update to an assigned ticket:
// a status transition, an external reference update, or both.
func (s *TicketService) UpdateAsTechnician(ctx context.Context, actor *domain.User, ticketID int64, input TechnicianUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssignedToID == nil || *ticket.AssignedToID != actor.ID {
		return nil, apperrors.NewForbidden("ticket is not assigned to you")
	}
	if input.Status == nil && input.ExternalTicketNumber == nil {
		return nil, apperrors.NewValidationError("nothing to update", nil)
	}

	now := time.Now()
	oldStatus := ticket.Status

	if input.ExternalTicketNumber != nil {
		number := strings.TrimSpace(*input.ExternalTicketNumber)
		if number == "" {
			return nil, apperrors.NewValidationError("external ticket number must not be empty", nil)
		}
		ticket.ExternalTicketNumber = &number
	}

	if input.Status != nil {
		if err := s.applyTechnicianTransition(ticket, *input.Status, now); err != nil {
			return nil, err
		}
	} else if ticket.Status == domain.TicketStatusTransferredExternal && ticket.ExternalTransferredAt == nil {
		// reference number added after the fact: back-fill the transfer stamp
		ticket.ExternalTransferredAt = &now
	}

	if err := s.tickets.Update(ctx, ticket, oldStatus); err != nil {
		return nil, mapTicketWriteError(err)
	}
	if ticket.Status != oldStatus {
		s.publishStatusChange(ctx, actor, ticket, oldStatus)
	}
	return ticket, nil
}

func (s *TicketService) applyTechnicianTransition(ticket *domain.Ticket, next domain.TicketStatus, now time.Time) error {
	if !next.Valid() {
		return apperrors.NewValidationError("unknown ticket status", map[string]any{"status": next})
	}
	if ticket.Status.IsTerminal() || ticket.Status == domain.TicketStatusTransferredExternal {
		return apperrors.NewInvalidTransition(string(ticket.Status), "a non-terminal status")
	}

	switch next {
	case domain.TicketStatusInProgress:
		if ticket.TakenInChargeAt == nil {
			taken := now
			ticket.TakenInChargeAt = &taken
		}
	case domain.TicketStatusClosed:
		s.stampClosure(ticket, now)
	case domain.TicketStatusTransferredExternal:
		if ticket.ExternalTicketNumber == nil || strings.TrimSpace(*ticket.ExternalTicketNumber) == "" {
			return apperrors.NewMissingExternalReference()
		}
		if ticket.ExternalTransferredAt == nil {
			transferred := now
			ticket.ExternalTransferredAt = &transferred
		}
	}

	ticket.Status = next
	return nil
}

// UpdateAsChief applies an administrative update: reassignment with its
// notification side effect, a status override, or both in one request.
func (s *TicketService) UpdateAsChief(ctx context.Context, actor *domain.User, ticketID int64, input ChiefUpdateInput) (*domain.Ticket, error) {
	if !policy.Allows(actor.Role, policy.OpAssignTicket) {
		return nil, apperrors.NewForbidden("chief role required")
	}
	if input.Status == nil && input.AssignedToID == nil {
		return nil, apperrors.NewValidationError("nothing to update", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), "a non-terminal status")
	}

	oldStatus := ticket.Status

	var notification *domain.Notification
	if input.AssignedToID != nil {
		assignee, err := s.users.GetByID(ctx, *input.AssignedToID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("technician", map[string]any{"user_id": *input.AssignedToID})
			}
			return nil, apperrors.MapError(err)
		}
		if assignee.Role != domain.RoleTechnician {
			return nil, apperrors.NewValidationError("assignee must be a technician", map[string]any{"user_id": assignee.ID})
		}
		ticket.AssignedToID = &assignee.ID
		notification = &domain.Notification{
			RecipientUserID: assignee.ID,
			TicketID:        ticket.ID,
			Message:         fmt.Sprintf("Ticket #%d has been assigned to you", ticket.ID),
		}
	}

	if input.Status != nil {
		// administrative override: no derived-duration logic
		switch *input.Status {
		case domain.TicketStatusOpen, domain.TicketStatusInProgress:
			ticket.Status = *input.Status
		case domain.TicketStatusClosed:
			ticket.Status = domain.TicketStatusClosed
			if ticket.ClosedAt == nil {
				closed := time.Now()
				ticket.ClosedAt = &closed
			}
		default:
			return nil, apperrors.NewInvalidTransition(string(ticket.Status), "OPEN, IN_PROGRESS or CLOSED")
		}
	}

	if err := s.tickets.UpdateWithNotification(ctx, ticket, oldStatus, notification); err != nil {
		return nil, mapTicketWriteError(err)
	}

	if notification != nil {
		s.publishEvent(ctx, actor, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Payload:  events.TicketAssignedPayload{AssignedToID: *ticket.AssignedToID},
		})
	}
	if ticket.Status != oldStatus {
		s.publishStatusChange(ctx, actor, ticket, oldStatus)
	}
	return ticket, nil
}

// AddComment appends a comment to a ticket's thread. Comment-write access
// is strictly narrower than read access.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID int64, content string) (*domain.Comment, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanComment(actor, ticket) {
		return nil, apperrors.NewForbidden("not allowed to comment on this ticket")
	}
	content = strings.TrimSpace(content)
	if len(content) < domain.CommentMinLength || len(content) > domain.CommentMaxLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("content must be between %d and %d characters", domain.CommentMinLength, domain.CommentMaxLength), nil)
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.AuthorID,
			BodyPreview: preview(comment.Content, 120),
		},
	})
	return comment, nil
}

// ListComments returns a ticket's thread, oldest first, gated by read policy.
func (s *TicketService) ListComments(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.Comment, error) {
	if _, err := s.loadForRead(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// AddAttachment records attachment metadata for a ticket. Uploading the
// bytes is the file store's concern; a storage key is minted here.
func (s *TicketService) AddAttachment(ctx context.Context, actor *domain.User, ticketID int64, fileName string) (*domain.Attachment, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanComment(actor, ticket) {
		return nil, apperrors.NewForbidden("not allowed to attach files to this ticket")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, apperrors.NewValidationError("file name required", nil)
	}

	attachment := &domain.Attachment{
		TicketID:   ticket.ID,
		FileName:   fileName,
		StorageKey: uuid.NewString(),
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// ListAttachments returns a ticket's attachment metadata, gated by read policy.
func (s *TicketService) ListAttachments(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.Attachment, error) {
	if _, err := s.loadForRead(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachments, nil
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) loadForRead(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	creator := actor
	if ticket.CreatedByID != actor.ID {
		creator, err = s.users.GetByID(ctx, ticket.CreatedByID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	if !policy.CanReadTicket(actor, ticket, creator) {
		return nil, apperrors.NewForbidden("not allowed to view this ticket")
	}
	return ticket, nil
}

// stampClosure sets closed_at and the derived processing duration. Both are
// computed once; a ticket already carrying them keeps the stored values.
func (s *TicketService) stampClosure(ticket *domain.Ticket, now time.Time) {
	if ticket.ClosedAt == nil {
		closed := now
		ticket.ClosedAt = &closed
	}
	if ticket.ProcessingMinutes == nil {
		minutes := processingMinutes(ticket, *ticket.ClosedAt)
		ticket.ProcessingMinutes = &minutes
	}
}

// processingMinutes is the rounded elapsed time from taken-in-charge (or
// creation, when the ticket was never taken in charge) to closure.
func processingMinutes(ticket *domain.Ticket, closedAt time.Time) int {
	start := ticket.CreatedAt
	if ticket.TakenInChargeAt != nil {
		start = *ticket.TakenInChargeAt
	}
	minutes := int(math.Round(closedAt.Sub(start).Minutes()))
	if minutes < 0 {
		return 0
	}
	return minutes
}

func mapTicketWriteError(err error) error {
	if errors.Is(err, repository.ErrStatusConflict) {
		return apperrors.NewConflict("ticket was modified concurrently", nil)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", nil)
	}
	return apperrors.MapError(err)
}

func (s *TicketService) publishStatusChange(ctx context.Context, actor *domain.User, ticket *domain.Ticket, oldStatus domain.TicketStatus) {
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.ActorID = actor.ID
	event.ActorRole = actor.Role
	_ = s.dispatcher.Publish(ctx, event)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
