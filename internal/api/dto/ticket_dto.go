package dto

import (
	"time"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Type          domain.TicketType `json:"type" validate:"required,oneof=ASSISTANCE INTERVENTION"`
	Description   string            `json:"description" validate:"required"`
	ApplicationID *int64            `json:"application_id"`
	MaterielID    *int64            `json:"materiel_id"`
	DepartmentID  *int64            `json:"department_id"`
}

// TechnicianPatchRequest payload for PATCH /technician/tickets/:id.
type TechnicianPatchRequest struct {
	Status               *domain.TicketStatus `json:"status"`
	ExternalTicketNumber *string              `json:"external_ticket_number"`
}

// ChiefPatchRequest payload for PATCH /admin/tickets/:id.
type ChiefPatchRequest struct {
	Status       *domain.TicketStatus `json:"status"`
	AssignedToID *int64               `json:"assigned_to_id"`
}

// TicketResponse is the full ticket shape.
type TicketResponse struct {
	ID                    int64               `json:"id"`
	Type                  domain.TicketType   `json:"type"`
	Description           string              `json:"description"`
	Status                domain.TicketStatus `json:"status"`
	CreatedByID           int64               `json:"created_by_id"`
	AssignedToID          *int64              `json:"assigned_to_id,omitempty"`
	ApplicationID         *int64              `json:"application_id,omitempty"`
	MaterielID            *int64              `json:"materiel_id,omitempty"`
	DepartmentID          *int64              `json:"department_id,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	TakenInChargeAt       *time.Time          `json:"taken_in_charge_at,omitempty"`
	ClosedAt              *time.Time          `json:"closed_at,omitempty"`
	ProcessingMinutes     *int                `json:"processing_minutes,omitempty"`
	ExternalTicketNumber  *string             `json:"external_ticket_number,omitempty"`
	ExternalTransferredAt *time.Time          `json:"external_transferred_at,omitempty"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                    ticket.ID,
		Type:                  ticket.Type,
		Description:           ticket.Description,
		Status:                ticket.Status,
		CreatedByID:           ticket.CreatedByID,
		AssignedToID:          ticket.AssignedToID,
		ApplicationID:         ticket.ApplicationID,
		MaterielID:            ticket.MaterielID,
		DepartmentID:          ticket.DepartmentID,
		CreatedAt:             ticket.CreatedAt,
		TakenInChargeAt:       ticket.TakenInChargeAt,
		ClosedAt:              ticket.ClosedAt,
		ProcessingMinutes:     ticket.ProcessingMinutes,
		ExternalTicketNumber:  ticket.ExternalTicketNumber,
		ExternalTransferredAt: ticket.ExternalTransferredAt,
		UpdatedAt:             ticket.UpdatedAt,
	}
}

// NewTicketResponses maps a slice of tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=2,max=4000"`
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// CreateAttachmentRequest payload; the bytes go to the external store.
type CreateAttachmentRequest struct {
	FileName string `json:"file_name" validate:"required"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticket_id"`
	FileName   string    `json:"file_name"`
	StorageKey string    `json:"storage_key"`
	AddedAt    time.Time `json:"added_at"`
}

// NewAttachmentResponse maps domain attachment metadata.
func NewAttachmentResponse(attachment *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         attachment.ID,
		TicketID:   attachment.TicketID,
		FileName:   attachment.FileName,
		StorageKey: attachment.StorageKey,
		AddedAt:    attachment.AddedAt,
	}
}
