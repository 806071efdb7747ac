package dto

import (
	"time"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name              string `json:"name" validate:"required"`
	ResponsibleUserID *int64 `json:"responsible_user_id"`
}

// DepartmentResponse is the public department shape.
type DepartmentResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	ResponsibleUserID *int64    `json:"responsible_user_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewDepartmentResponse maps a domain department.
func NewDepartmentResponse(dept *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:                dept.ID,
		Name:              dept.Name,
		ResponsibleUserID: dept.ResponsibleUserID,
		CreatedAt:         dept.CreatedAt,
	}
}

// CreateCatalogEntryRequest payload for applications and materiels.
type CreateCatalogEntryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CatalogEntryResponse is the shared shape of both catalogs.
type CatalogEntryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationResponse is one polled notification.
type NotificationResponse struct {
	ID       int64     `json:"id"`
	TicketID int64     `json:"ticket_id"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sent_at"`
	IsRead   bool      `json:"is_read"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(notification *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:       notification.ID,
		TicketID: notification.TicketID,
		Message:  notification.Message,
		SentAt:   notification.SentAt,
		IsRead:   notification.IsRead,
	}
}

// MarkNotificationsRequest payload for PATCH /notifications.
type MarkNotificationsRequest struct {
	IDs []int64 `json:"ids"`
	All bool    `json:"all"`
}
