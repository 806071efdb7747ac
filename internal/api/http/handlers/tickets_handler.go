package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/api/dto"
	"github.com/spec-kit/it-helpdesk/internal/service"
	apperrors "github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// TicketHandler serves the employee-facing ticket surface plus the shared
// per-ticket comment and attachment endpoints.
type TicketHandler struct {
	tickets   *service.TicketService
	directory *service.DirectoryService
}

// NewTicketHandler constructs handler.
func NewTicketHandler(tickets *service.TicketService, directory *service.DirectoryService) *TicketHandler {
	return &TicketHandler{tickets: tickets, directory: directory}
}

// Create handles POST /tickets.
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		Type:          req.Type,
		Description:   req.Description,
		ApplicationID: req.ApplicationID,
		MaterielID:    req.MaterielID,
		DepartmentID:  req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListOwn handles GET /tickets.
func (h *TicketHandler) ListOwn(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListOwnTickets(c.Context(), actor, parseListFilter(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Get handles GET /tickets/:id.
func (h *TicketHandler) Get(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.Context(), actor, ticketID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Close handles POST /tickets/:id/close, the single employee transition.
func (h *TicketHandler) Close(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.tickets.CloseAsEmployee(c.Context(), actor, ticketID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AddComment handles POST /tickets/:id/comments.
func (h *TicketHandler) AddComment(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	comment, err := h.tickets.AddComment(c.Context(), actor, ticketID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// ListComments handles GET /tickets/:id/comments.
func (h *TicketHandler) ListComments(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.tickets.ListComments(c.Context(), actor, ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.NewCommentResponse(&comments[i]))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": items})
}

// AddAttachment handles POST /tickets/:id/attachments.
func (h *TicketHandler) AddAttachment(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	attachment, err := h.tickets.AddAttachment(c.Context(), actor, ticketID, req.FileName)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAttachmentResponse(attachment)})
}

// ListAttachments handles GET /tickets/:id/attachments.
func (h *TicketHandler) ListAttachments(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	attachments, err := h.tickets.ListAttachments(c.Context(), actor, ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, dto.NewAttachmentResponse(&attachments[i]))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": items})
}

// ListSubordinates handles GET /employees/subordinates.
func (h *TicketHandler) ListSubordinates(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	users, err := h.directory.ListSubordinates(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": items})
}
