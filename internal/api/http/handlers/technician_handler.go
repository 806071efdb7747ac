package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/api/dto"
	"github.com/spec-kit/it-helpdesk/internal/service"
	apperrors "github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// TechnicianHandler serves the technician work queue.
type TechnicianHandler struct {
	tickets *service.TicketService
}

// NewTechnicianHandler constructs handler.
func NewTechnicianHandler(tickets *service.TicketService) *TechnicianHandler {
	return &TechnicianHandler{tickets: tickets}
}

// ListAssigned handles GET /technician/tickets.
func (h *TechnicianHandler) ListAssigned(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListAssignedTickets(c.Context(), actor, parseListFilter(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Update handles PATCH /technician/tickets/:id.
func (h *TechnicianHandler) Update(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.TechnicianPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateAsTechnician(c.Context(), actor, ticketID, service.TechnicianUpdateInput{
		Status:               req.Status,
		ExternalTicketNumber: req.ExternalTicketNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
