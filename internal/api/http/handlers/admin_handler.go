package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/api/dto"
	"github.com/spec-kit/it-helpdesk/internal/service"
	apperrors "github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// AdminHandler serves the chief surface: global ticket listing and patching,
// user provisioning, the technician roster and the static catalogs.
type AdminHandler struct {
	tickets   *service.TicketService
	directory *service.DirectoryService
	workload  *service.WorkloadService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(tickets *service.TicketService, directory *service.DirectoryService, workload *service.WorkloadService) *AdminHandler {
	return &AdminHandler{tickets: tickets, directory: directory, workload: workload}
}

// ListTickets handles GET /admin/tickets.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListAllTickets(c.Context(), actor, parseListFilter(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// PatchTicket handles PATCH /admin/tickets/:id: reassignment, a status
// override, or both in one request.
func (h *AdminHandler) PatchTicket(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChiefPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateAsChief(c.Context(), actor, ticketID, service.ChiefUpdateInput{
		Status:       req.Status,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// CreateUser handles POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	user, err := h.directory.CreateUser(c.Context(), actor, service.UserCreateInput{
		Name:          req.Name,
		Surname:       req.Surname,
		Email:         req.Email,
		Password:      req.Password,
		Role:          req.Role,
		HierarchyCode: req.HierarchyCode,
		DepartmentID:  req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ListTechnicians handles GET /admin/technicians.
func (h *AdminHandler) ListTechnicians(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	technicians, err := h.directory.ListTechnicians(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(technicians))
	for i := range technicians {
		items = append(items, dto.NewUserResponse(&technicians[i]))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": items})
}

// Recommend handles GET /technicians/recommendation: up to five
// technicians ordered by ascending active load.
func (h *AdminHandler) Recommend(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	ranked, err := h.workload.Recommend(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewTechnicianLoadResponses(ranked)})
}

// CreateDepartment handles POST /admin/departments.
func (h *AdminHandler) CreateDepartment(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	dept, err := h.directory.CreateDepartment(c.Context(), actor, req.Name, req.ResponsibleUserID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// ListDepartments handles GET /admin/departments.
func (h *AdminHandler) ListDepartments(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	departments, err := h.directory.ListDepartments(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, dto.NewDepartmentResponse(&departments[i]))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": items})
}

// CreateApplication handles POST /admin/applications.
func (h *AdminHandler) CreateApplication(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	req, err := parseCatalogEntry(c)
	if err != nil {
		return err
	}
	app, err := h.directory.CreateApplication(c.Context(), actor, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CatalogEntryResponse{
		ID:        app.ID,
		Name:      app.Name,
		CreatedAt: app.CreatedAt,
	}})
}

// ListApplications handles GET /admin/applications.
func (h *AdminHandler) ListApplications(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	apps, err := h.directory.ListApplications(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.CatalogEntryResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, dto.CatalogEntryResponse{ID: app.ID, Name: app.Name, CreatedAt: app.CreatedAt})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": items})
}

// CreateMateriel handles POST /admin/materiels.
func (h *AdminHandler) CreateMateriel(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	req, err := parseCatalogEntry(c)
	if err != nil {
		return err
	}
	materiel, err := h.directory.CreateMateriel(c.Context(), actor, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CatalogEntryResponse{
		ID:        materiel.ID,
		Name:      materiel.Name,
		CreatedAt: materiel.CreatedAt,
	}})
}

// ListMateriels handles GET /admin/materiels.
func (h *AdminHandler) ListMateriels(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	materiels, err := h.directory.ListMateriels(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.CatalogEntryResponse, 0, len(materiels))
	for _, materiel := range materiels {
		items = append(items, dto.CatalogEntryResponse{ID: materiel.ID, Name: materiel.Name, CreatedAt: materiel.CreatedAt})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": items})
}

func parseCatalogEntry(c *fiber.Ctx) (dto.CreateCatalogEntryRequest, error) {
	var req dto.CreateCatalogEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return req, apperrors.NewValidationError(err.Error(), nil)
	}
	return req, nil
}
