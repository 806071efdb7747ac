package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/api/dto"
	"github.com/spec-kit/it-helpdesk/internal/service"
)

// ReportingHandler serves the aggregate report.
type ReportingHandler struct {
	reporting *service.ReportingService
}

// NewReportingHandler constructs handler.
func NewReportingHandler(reporting *service.ReportingService) *ReportingHandler {
	return &ReportingHandler{reporting: reporting}
}

// Get handles GET /reporting?days=N.
func (h *ReportingHandler) Get(c *fiber.Ctx) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	days := parseQueryInt(c, "days", 0)
	report, err := h.reporting.Build(c.Context(), actor, days)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewReportResponse(report)})
}
