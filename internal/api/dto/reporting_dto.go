package dto

import (
	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/service"
)

// NamedCountResponse is one ranking entry.
type NamedCountResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// StatusCountResponse carries the count for one lifecycle status.
type StatusCountResponse struct {
	Status domain.TicketStatus `json:"status"`
	Count  int                 `json:"count"`
}

// SeriesPointResponse is one bucket of a time series.
type SeriesPointResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ReportResponse is the aggregate bundle of GET /reporting.
type ReportResponse struct {
	Days                     int                   `json:"days"`
	TopCreators              []NamedCountResponse  `json:"top_creators"`
	TopDepartments           []NamedCountResponse  `json:"top_departments"`
	TopApplications          []NamedCountResponse  `json:"top_applications"`
	TopMateriels             []NamedCountResponse  `json:"top_materiels"`
	AverageResolutionMinutes int                   `json:"average_resolution_minutes"`
	StatusCounts             []StatusCountResponse `json:"status_counts"`
	DailySeries              []SeriesPointResponse `json:"daily_series"`
	WeeklySeries             []SeriesPointResponse `json:"weekly_series"`
}

// NewReportResponse maps a computed report.
func NewReportResponse(report *service.Report) ReportResponse {
	return ReportResponse{
		Days:                     report.Days,
		TopCreators:              namedCounts(report.TopCreators),
		TopDepartments:           namedCounts(report.TopDepartments),
		TopApplications:          namedCounts(report.TopApplications),
		TopMateriels:             namedCounts(report.TopMateriels),
		AverageResolutionMinutes: report.AverageResolutionMinutes,
		StatusCounts:             statusCounts(report.StatusCounts),
		DailySeries:              seriesPoints(report.DailySeries),
		WeeklySeries:             seriesPoints(report.WeeklySeries),
	}
}

// TechnicianLoadResponse is one recommendation entry.
type TechnicianLoadResponse struct {
	Technician UserResponse `json:"technician"`
	ActiveLoad int          `json:"active_load"`
}

// NewTechnicianLoadResponses maps the ranked roster.
func NewTechnicianLoadResponses(ranked []service.TechnicianLoad) []TechnicianLoadResponse {
	items := make([]TechnicianLoadResponse, 0, len(ranked))
	for i := range ranked {
		items = append(items, TechnicianLoadResponse{
			Technician: NewUserResponse(&ranked[i].Technician),
			ActiveLoad: ranked[i].ActiveLoad,
		})
	}
	return items
}

func namedCounts(entries []service.NamedCount) []NamedCountResponse {
	items := make([]NamedCountResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, NamedCountResponse{Name: entry.Name, Count: entry.Count})
	}
	return items
}

func statusCounts(entries []service.StatusCount) []StatusCountResponse {
	items := make([]StatusCountResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, StatusCountResponse{Status: entry.Status, Count: entry.Count})
	}
	return items
}

func seriesPoints(entries []service.SeriesPoint) []SeriesPointResponse {
	items := make([]SeriesPointResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, SeriesPointResponse{Date: entry.Date, Count: entry.Count})
	}
	return items
}
