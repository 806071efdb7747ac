package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/policy"
	"github.com/spec-kit/it-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

const (
	reportTopSize     = 5
	reportDaysDefault = 30
	reportDaysMin     = 1
	reportDaysMax     = 365
	noDepartmentLabel = "no department"
)

// NamedCount is a ranking entry: a display name with its ticket count.
type NamedCount struct {
	Name  string
	Count int
}

// StatusCount carries the ticket count for one lifecycle status.
type StatusCount struct {
	Status domain.TicketStatus
	Count  int
}

// SeriesPoint is one bucket of a time series, keyed by its start date.
type SeriesPoint struct {
	Date  string
	Count int
}

// Report is the aggregate bundle computed fresh on every call; there is no
// pre-computed analytics store.
type Report struct {
	Days                     int
	TopCreators              []NamedCount
	TopDepartments           []NamedCount
	TopApplications          []NamedCount
	TopMateriels             []NamedCount
	AverageResolutionMinutes int
	StatusCounts             []StatusCount
	DailySeries              []SeriesPoint
	WeeklySeries             []SeriesPoint
}

// ReportingService derives leaderboards and time series from the ticket set
// in a single pass.
type ReportingService struct {
	tickets      repository.TicketRepository
	users        repository.UserRepository
	departments  repository.DepartmentRepository
	applications repository.ApplicationRepository
	materiels    repository.MaterielRepository
}

// ReportingDependencies bundles repositories for the aggregator.
type ReportingDependencies struct {
	TicketRepo      repository.TicketRepository
	UserRepo        repository.UserRepository
	DepartmentRepo  repository.DepartmentRepository
	ApplicationRepo repository.ApplicationRepository
	MaterielRepo    repository.MaterielRepository
}

// NewReportingService constructs the service.
func NewReportingService(deps ReportingDependencies) *ReportingService {
	return &ReportingService{
		tickets:      deps.TicketRepo,
		users:        deps.UserRepo,
		departments:  deps.DepartmentRepo,
		applications: deps.ApplicationRepo,
		materiels:    deps.MaterielRepo,
	}
}

// Build computes the full aggregate bundle. The day window is clamped to
// [1, 365] and bounds only the daily and weekly series; rankings and the
// resolution average run over the entire ticket set.
func (s *ReportingService) Build(ctx context.Context, actor *domain.User, days int) (*Report, error) {
	if !policy.Allows(actor.Role, policy.OpViewReporting) {
		return nil, apperrors.NewForbidden("chief role required")
	}
	days = clampDays(days)

	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	applications, err := s.applications.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	materiels, err := s.materiels.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	userByID := make(map[int64]domain.User, len(users))
	for _, user := range users {
		userByID[user.ID] = user
	}
	departmentName := make(map[int64]string, len(departments))
	for _, dept := range departments {
		departmentName[dept.ID] = dept.Name
	}
	applicationName := make(map[int64]string, len(applications))
	for _, app := range applications {
		applicationName[app.ID] = app.Name
	}
	materielName := make(map[int64]string, len(materiels))
	for _, materiel := range materiels {
		materielName[materiel.ID] = materiel.Name
	}

	creatorCounts := make(map[int64]int)
	departmentCounts := make(map[string]int)
	applicationCounts := make(map[int64]int)
	materielCounts := make(map[int64]int)
	statusCounts := make(map[domain.TicketStatus]int)

	now := time.Now()
	windowStart := startOfDay(now).AddDate(0, 0, -(days - 1))
	daily := make(map[string]int, days)
	weekly := make(map[string]int)

	var resolutionSum float64
	var resolutionCount int

	for i := range tickets {
		ticket := &tickets[i]

		creatorCounts[ticket.CreatedByID]++
		statusCounts[ticket.Status]++

		creator, known := userByID[ticket.CreatedByID]
		bucket := noDepartmentLabel
		if known && creator.DepartmentID != nil {
			if name, ok := departmentName[*creator.DepartmentID]; ok {
				bucket = name
			}
		}
		departmentCounts[bucket]++

		// tickets without a reference are excluded from these rankings
		if ticket.ApplicationID != nil {
			applicationCounts[*ticket.ApplicationID]++
		}
		if ticket.MaterielID != nil {
			materielCounts[*ticket.MaterielID]++
		}

		if minutes, ok := resolutionMinutes(ticket); ok {
			resolutionSum += minutes
			resolutionCount++
		}

		day := startOfDay(ticket.CreatedAt.Local())
		if !day.Before(windowStart) && !day.After(startOfDay(now)) {
			daily[day.Format(time.DateOnly)]++
			weekly[startOfWeek(day).Format(time.DateOnly)]++
		}
	}

	report := &Report{
		Days:            days,
		TopCreators:     topN(rankCreators(creatorCounts, userByID), reportTopSize),
		TopDepartments:  topN(rankNames(departmentCounts), reportTopSize),
		TopApplications: topN(rankByID(applicationCounts, applicationName), reportTopSize),
		TopMateriels:    topN(rankByID(materielCounts, materielName), reportTopSize),
		StatusCounts:    allStatusCounts(statusCounts),
		DailySeries:     dailySeries(windowStart, days, daily),
		WeeklySeries:    weeklySeries(weekly),
	}
	if resolutionCount > 0 {
		report.AverageResolutionMinutes = int(math.Round(resolutionSum / float64(resolutionCount)))
	}
	return report, nil
}

func clampDays(days int) int {
	if days == 0 {
		return reportDaysDefault
	}
	if days < reportDaysMin {
		return reportDaysMin
	}
	if days > reportDaysMax {
		return reportDaysMax
	}
	return days
}

// resolutionMinutes returns the resolution time of a closed ticket: the
// stored derived value when present, otherwise computed from the
// taken-in-charge and close stamps. Tickets lacking both are excluded.
func resolutionMinutes(ticket *domain.Ticket) (float64, bool) {
	if ticket.Status != domain.TicketStatusClosed {
		return 0, false
	}
	if ticket.ProcessingMinutes != nil {
		return float64(*ticket.ProcessingMinutes), true
	}
	if ticket.TakenInChargeAt != nil && ticket.ClosedAt != nil {
		minutes := ticket.ClosedAt.Sub(*ticket.TakenInChargeAt).Minutes()
		if minutes < 0 {
			minutes = 0
		}
		return minutes, true
	}
	return 0, false
}

func rankCreators(counts map[int64]int, userByID map[int64]domain.User) []NamedCount {
	entries := make([]NamedCount, 0, len(counts))
	ids := sortedKeys(counts)
	for _, id := range ids {
		name := "unknown user"
		if user, ok := userByID[id]; ok {
			name = user.FullName()
		}
		entries = append(entries, NamedCount{Name: name, Count: counts[id]})
	}
	return entries
}

func rankByID(counts map[int64]int, names map[int64]string) []NamedCount {
	entries := make([]NamedCount, 0, len(counts))
	for _, id := range sortedKeys(counts) {
		entries = append(entries, NamedCount{Name: names[id], Count: counts[id]})
	}
	return entries
}

func rankNames(counts map[string]int) []NamedCount {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	entries := make([]NamedCount, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, NamedCount{Name: key, Count: counts[key]})
	}
	return entries
}

// topN sorts by count descending; the incoming slice is already in a
// deterministic base order, so the stable sort keeps repeat invocations
// identical.
func topN(entries []NamedCount, n int) []NamedCount {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func sortedKeys(counts map[int64]int) []int64 {
	keys := make([]int64, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func allStatusCounts(counts map[domain.TicketStatus]int) []StatusCount {
	result := make([]StatusCount, 0, len(domain.AllTicketStatuses))
	for _, status := range domain.AllTicketStatuses {
		result = append(result, StatusCount{Status: status, Count: counts[status]})
	}
	return result
}

// dailySeries emits exactly `days` points from the window start to today,
// zero-filled for days without tickets.
func dailySeries(windowStart time.Time, days int, counts map[string]int) []SeriesPoint {
	series := make([]SeriesPoint, 0, days)
	for i := 0; i < days; i++ {
		date := windowStart.AddDate(0, 0, i).Format(time.DateOnly)
		series = append(series, SeriesPoint{Date: date, Count: counts[date]})
	}
	return series
}

// weeklySeries emits only weeks that saw at least one ticket, ascending by
// week start.
func weeklySeries(counts map[string]int) []SeriesPoint {
	starts := make([]string, 0, len(counts))
	for start := range counts {
		starts = append(starts, start)
	}
	sort.Strings(starts)
	series := make([]SeriesPoint, 0, len(starts))
	for _, start := range starts {
		series = append(series, SeriesPoint{Date: start, Count: counts[start]})
	}
	return series
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek truncates to the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}
