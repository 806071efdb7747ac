package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

type reportingFixture struct {
	service      *ReportingService
	tickets      *memTicketRepo
	users        *memUserRepo
	departments  *memDepartmentRepo
	applications *memApplicationRepo
	materiels    *memMaterielRepo

	chief domain.User
}

func newReportingFixture(t *testing.T) *reportingFixture {
	t.Helper()
	fx := &reportingFixture{
		tickets:      newMemTicketRepo(newMemNotificationRepo()),
		users:        newMemUserRepo(),
		departments:  newMemDepartmentRepo(),
		applications: newMemApplicationRepo(),
		materiels:    newMemMaterielRepo(),
	}
	fx.service = NewReportingService(ReportingDependencies{
		TicketRepo:      fx.tickets,
		UserRepo:        fx.users,
		DepartmentRepo:  fx.departments,
		ApplicationRepo: fx.applications,
		MaterielRepo:    fx.materiels,
	})
	fx.chief = fx.users.add(domain.User{
		Name: "Carol", Surname: "Dupont", Email: "carol@corp.test", Role: domain.RoleChief,
	})
	return fx
}

func TestReportRequiresChief(t *testing.T) {
	fx := newReportingFixture(t)
	employee := fx.users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test", Role: domain.RoleEmployee,
	})
	_, err := fx.service.Build(context.Background(), &employee, 7)
	requireDomainCode(t, err, "FORBIDDEN")
}

func TestReportDayWindowClamping(t *testing.T) {
	fx := newReportingFixture(t)

	report, err := fx.service.Build(context.Background(), &fx.chief, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, report.Days)

	report, err = fx.service.Build(context.Background(), &fx.chief, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Days)

	report, err = fx.service.Build(context.Background(), &fx.chief, 4000)
	require.NoError(t, err)
	assert.Equal(t, 365, report.Days)
}

func TestReportDailySeriesZeroFills(t *testing.T) {
	fx := newReportingFixture(t)
	employee := fx.users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test", Role: domain.RoleEmployee,
	})

	now := time.Now()
	for i := 0; i < 3; i++ {
		fx.tickets.add(domain.Ticket{
			Type: domain.TicketTypeAssistance, Description: "today",
			Status: domain.TicketStatusOpen, CreatedByID: employee.ID, CreatedAt: now,
		})
	}
	sixDaysAgo := now.AddDate(0, 0, -6)
	for i := 0; i < 2; i++ {
		fx.tickets.add(domain.Ticket{
			Type: domain.TicketTypeAssistance, Description: "last week",
			Status: domain.TicketStatusOpen, CreatedByID: employee.ID, CreatedAt: sixDaysAgo,
		})
	}
	// outside the 7-day window, must not appear in the series
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "old",
		Status: domain.TicketStatusOpen, CreatedByID: employee.ID, CreatedAt: now.AddDate(0, 0, -20),
	})

	report, err := fx.service.Build(context.Background(), &fx.chief, 7)
	require.NoError(t, err)

	require.Len(t, report.DailySeries, 7)
	total := 0
	for _, point := range report.DailySeries {
		total += point.Count
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, sixDaysAgo.Local().Format(time.DateOnly), report.DailySeries[0].Date)
	assert.Equal(t, 2, report.DailySeries[0].Count)
	assert.Equal(t, now.Local().Format(time.DateOnly), report.DailySeries[6].Date)
	assert.Equal(t, 3, report.DailySeries[6].Count)
	assert.Equal(t, 0, report.DailySeries[3].Count)
}

func TestReportStatusCountsIncludeZeroes(t *testing.T) {
	fx := newReportingFixture(t)
	employee := fx.users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test", Role: domain.RoleEmployee,
	})
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "only one",
		Status: domain.TicketStatusOpen, CreatedByID: employee.ID, CreatedAt: time.Now(),
	})

	report, err := fx.service.Build(context.Background(), &fx.chief, 7)
	require.NoError(t, err)

	require.Len(t, report.StatusCounts, len(domain.AllTicketStatuses))
	byStatus := make(map[domain.TicketStatus]int)
	for _, entry := range report.StatusCounts {
		byStatus[entry.Status] = entry.Count
	}
	assert.Equal(t, 1, byStatus[domain.TicketStatusOpen])
	assert.Equal(t, 0, byStatus[domain.TicketStatusClosed])
	assert.Equal(t, 0, byStatus[domain.TicketStatusRejected])
}

func TestReportTopCreatorsCapsAtFive(t *testing.T) {
	fx := newReportingFixture(t)

	for i := 0; i < 7; i++ {
		creator := fx.users.add(domain.User{
			Name:    fmt.Sprintf("User%d", i),
			Surname: "Test",
			Email:   fmt.Sprintf("user%d@corp.test", i),
			Role:    domain.RoleEmployee,
		})
		for j := 0; j <= i; j++ {
			fx.tickets.add(domain.Ticket{
				Type: domain.TicketTypeAssistance, Description: "volume",
				Status: domain.TicketStatusOpen, CreatedByID: creator.ID, CreatedAt: time.Now(),
			})
		}
	}

	report, err := fx.service.Build(context.Background(), &fx.chief, 7)
	require.NoError(t, err)

	require.Len(t, report.TopCreators, 5)
	assert.Equal(t, "User6 Test", report.TopCreators[0].Name)
	assert.Equal(t, 7, report.TopCreators[0].Count)
	for i := 1; i < len(report.TopCreators); i++ {
		assert.GreaterOrEqual(t, report.TopCreators[i-1].Count, report.TopCreators[i].Count)
	}
}

func TestReportDepartmentBucketsAndNoDepartment(t *testing.T) {
	fx := newReportingFixture(t)

	dept := domain.Department{Name: "Accounting"}
	require.NoError(t, fx.departments.Create(context.Background(), &dept))

	inDept := fx.users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test",
		Role: domain.RoleEmployee, DepartmentID: &dept.ID,
	})
	floating := fx.users.add(domain.User{
		Name: "Omar", Surname: "Kone", Email: "omar@corp.test", Role: domain.RoleEmployee,
	})

	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "dept",
		Status: domain.TicketStatusOpen, CreatedByID: inDept.ID, CreatedAt: time.Now(),
	})
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "dept",
		Status: domain.TicketStatusOpen, CreatedByID: inDept.ID, CreatedAt: time.Now(),
	})
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "nomad",
		Status: domain.TicketStatusOpen, CreatedByID: floating.ID, CreatedAt: time.Now(),
	})

	report, err := fx.service.Build(context.Background(), &fx.chief, 7)
	require.NoError(t, err)

	require.Len(t, report.TopDepartments, 2)
	assert.Equal(t, "Accounting", report.TopDepartments[0].Name)
	assert.Equal(t, 2, report.TopDepartments[0].Count)
	assert.Equal(t, "no department", report.TopDepartments[1].Name)
	assert.Equal(t, 1, report.TopDepartments[1].Count)
}

func TestReportAverageResolution(t *testing.T) {
	fx := newReportingFixture(t)
	employee := fx.users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test", Role: domain.RoleEmployee,
	})

	minutes30 := 30
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "stored value wins",
		Status: domain.TicketStatusClosed, CreatedByID: employee.ID, CreatedAt: time.Now(),
		ProcessingMinutes: &minutes30,
	})

	taken := time.Now().Add(-2 * time.Hour)
	closed := taken.Add(90 * time.Minute)
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "computed from stamps",
		Status: domain.TicketStatusClosed, CreatedByID: employee.ID, CreatedAt: taken,
		TakenInChargeAt: &taken, ClosedAt: &closed,
	})

	// open tickets and closed tickets without stamps don't contribute
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "open",
		Status: domain.TicketStatusOpen, CreatedByID: employee.ID, CreatedAt: time.Now(),
	})
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "closed without stamps",
		Status: domain.TicketStatusClosed, CreatedByID: employee.ID, CreatedAt: time.Now(),
	})

	report, err := fx.service.Build(context.Background(), &fx.chief, 7)
	require.NoError(t, err)
	assert.Equal(t, 60, report.AverageResolutionMinutes)
}

func TestReportWeeklySeriesSkipsEmptyWeeks(t *testing.T) {
	fx := newReportingFixture(t)
	employee := fx.users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test", Role: domain.RoleEmployee,
	})

	now := time.Now()
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "this week",
		Status: domain.TicketStatusOpen, CreatedByID: employee.ID, CreatedAt: now,
	})
	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "three weeks back",
		Status: domain.TicketStatusOpen, CreatedByID: employee.ID, CreatedAt: now.AddDate(0, 0, -21),
	})

	report, err := fx.service.Build(context.Background(), &fx.chief, 30)
	require.NoError(t, err)

	require.Len(t, report.WeeklySeries, 2)
	assert.Less(t, report.WeeklySeries[0].Date, report.WeeklySeries[1].Date)
	for _, point := range report.WeeklySeries {
		// every emitted bucket starts on a Monday
		day, err := time.ParseInLocation(time.DateOnly, point.Date, time.Local)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, day.Weekday())
		assert.Positive(t, point.Count)
	}
}

func TestReportRankingsIgnoreDayWindow(t *testing.T) {
	fx := newReportingFixture(t)
	employee := fx.users.add(domain.User{
		Name: "Alice", Surname: "Martin", Email: "alice@corp.test", Role: domain.RoleEmployee,
	})

	fx.tickets.add(domain.Ticket{
		Type: domain.TicketTypeAssistance, Description: "ancient",
		Status: domain.TicketStatusOpen, CreatedByID: employee.ID,
		CreatedAt: time.Now().AddDate(-1, 0, 0),
	})

	report, err := fx.service.Build(context.Background(), &fx.chief, 7)
	require.NoError(t, err)

	require.Len(t, report.TopCreators, 1)
	assert.Equal(t, 1, report.TopCreators[0].Count)
	total := 0
	for _, point := range report.DailySeries {
		total += point.Count
	}
	assert.Zero(t, total)
}
